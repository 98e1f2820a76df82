package directory

import (
	"context"
	"sync"
	"time"

	"github.com/ogurasousui/employee-directory/internal/core/employee"
)

// Fetcher は社員の全件を取得します。
type Fetcher interface {
	ListEmployees(ctx context.Context) ([]employee.Employee, error)
}

// Snapshot はある時点で取得した全件の読み取り専用コピーです。
type Snapshot struct {
	Records   []employee.Employee
	Seq       uint64
	FetchedAt time.Time
}

// Cache は最後に取得した全件を保持します。
//
// 各取得には単調増加の番号を振り、適用済みの番号より古い応答は捨てます。
// 取得に失敗した場合は既存のスナップショットをそのまま残します。
type Cache struct {
	fetcher Fetcher
	now     func() time.Time

	mu      sync.Mutex
	issued  uint64
	current Snapshot
}

// NewCache は Cache を生成します。
func NewCache(fetcher Fetcher) *Cache {
	return &Cache{fetcher: fetcher, now: time.Now}
}

// Snapshot は現在のスナップショットを返します。
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Refresh は全件を取得し直し、適用後のスナップショットを返します。
//
// より新しい取得が先に適用されていた場合、この応答は捨てられ、その新しい
// スナップショットが返ります。
func (c *Cache) Refresh(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	records, err := c.fetcher.ListEmployees(ctx)
	if err != nil {
		return c.Snapshot(), err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq > c.current.Seq {
		c.current = Snapshot{
			Records:   cloneRecords(records),
			Seq:       seq,
			FetchedAt: c.now(),
		}
	}
	return c.current, nil
}

func cloneRecords(records []employee.Employee) []employee.Employee {
	out := make([]employee.Employee, len(records))
	for i := range records {
		out[i] = *records[i].Clone()
	}
	return out
}
