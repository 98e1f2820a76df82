package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ogurasousui/employee-directory/internal/core/employee"
)

// ErrRefreshAfterWrite は書き込み自体は成功したが、その後の全件取得に失敗したことを表します。
// 一覧は書き込み前の状態のままです。
var ErrRefreshAfterWrite = errors.New("directory: write applied but list refresh failed")

// RecordStore は社員レコードの保存先 (REST バックエンド) の抽象です。
type RecordStore interface {
	Fetcher
	GetEmployee(ctx context.Context, id string) (employee.Employee, error)
	CreateEmployee(ctx context.Context, in employee.CreateEmployeeInput) (employee.Employee, error)
	UpdateEmployee(ctx context.Context, in employee.UpdateEmployeeInput) (employee.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// Session はクライアント 1 セッション分の状態 (キャッシュと一覧画面) をまとめます。
//
// 書き込みは保存先へ送り、成功したら全件を取り直します。キャッシュを先回りして書き換えることはしません。
type Session struct {
	store RecordStore
	cache *Cache
	view  *View
	// applied は一覧画面へ最後に反映した Snapshot の Seq です。
	applied uint64
}

// NewSession は Session を生成します。
func NewSession(store RecordStore, pageSize int) *Session {
	return &Session{
		store: store,
		cache: NewCache(store),
		view:  NewView(pageSize),
	}
}

// View は一覧画面の状態です。
func (s *Session) View() *View {
	return s.view
}

// Snapshot は現在のキャッシュです。
func (s *Session) Snapshot() Snapshot {
	return s.cache.Snapshot()
}

// Refresh は全件を取り直して一覧画面へ反映します。失敗時は以前の状態を残します。
// 応答が古く捨てられた場合は、反映済みの Snapshot と同じなので一覧画面 (ページ位置を含む) に触れません。
func (s *Session) Refresh(ctx context.Context) error {
	snap, err := s.cache.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("directory: refresh: %w", err)
	}
	if snap.Seq == s.applied {
		return nil
	}
	s.applied = snap.Seq
	s.view.SetRecords(snap.Records)
	return nil
}

// refreshAfterWrite は書き込み成功後の取り直しです。失敗は ErrRefreshAfterWrite で包みます。
func (s *Session) refreshAfterWrite(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshAfterWrite, err)
	}
	return nil
}

// Get は 1 件取得します。キャッシュは更新しません。
func (s *Session) Get(ctx context.Context, id string) (employee.Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

// Create は社員を作成し、全件を取り直します。
// 取り直しだけが失敗した場合は作成済みのレコードと ErrRefreshAfterWrite を返します。
func (s *Session) Create(ctx context.Context, in employee.CreateEmployeeInput) (employee.Employee, error) {
	created, err := s.store.CreateEmployee(ctx, in)
	if err != nil {
		return employee.Employee{}, err
	}
	return created, s.refreshAfterWrite(ctx)
}

// Update は社員を更新し、全件を取り直します。戻り値の扱いは Create と同じです。
func (s *Session) Update(ctx context.Context, in employee.UpdateEmployeeInput) (employee.Employee, error) {
	updated, err := s.store.UpdateEmployee(ctx, in)
	if err != nil {
		return employee.Employee{}, err
	}
	return updated, s.refreshAfterWrite(ctx)
}

// Delete は社員を削除し、全件を取り直します。
func (s *Session) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	return s.refreshAfterWrite(ctx)
}
