package directory

import (
	"errors"

	"github.com/ogurasousui/employee-directory/internal/core/employee"
)

// DefaultPageSize は一覧画面の 1 ページあたりの件数です。
const DefaultPageSize = 5

var (
	ErrInvalidPageSize = errors.New("directory: invalid page size")
	ErrPageOutOfRange  = errors.New("directory: page out of range")
)

// Page は絞り込み結果の 1 ページ分の窓です。
type Page struct {
	Items        []employee.Employee
	Number       int
	Size         int
	TotalPages   int
	TotalEntries int
}

// HasPrev は前のページが存在するかを返します。
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// HasNext は次のページが存在するかを返します。
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// TotalPages は件数とページサイズから総ページ数を求めます。件数 0 なら 0 ページです。
func TotalPages(totalEntries, pageSize int) int {
	if totalEntries <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalEntries + pageSize - 1) / pageSize
}

// Paginate は seq の pageNumber ページ目 (1 始まり) を切り出します。
//
// 範囲外のページ番号は ErrPageOutOfRange です。ただし空の seq の 1 ページ目は
// TotalPages が 0 の空ページとして返します。
func Paginate(seq []employee.Employee, pageSize, pageNumber int) (Page, error) {
	if pageSize <= 0 {
		return Page{}, ErrInvalidPageSize
	}

	total := len(seq)
	pages := TotalPages(total, pageSize)

	if pages == 0 && pageNumber == 1 {
		return Page{Items: []employee.Employee{}, Number: 1, Size: pageSize}, nil
	}
	if pageNumber < 1 || pageNumber > pages {
		return Page{}, ErrPageOutOfRange
	}

	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Items:        seq[start:end:end],
		Number:       pageNumber,
		Size:         pageSize,
		TotalPages:   pages,
		TotalEntries: total,
	}, nil
}

// Pager はページ移動の状態を保持します。範囲外への移動は無視されます。
type Pager struct {
	seq     []employee.Employee
	size    int
	current int
}

// NewPager は seq の 1 ページ目を指す Pager を生成します。size が 0 以下なら DefaultPageSize を使います。
func NewPager(seq []employee.Employee, size int) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{seq: seq, size: size, current: 1}
}

// Reset は対象の列を差し替え、同時に 1 ページ目へ戻します。
func (p *Pager) Reset(seq []employee.Employee) {
	p.seq = seq
	p.current = 1
}

// Current は現在のページ番号です。
func (p *Pager) Current() int {
	return p.current
}

// TotalPages は現在の列の総ページ数です。
func (p *Pager) TotalPages() int {
	return TotalPages(len(p.seq), p.size)
}

// GoTo は n ページ目へ移動します。範囲外なら何もせず false を返します。
func (p *Pager) GoTo(n int) bool {
	if n < 1 || n > p.TotalPages() {
		return false
	}
	p.current = n
	return true
}

// Page は現在のページ窓を返します。
func (p *Pager) Page() Page {
	page, err := Paginate(p.seq, p.size, p.current)
	if err != nil {
		// Reset と GoTo が current を範囲内に保つので、ここに来るのは空の列だけです。
		return Page{Items: []employee.Employee{}, Number: p.current, Size: p.size}
	}
	return page
}
