package directory

import "github.com/ogurasousui/employee-directory/internal/core/employee"

// View は一覧画面の導出状態 (検索語、部署、ページ位置) です。
//
// 入力が変わるたびに絞り込み結果を作り直し、同じ操作の中でページを 1 に戻します。
type View struct {
	records    []employee.Employee
	searchTerm string
	department string
	filtered   []employee.Employee
	pager      *Pager
}

// NewView は全件・全部署を表示する View を生成します。
func NewView(pageSize int) *View {
	v := &View{department: AllDepartments, pager: NewPager(nil, pageSize)}
	v.refilter()
	return v
}

// SetRecords はキャッシュの新しいスナップショットを反映します。
func (v *View) SetRecords(records []employee.Employee) {
	v.records = records
	v.refilter()
}

// SetSearch は検索語を変更します。
func (v *View) SetSearch(term string) {
	v.searchTerm = term
	v.refilter()
}

// SetDepartment は部署セレクタを変更します。空文字は AllDepartments として扱います。
func (v *View) SetDepartment(department string) {
	if department == "" {
		department = AllDepartments
	}
	v.department = department
	v.refilter()
}

// Search は現在の検索語です。
func (v *View) Search() string {
	return v.searchTerm
}

// Department は現在の部署セレクタです。
func (v *View) Department() string {
	return v.department
}

// Filtered は現在の絞り込み結果です。
func (v *View) Filtered() []employee.Employee {
	return v.filtered
}

// Pager はページ移動の状態を返します。
func (v *View) Pager() *Pager {
	return v.pager
}

// Page は現在のページ窓です。
func (v *View) Page() Page {
	return v.pager.Page()
}

// DepartmentOptions は部署セレクタの選択肢 (先頭は AllDepartments) を返します。
func (v *View) DepartmentOptions() []string {
	return append([]string{AllDepartments}, Departments(v.records)...)
}

func (v *View) refilter() {
	v.filtered = Filter(v.records, v.searchTerm, v.department)
	v.pager.Reset(v.filtered)
}
