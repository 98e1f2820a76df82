package directory

import (
	"strings"

	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"golang.org/x/text/cases"
)

// AllDepartments は部署で絞り込まないことを表すセレクタ値です。
const AllDepartments = "all"

// Filter は検索語と部署で records を絞り込みます。入力順は保持されます。
//
// department が AllDepartments なら全部署、それ以外は大文字小文字を無視した完全一致です。
// searchTerm が空でなければ name, email, jobTitle のいずれかに大文字小文字を無視して含まれる必要があります。
func Filter(records []employee.Employee, searchTerm, department string) []employee.Employee {
	m := newMatcher(searchTerm, department)

	out := make([]employee.Employee, 0, len(records))
	for _, rec := range records {
		if m.match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

type matcher struct {
	fold       cases.Caser
	term       string
	department string
	anyDept    bool
}

func newMatcher(searchTerm, department string) matcher {
	fold := cases.Fold()
	m := matcher{
		fold:    fold,
		term:    fold.String(searchTerm),
		anyDept: department == AllDepartments,
	}
	if !m.anyDept {
		m.department = fold.String(department)
	}
	return m
}

func (m matcher) match(rec employee.Employee) bool {
	if !m.anyDept && m.fold.String(rec.Department) != m.department {
		return false
	}
	if m.term == "" {
		return true
	}
	return m.contains(rec.Name) || m.contains(rec.Email) || m.contains(rec.JobTitle)
}

func (m matcher) contains(field string) bool {
	if field == "" {
		return false
	}
	return strings.Contains(m.fold.String(field), m.term)
}

// Departments は records に現れる空でない部署名を初出順で返します。部署セレクタの選択肢に使います。
func Departments(records []employee.Employee) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0)
	for _, rec := range records {
		if rec.Department == "" {
			continue
		}
		if _, ok := seen[rec.Department]; ok {
			continue
		}
		seen[rec.Department] = struct{}{}
		out = append(out, rec.Department)
	}
	return out
}
