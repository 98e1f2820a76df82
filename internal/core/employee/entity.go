package employee

import "time"

// Employee は社員名簿のレコードです。
type Employee struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	JobTitle   string
	Department string
	HireDate   time.Time
	Salary     float64
	Projects   []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SuggestedDepartments は登録フォームで提示する部署の候補です。保存時には強制しません。
var SuggestedDepartments = []string{
	"Engineering",
	"Marketing",
	"IT",
	"Sales",
	"HR",
	"Finance",
	"Operations",
	"Product",
	"Design",
	"Support",
}

// Clone は Projects を含めたディープコピーを返します。
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Projects != nil {
		clone.Projects = append([]string(nil), e.Projects...)
	}
	return &clone
}
