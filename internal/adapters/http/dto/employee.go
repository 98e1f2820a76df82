// Package dto は REST API の JSON 表現と、ドメイン型との相互変換をまとめます。
// サーバーのハンドラとクライアントの両方が同じ型を使います。
package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/employee-directory/internal/core/employee"
)

const dateLayout = "2006-01-02"

// Employee はレスポンスで返す社員の JSON 表現です。
type Employee struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	JobTitle   string    `json:"jobTitle"`
	Department string    `json:"department"`
	HireDate   time.Time `json:"hireDate"`
	Salary     float64   `json:"salary"`
	Projects   []string  `json:"projects"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EmployeeRequest は作成・更新リクエストの本文です。省略したフィールドは nil になります。
type EmployeeRequest struct {
	Name       *string   `json:"name,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	JobTitle   *string   `json:"jobTitle,omitempty"`
	Department *string   `json:"department,omitempty"`
	HireDate   *Date     `json:"hireDate,omitempty"`
	Salary     *float64  `json:"salary,omitempty"`
	Projects   *[]string `json:"projects,omitempty"`
}

// DeleteResponse は削除成功時の本文です。
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse はエラー時の本文です。
type ErrorResponse struct {
	Error string `json:"error"`
}

// Date は入社日です。RFC 3339 と YYYY-MM-DD を受け付け、RFC 3339 (UTC) で出力します。
type Date struct {
	time.Time
}

// UnmarshalJSON は文字列の日付を解釈します。空文字は未指定として扱います。
func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("hireDate: must be a string: %w", err)
	}
	t, err := ParseHireDate(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON は RFC 3339 (UTC) で出力します。
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.UTC().Format(time.RFC3339Nano))
}

// ParseHireDate は RFC 3339 または YYYY-MM-DD の文字列を UTC の時刻に変換します。空文字はゼロ値です。
func ParseHireDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("hireDate: %q is neither RFC 3339 nor YYYY-MM-DD", raw)
	}
	return t, nil
}

// FromEntity はドメインの社員を JSON 表現に変換します。
func FromEntity(e *employee.Employee) Employee {
	projects := e.Projects
	if projects == nil {
		projects = []string{}
	}
	return Employee{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Phone:      e.Phone,
		JobTitle:   e.JobTitle,
		Department: e.Department,
		HireDate:   e.HireDate.UTC(),
		Salary:     e.Salary,
		Projects:   projects,
		CreatedAt:  e.CreatedAt.UTC(),
		UpdatedAt:  e.UpdatedAt.UTC(),
	}
}

// FromEntities は一覧を変換します。空でも nil ではなく空配列を返します。
func FromEntities(list []*employee.Employee) []Employee {
	out := make([]Employee, 0, len(list))
	for _, e := range list {
		out = append(out, FromEntity(e))
	}
	return out
}

// ToEntity は JSON 表現をドメインの社員に戻します。
func (e Employee) ToEntity() employee.Employee {
	projects := e.Projects
	if projects == nil {
		projects = []string{}
	}
	return employee.Employee{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Phone:      e.Phone,
		JobTitle:   e.JobTitle,
		Department: e.Department,
		HireDate:   e.HireDate,
		Salary:     e.Salary,
		Projects:   projects,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// CreateInput は作成ユースケースの入力に変換します。
func (r EmployeeRequest) CreateInput() employee.CreateEmployeeInput {
	in := employee.CreateEmployeeInput{
		Name:       deref(r.Name),
		Email:      deref(r.Email),
		Phone:      deref(r.Phone),
		JobTitle:   deref(r.JobTitle),
		Department: deref(r.Department),
		HireDate:   r.hireDate(),
		Salary:     r.Salary,
	}
	if r.Projects != nil {
		in.Projects = *r.Projects
	}
	return in
}

// UpdateInput は更新ユースケースの入力に変換します。
func (r EmployeeRequest) UpdateInput(id string) employee.UpdateEmployeeInput {
	in := employee.UpdateEmployeeInput{
		ID:         id,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		JobTitle:   r.JobTitle,
		Department: r.Department,
		HireDate:   r.hireDate(),
		Salary:     r.Salary,
	}
	if r.Projects != nil {
		in.Projects = *r.Projects
		in.ProjectsSet = true
	}
	return in
}

// NewCreateRequest はクライアント側で作成入力からリクエスト本文を組み立てます。
func NewCreateRequest(in employee.CreateEmployeeInput) EmployeeRequest {
	req := EmployeeRequest{
		Name:       &in.Name,
		Email:      &in.Email,
		Phone:      &in.Phone,
		JobTitle:   &in.JobTitle,
		Department: &in.Department,
		Salary:     in.Salary,
	}
	if in.HireDate != nil {
		req.HireDate = &Date{Time: *in.HireDate}
	}
	if in.Projects != nil {
		projects := in.Projects
		req.Projects = &projects
	}
	return req
}

// NewUpdateRequest はクライアント側で更新入力からリクエスト本文を組み立てます。
func NewUpdateRequest(in employee.UpdateEmployeeInput) EmployeeRequest {
	req := EmployeeRequest{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		JobTitle:   in.JobTitle,
		Department: in.Department,
		Salary:     in.Salary,
	}
	if in.HireDate != nil {
		req.HireDate = &Date{Time: *in.HireDate}
	}
	if in.ProjectsSet {
		projects := in.Projects
		if projects == nil {
			projects = []string{}
		}
		req.Projects = &projects
	}
	return req
}

func (r EmployeeRequest) hireDate() *time.Time {
	if r.HireDate == nil || r.HireDate.IsZero() {
		return nil
	}
	t := r.HireDate.Time
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
