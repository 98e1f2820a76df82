package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ogurasousui/employee-directory/internal/core/directory"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/shopspring/decimal"
)

const (
	rowFormat     = "%-12s %-20s %-26s %-12s %-20s %s\n"
	fieldFormat   = "%-12s %s\n"
	statFormat    = "%-20s %s\n"
	barRowFormat  = "%-14s %5d  %s\n"
	noDepartment  = "(none)"
	missingMarker = "-"
)

// RenderPage は一覧画面の 1 ページを表形式で出力します。
func RenderPage(w io.Writer, page directory.Page) error {
	if page.TotalEntries == 0 {
		_, err := fmt.Fprintln(w, "No employees match the current filters.")
		return err
	}

	ew := &errWriter{w: w}
	ew.printf("Page %d of %d (%d employees)\n", page.Number, page.TotalPages, page.TotalEntries)
	ew.printf(rowFormat, "ID", "NAME", "EMAIL", "DEPARTMENT", "JOB TITLE", "HIRED")
	for _, e := range page.Items {
		ew.printf(rowFormat, e.ID, e.Name, e.Email, orMissing(e.Department), e.JobTitle, formatDate(e))
	}

	var nav []string
	if page.HasPrev() {
		nav = append(nav, fmt.Sprintf("previous: --page %d", page.Number-1))
	}
	if page.HasNext() {
		nav = append(nav, fmt.Sprintf("next: --page %d", page.Number+1))
	}
	if len(nav) > 0 {
		ew.printf("\n%s\n", strings.Join(nav, "  "))
	}
	return ew.err
}

// RenderEmployee は 1 件の詳細を出力します。
func RenderEmployee(w io.Writer, e employee.Employee) error {
	projects := missingMarker
	if len(e.Projects) > 0 {
		projects = strings.Join(e.Projects, ", ")
	}

	ew := &errWriter{w: w}
	ew.printf(fieldFormat, "ID:", e.ID)
	ew.printf(fieldFormat, "Name:", e.Name)
	ew.printf(fieldFormat, "Email:", e.Email)
	ew.printf(fieldFormat, "Phone:", orMissing(e.Phone))
	ew.printf(fieldFormat, "Job title:", e.JobTitle)
	ew.printf(fieldFormat, "Department:", orMissing(e.Department))
	ew.printf(fieldFormat, "Hire date:", formatDate(e))
	ew.printf(fieldFormat, "Salary:", money(e.Salary))
	ew.printf(fieldFormat, "Projects:", projects)
	return ew.err
}

// RenderSummary は統計カードを出力します。
func RenderSummary(w io.Writer, s directory.Summary, recentHires int) error {
	ew := &errWriter{w: w}
	ew.printf(statFormat, "Total employees", fmt.Sprint(s.Total))
	ew.printf(statFormat, "Departments", fmt.Sprint(s.Departments))
	ew.printf(statFormat, "New this month", fmt.Sprint(s.NewThisMonth))
	ew.printf(statFormat, "New hires (30 days)", fmt.Sprint(recentHires))
	ew.printf(statFormat, "Average salary", money(s.AvgSalary))
	ew.printf(statFormat, "Salary expense", money(s.SalaryExpense))
	ew.printf(statFormat, "Active projects", fmt.Sprint(s.ActiveProjects))
	return ew.err
}

// RenderDistribution は部署別の人数を棒グラフ風に出力します。
func RenderDistribution(w io.Writer, dist []directory.DepartmentCount) error {
	ew := &errWriter{w: w}
	ew.printf("%-14s %5s\n", "DEPARTMENT", "COUNT")
	for _, d := range dist {
		ew.printf(barRowFormat, orNone(d.Department), d.Count, strings.Repeat("#", d.Count))
	}
	return ew.err
}

// RenderTrend は月別の採用数を古い順に出力します。
func RenderTrend(w io.Writer, trend []directory.TrendBucket) error {
	ew := &errWriter{w: w}
	ew.printf("%-14s %5s\n", "MONTH", "HIRES")
	for _, b := range trend {
		ew.printf(barRowFormat, b.Start.Format("Jan 2006"), b.Hires, strings.Repeat("#", b.Hires))
	}
	return ew.err
}

// RenderDepartments は部署名を 1 行ずつ出力します。
func RenderDepartments(w io.Writer, departments []string) error {
	if len(departments) == 0 {
		_, err := fmt.Fprintln(w, "No departments recorded yet.")
		return err
	}
	ew := &errWriter{w: w}
	for _, d := range departments {
		ew.printf("%s\n", d)
	}
	return ew.err
}

func formatDate(e employee.Employee) string {
	if e.HireDate.IsZero() {
		return missingMarker
	}
	return e.HireDate.UTC().Format(dateLayout)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func orMissing(s string) string {
	if s == "" {
		return missingMarker
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return noDepartment
	}
	return s
}

// errWriter は最初の書き込みエラーを保持し、以降の書き込みを捨てます。行末の空白は出力しません。
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	lines := strings.Split(fmt.Sprintf(format, args...), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	_, ew.err = io.WriteString(ew.w, strings.Join(lines, "\n"))
}
