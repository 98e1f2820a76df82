package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const employeeColumns = `id, name, email, phone, job_title, department, hire_date, salary, projects, created_at, updated_at`

// EmployeeRepository は組み込み SQLite を利用した社員永続化の実装です。
// 日時は RFC 3339 の文字列、projects は JSON 配列として保存します。
type EmployeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create は社員を新規作成します。ID は UUID を採番します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	created := e.Clone()
	created.ID = uuid.NewString()
	if created.Projects == nil {
		created.Projects = []string{}
	}

	projects, err := json.Marshal(created.Projects)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encode projects: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO employees (`+employeeColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID,
		created.Name,
		created.Email,
		created.Phone,
		created.JobTitle,
		created.Department,
		formatTime(created.HireDate),
		created.Salary,
		string(projects),
		formatTime(created.CreatedAt),
		formatTime(created.UpdatedAt),
	)
	if err != nil {
		return nil, translateSQLiteError(err)
	}
	return r.FindByID(ctx, created.ID)
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	projects := e.Projects
	if projects == nil {
		projects = []string{}
	}
	encoded, err := json.Marshal(projects)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encode projects: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
        UPDATE employees
           SET name = ?, email = ?, phone = ?, job_title = ?, department = ?,
               hire_date = ?, salary = ?, projects = ?, updated_at = ?
         WHERE id = ?`,
		e.Name,
		e.Email,
		e.Phone,
		e.JobTitle,
		e.Department,
		formatTime(e.HireDate),
		e.Salary,
		string(encoded),
		formatTime(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		return nil, translateSQLiteError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, employee.ErrEmployeeNotFound
	}
	return r.FindByID(ctx, e.ID)
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return translateSQLiteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	return scanEmployee(row)
}

// FindByEmail はメールアドレスで社員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = ?`, email)
	return scanEmployee(row)
}

// List は全社員を登録順で取得します。
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list employees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list employees: %w", err)
	}
	return employees, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*employee.Employee, error) {
	var (
		e                              employee.Employee
		hireDate, createdAt, updatedAt string
		projects                       string
	)
	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Email,
		&e.Phone,
		&e.JobTitle,
		&e.Department,
		&hireDate,
		&e.Salary,
		&projects,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("sqlite: scan employee: %w", err)
	}

	var err error
	if e.HireDate, err = parseTime(hireDate); err != nil {
		return nil, fmt.Errorf("sqlite: hire_date: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("sqlite: created_at: %w", err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("sqlite: updated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(projects), &e.Projects); err != nil {
		return nil, fmt.Errorf("sqlite: decode projects: %w", err)
	}
	if e.Projects == nil {
		e.Projects = []string{}
	}
	return &e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func translateSQLiteError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return employee.ErrEmailAlreadyExists
		}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed: employees.email") {
		return employee.ErrEmailAlreadyExists
	}
	return err
}
