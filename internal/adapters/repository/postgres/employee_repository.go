package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	pgdb "github.com/ogurasousui/employee-directory/internal/platform/db/postgres"
)

const (
	uniqueViolationCode           = "23505"
	invalidTextRepresentationCode = "22P02"
)

const employeeColumns = `id::text, name, email, phone, job_title, department, hire_date, salary, projects, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。ID はデータベースが採番します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (name, email, phone, job_title, department, hire_date, salary, projects, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+employeeColumns,
		e.Name,
		e.Email,
		e.Phone,
		e.JobTitle,
		e.Department,
		e.HireDate,
		e.Salary,
		projectsOrEmpty(e.Projects),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET name = $1,
               email = $2,
               phone = $3,
               job_title = $4,
               department = $5,
               hire_date = $6,
               salary = $7,
               projects = $8,
               updated_at = $9
         WHERE id = $10
        RETURNING `+employeeColumns,
		e.Name,
		e.Email,
		e.Phone,
		e.JobTitle,
		e.Department,
		e.HireDate,
		e.Salary,
		projectsOrEmpty(e.Projects),
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。UUID として解釈できない ID は存在しない扱いです。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1 LIMIT 1`, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスで社員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = $1 LIMIT 1`, email)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return found, nil
}

// List は全社員を作成順で取得します。
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translatePgError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}

	return employees, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e         employee.Employee
		hireDate  time.Time
		createdAt time.Time
		updatedAt time.Time
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
		&e.Projects,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	e.HireDate = hireDate.UTC()
	e.CreatedAt = createdAt.UTC()
	e.UpdatedAt = updatedAt.UTC()
	if e.Projects == nil {
		e.Projects = []string{}
	}
	return &e, nil
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrEmailAlreadyExists
		case invalidTextRepresentationCode:
			return employee.ErrEmployeeNotFound
		}
	}

	return err
}

func projectsOrEmpty(projects []string) []string {
	if projects == nil {
		return []string{}
	}
	return projects
}
