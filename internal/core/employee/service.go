package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context) ([]*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// NewService は Service を生成します。clock と tx は nil の場合に既定実装を使います。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	Name       string
	Email      string
	Phone      string
	JobTitle   string
	Department string
	HireDate   *time.Time
	Salary     *float64
	Projects   []string
}

// UpdateEmployeeInput は社員更新時の入力です。nil のフィールドは変更しません。
type UpdateEmployeeInput struct {
	ID          string
	Name        *string
	Email       *string
	Phone       *string
	JobTitle    *string
	Department  *string
	HireDate    *time.Time
	Salary      *float64
	Projects    []string
	ProjectsSet bool
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// CreateEmployee は新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	now := s.clock.Now()

	emp := &Employee{
		Name:       strings.TrimSpace(in.Name),
		Email:      normalizeEmail(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		JobTitle:   strings.TrimSpace(in.JobTitle),
		Department: strings.TrimSpace(in.Department),
		HireDate:   normalizeHireDate(in.HireDate, now),
		Projects:   normalizeProjects(in.Projects),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Salary != nil {
		emp.Salary = *in.Salary
	}

	if err := validateRecord(emp); err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmailNotExists(txCtx, emp.Email, ""); err != nil {
			return err
		}

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は社員情報を更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			existing.Name = strings.TrimSpace(*in.Name)
		}
		if in.Email != nil {
			email := normalizeEmail(*in.Email)
			if email != existing.Email {
				if err := s.ensureEmailNotExists(txCtx, email, existing.ID); err != nil {
					return err
				}
				existing.Email = email
			}
		}
		if in.Phone != nil {
			existing.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.JobTitle != nil {
			existing.JobTitle = strings.TrimSpace(*in.JobTitle)
		}
		if in.Department != nil {
			existing.Department = strings.TrimSpace(*in.Department)
		}
		if in.HireDate != nil {
			existing.HireDate = normalizeHireDate(in.HireDate, existing.HireDate)
		}
		if in.Salary != nil {
			existing.Salary = *in.Salary
		}
		if in.ProjectsSet {
			existing.Projects = normalizeProjects(in.Projects)
		}

		if err := validateRecord(existing); err != nil {
			return err
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は社員を削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は全社員を作成順で取得します。
func (s *Service) ListEmployees(ctx context.Context) ([]*Employee, error) {
	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		employees = found
		return nil
	}); err != nil {
		return nil, err
	}

	if employees == nil {
		employees = []*Employee{}
	}
	return employees, nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email, selfID string) error {
	emp, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil && emp.ID != selfID {
		return ErrEmailAlreadyExists
	}
	return nil
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// normalizeHireDate は入社日を UTC のミリ秒精度にそろえます。未指定なら fallback を使います。
func normalizeHireDate(t *time.Time, fallback time.Time) time.Time {
	value := fallback
	if t != nil && !t.IsZero() {
		value = *t
	}
	return value.UTC().Truncate(time.Millisecond)
}

func normalizeProjects(projects []string) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
