package employee

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees map[string]*Employee
	sequence  int
	order     []string
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*Employee)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	for _, existing := range r.employees {
		if existing.Email == e.Email {
			return nil, ErrEmailAlreadyExists
		}
	}

	clone := e.Clone()
	r.sequence++
	id := fmt.Sprintf("emp-%d", r.sequence)
	clone.ID = id
	r.employees[id] = clone
	r.order = append(r.order, id)
	return clone.Clone(), nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	for _, existing := range r.employees {
		if existing.ID != e.ID && existing.Email == e.Email {
			return nil, ErrEmailAlreadyExists
		}
	}
	r.employees[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	for idx, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return emp.Clone(), nil
}

func (r *fakeEmployeeRepo) FindByEmail(_ context.Context, email string) (*Employee, error) {
	for _, emp := range r.employees {
		if emp.Email == email {
			return emp.Clone(), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) List(_ context.Context) ([]*Employee, error) {
	out := make([]*Employee, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.employees[id].Clone())
	}
	return out, nil
}

func validInput(email string) CreateEmployeeInput {
	return CreateEmployeeInput{
		Name:       "Ada Lovelace",
		Email:      email,
		Phone:      "+1 (555) 010-2030",
		JobTitle:   "Engineer",
		Department: "Engineering",
	}
}

func TestService_CreateEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	now := time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)
	svc := NewService(repo, &stubClock{now: now}, nil)

	salary := 5200.5
	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		Name:       "  Ada Lovelace ",
		Email:      " Ada@Example.com ",
		Phone:      "555-010-2030",
		JobTitle:   " Engineer ",
		Department: " Research ",
		Salary:     &salary,
		Projects:   []string{"engine", " ", "notes "},
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if created.Name != "Ada Lovelace" || created.JobTitle != "Engineer" {
		t.Fatalf("expected trimmed fields, got %q %q", created.Name, created.JobTitle)
	}
	if created.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %s", created.Email)
	}
	if created.Department != "Research" {
		t.Fatalf("expected free-text department to be kept, got %s", created.Department)
	}
	if !created.HireDate.Equal(now) {
		t.Fatalf("expected hire date to default to clock now, got %v", created.HireDate)
	}
	if created.Salary != salary {
		t.Fatalf("expected salary %v, got %v", salary, created.Salary)
	}
	if len(created.Projects) != 2 || created.Projects[1] != "notes" {
		t.Fatalf("expected blank projects dropped, got %v", created.Projects)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps to use clock now")
	}
}

func TestService_CreateEmployee_ExplicitHireDate(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil)

	hired := time.Date(2024, 3, 2, 0, 0, 0, 0, time.FixedZone("JST", 9*60*60))
	in := validInput("hire@example.com")
	in.HireDate = &hired

	created, err := svc.CreateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	if !created.HireDate.Equal(hired) || created.HireDate.Location() != time.UTC {
		t.Fatalf("expected hire date stored in UTC, got %v", created.HireDate)
	}
}

func TestService_CreateEmployee_Validation(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		mutate func(*CreateEmployeeInput)
		want   error
	}{
		"empty name":      {func(in *CreateEmployeeInput) { in.Name = "   " }, ErrInvalidName},
		"bad email":       {func(in *CreateEmployeeInput) { in.Email = "not-an-email" }, ErrInvalidEmail},
		"short phone":     {func(in *CreateEmployeeInput) { in.Phone = "(555) 123" }, ErrInvalidPhone},
		"letters phone":   {func(in *CreateEmployeeInput) { in.Phone = "555-CALL-NOW1" }, ErrInvalidPhone},
		"empty job title": {func(in *CreateEmployeeInput) { in.JobTitle = "" }, ErrInvalidJobTitle},
		"negative salary": {func(in *CreateEmployeeInput) { v := -1.0; in.Salary = &v }, ErrInvalidSalary},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil)
			in := validInput("valid@example.com")
			tc.mutate(&in)

			_, err := svc.CreateEmployee(context.Background(), in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestService_CreateEmployee_ReportsEveryInvalidField(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{Email: "broken"})
	for _, want := range []error{ErrInvalidName, ErrInvalidEmail, ErrInvalidPhone, ErrInvalidJobTitle} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v in %v", want, err)
		}
	}
}

func TestService_CreateEmployee_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	if _, err := svc.CreateEmployee(context.Background(), validInput("dup@example.com")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.CreateEmployee(context.Background(), validInput("DUP@example.com"))
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestService_UpdateEmployee_Partial(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	clk := &stubClock{now: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clk, nil)

	created, err := svc.CreateEmployee(context.Background(), validInput("partial@example.com"))
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	clk.now = clk.now.Add(time.Hour)

	title := "  Staff Engineer "
	dept := "Platform"
	salary := 9000.0
	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		ID:          created.ID,
		JobTitle:    &title,
		Department:  &dept,
		Salary:      &salary,
		Projects:    []string{"atlas"},
		ProjectsSet: true,
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}

	if updated.JobTitle != "Staff Engineer" || updated.Department != "Platform" {
		t.Fatalf("expected updated fields, got %q %q", updated.JobTitle, updated.Department)
	}
	if updated.Name != created.Name || updated.Email != created.Email || !updated.HireDate.Equal(created.HireDate) {
		t.Fatalf("expected untouched fields to survive, got %+v", updated)
	}
	if updated.Salary != salary || len(updated.Projects) != 1 {
		t.Fatalf("expected analytics fields to update, got %v %v", updated.Salary, updated.Projects)
	}
	if !updated.UpdatedAt.Equal(clk.now) {
		t.Fatalf("expected updated timestamp to use clock")
	}
}

func TestService_UpdateEmployee_EmailConflict(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	if _, err := svc.CreateEmployee(context.Background(), validInput("first@example.com")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.CreateEmployee(context.Background(), validInput("second@example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	taken := "First@Example.com"
	_, err = svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: second.ID, Email: &taken})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}

	same := "SECOND@example.com"
	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: second.ID, Email: &same}); err != nil {
		t.Fatalf("re-submitting own email should succeed, got %v", err)
	}
}

func TestService_UpdateEmployee_InvalidPhone(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil)

	created, err := svc.CreateEmployee(context.Background(), validInput("phone@example.com"))
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	short := "12345"
	_, err = svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: created.ID, Phone: &short})
	if !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestService_UpdateEmployee_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	name := "Nobody"
	_, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: "missing", Name: &name})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	_, err = svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: " "})
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_DeleteAndGet(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	created, err := svc.CreateEmployee(context.Background(), validInput("gone@example.com"))
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	found, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: created.ID})
	if err != nil || found.Email != "gone@example.com" {
		t.Fatalf("GetEmployee returned %+v, %v", found, err)
	}

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}

	if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: created.ID}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound after delete, got %v", err)
	}
	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: created.ID}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound on second delete, got %v", err)
	}
}

func TestService_ListEmployees_CreationOrder(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil)

	empty, err := svc.ListEmployees(context.Background())
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", empty)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateEmployee(context.Background(), validInput(fmt.Sprintf("seed%d@example.com", i))); err != nil {
			t.Fatalf("unexpected seed error: %v", err)
		}
	}

	all, err := svc.ListEmployees(context.Background())
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 employees, got %d", len(all))
	}
	for i, emp := range all {
		if want := fmt.Sprintf("seed%d@example.com", i); emp.Email != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, emp.Email)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	t.Parallel()

	valid := []string{"5550102030", "+81 90-1234-5678", "(555) 010.2030"}
	for _, v := range valid {
		if !IsValidPhone(v) {
			t.Errorf("expected %q to be valid", v)
		}
	}

	invalid := []string{"", "555-0102", "+1 555 010 203x", "----------"}
	for _, v := range invalid {
		if IsValidPhone(v) {
			t.Errorf("expected %q to be invalid", v)
		}
	}
}
