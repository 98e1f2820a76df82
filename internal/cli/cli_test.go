package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ogurasousui/employee-directory/internal/core/directory"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	records []employee.Employee
	nextID  int
}

func (s *memStore) ListEmployees(context.Context) ([]employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]employee.Employee(nil), s.records...), nil
}

func (s *memStore) GetEmployee(_ context.Context, id string) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (s *memStore) CreateEmployee(_ context.Context, in employee.CreateEmployeeInput) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec := employee.Employee{
		ID:         fmt.Sprintf("new-%d", s.nextID),
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		JobTitle:   in.JobTitle,
		Department: in.Department,
		Projects:   in.Projects,
	}
	if in.HireDate != nil {
		rec.HireDate = *in.HireDate
	}
	if in.Salary != nil {
		rec.Salary = *in.Salary
	}
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *memStore) UpdateEmployee(_ context.Context, in employee.UpdateEmployeeInput) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		rec := &s.records[i]
		if rec.ID != in.ID {
			continue
		}
		if in.Name != nil {
			rec.Name = *in.Name
		}
		if in.Department != nil {
			rec.Department = *in.Department
		}
		if in.Salary != nil {
			rec.Salary = *in.Salary
		}
		if in.ProjectsSet {
			rec.Projects = in.Projects
		}
		return *rec, nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (s *memStore) DeleteEmployee(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return employee.ErrEmployeeNotFound
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seededStore() *memStore {
	return &memStore{records: []employee.Employee{
		{ID: "e1", Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+1 555 010 2030", JobTitle: "Staff Engineer", Department: "Engineering", HireDate: day(2023, time.December, 4), Salary: 1500, Projects: []string{"atlas", "beacon"}},
		{ID: "e2", Name: "Grace Hopper", Email: "grace@example.com", JobTitle: "Engineering Manager", Department: "Engineering", HireDate: day(2024, time.February, 11), Salary: 1800, Projects: []string{"atlas"}},
		{ID: "e3", Name: "Linus Pauling", Email: "linus@example.com", JobTitle: "Account Executive", Department: "Sales", HireDate: day(2024, time.February, 20), Salary: 900, Projects: []string{}},
		{ID: "e4", Name: "Mary Jackson", Email: "mary@example.com", JobTitle: "Designer", Department: "Marketing", HireDate: day(2024, time.March, 1), Salary: 1000, Projects: []string{"campaign"}},
		{ID: "e5", Name: "Alan Turing", Email: "alan@example.com", JobTitle: "Engineer", Department: "Engineering", HireDate: day(2023, time.May, 15), Salary: 1200, Projects: []string{}},
		{ID: "e6", Name: "Hedy Lamarr", Email: "hedy@example.com", JobTitle: "Inventor", HireDate: day(2024, time.March, 10), Projects: []string{}},
		{ID: "e7", Name: "Katherine Johnson", Email: "katherine@example.com", JobTitle: "Analyst", Department: "Sales", Salary: 1100, Projects: []string{"orbit"}},
	}}
}

func run(t *testing.T, store directory.RecordStore, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand(Options{
		Out: &out,
		Err: &out,
		NewStore: func(string, time.Duration) (directory.RecordStore, error) {
			return store, nil
		},
		Now: func() time.Time { return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC) },
	})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func assertGolden(t *testing.T, name, got string) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}

func TestList_Golden(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
	}{
		{"list_page1", []string{"list"}},
		{"list_page2", []string{"list", "--page", "2"}},
		{"list_filtered", []string{"list", "--search", "ENG", "--department", "engineering"}},
		{"list_empty", []string{"list", "--search", "nobody"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, seededStore(), tc.args...)
			require.NoError(t, err)
			assertGolden(t, tc.name, out)
		})
	}
}

func TestList_PageOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := run(t, seededStore(), "list", "--page", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 3 is out of range (1..2)")
}

func TestGet(t *testing.T) {
	t.Parallel()

	out, err := run(t, seededStore(), "get", "e1")
	require.NoError(t, err)
	assertGolden(t, "get", out)

	_, err = run(t, seededStore(), "get", "nope")
	require.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	assert.Equal(t, "employee nope not found", describe(err))
}

func TestAnalytics_Golden(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
	}{
		{"stats", []string{"stats", "--as-of", "2024-03-15"}},
		{"stats_engineering", []string{"stats", "--department", "Engineering"}},
		{"trend", []string{"trend", "--as-of", "2024-03-15"}},
		{"trend_sales", []string{"trend", "--department", "sales", "--months", "3"}},
		{"departments", []string{"departments"}},
		{"departments_suggested", []string{"departments", "--suggested"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, seededStore(), tc.args...)
			require.NoError(t, err)
			assertGolden(t, tc.name, out)
		})
	}
}

func TestTrend_RejectsNonPositiveMonths(t *testing.T) {
	t.Parallel()

	_, err := run(t, seededStore(), "trend", "--months", "0")
	require.Error(t, err)
}

func TestAdd_CreatesAndRefreshes(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	out, err := run(t, store,
		"add", "--name", "Ada", "--email", "ada@example.com", "--phone", "0123456789",
		"--job-title", "Engineer", "--hire-date", "2024-03-02", "--salary", "1200", "--project", "atlas,beacon")
	require.NoError(t, err)
	assert.Contains(t, out, "Created employee new-1")

	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, day(2024, time.March, 2), rec.HireDate)
	assert.Equal(t, 1200.0, rec.Salary)
	assert.Equal(t, []string{"atlas", "beacon"}, rec.Projects)
}

func TestAdd_RequiresCoreFields(t *testing.T) {
	t.Parallel()

	_, err := run(t, &memStore{}, "add", "--name", "Ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestUpdate_OnlyChangedFields(t *testing.T) {
	t.Parallel()

	store := seededStore()
	out, err := run(t, store, "update", "e2", "--department", "Operations", "--clear-projects")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated employee e2")

	got, err := store.GetEmployee(context.Background(), "e2")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", got.Name)
	assert.Equal(t, "Operations", got.Department)
	assert.Empty(t, got.Projects)

	_, err = run(t, store, "update", "e2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")

	_, err = run(t, store, "update", "missing", "--name", "X")
	assert.Equal(t, "employee missing not found", describe(err))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	store := seededStore()
	out, err := run(t, store, "delete", "e7")
	require.NoError(t, err)
	assert.Equal(t, "Deleted employee e7 (6 remaining)\n", out)

	_, err = run(t, store, "delete", "e7")
	require.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestRoot_PassesBaseURL(t *testing.T) {
	t.Parallel()

	var got string
	cmd := NewRootCommand(Options{
		Out: &bytes.Buffer{},
		NewStore: func(baseURL string, _ time.Duration) (directory.RecordStore, error) {
			got = baseURL
			return seededStore(), nil
		},
	})
	cmd.SetArgs([]string{"--base-url", "http://directory.internal:9000", "departments"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "http://directory.internal:9000", got)
}

func TestStats_DepartmentCardCountsWholeDirectory(t *testing.T) {
	t.Parallel()

	for _, dept := range []string{directory.AllDepartments, "Engineering", "Marketing"} {
		out, err := run(t, seededStore(), "stats", "--department", dept, "--as-of", "2024-03-31")
		require.NoError(t, err)
		assert.Contains(t, out, "Departments          4\n", "department=%s", dept)
	}

	out, err := run(t, seededStore(), "stats", "--department", "Marketing", "--as-of", "2024-03-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Total employees      1\n")
}

// flakyListStore は書き込みを受け付けたあと、一覧取得だけ失敗させます。
type flakyListStore struct {
	*memStore
	mu       sync.Mutex
	lists    int
	failFrom int
}

func (s *flakyListStore) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	s.mu.Lock()
	s.lists++
	n := s.lists
	s.mu.Unlock()
	if n >= s.failFrom {
		return nil, fmt.Errorf("list employees: %w", errBackendDown)
	}
	return s.memStore.ListEmployees(ctx)
}

var errBackendDown = errors.New("backend unavailable")

func TestWrites_ReportSuccessWhenOnlyReloadFails(t *testing.T) {
	t.Parallel()

	store := &flakyListStore{memStore: seededStore(), failFrom: 1}
	out, err := run(t, store,
		"add", "--name", "Ada", "--email", "ada2@example.com", "--phone", "0123456789", "--job-title", "Engineer")
	require.NoError(t, err)
	assert.Contains(t, out, "Created employee new-1\n")
	assert.Contains(t, out, "warning: directory: write applied but list refresh failed")
	assert.Contains(t, out, "backend unavailable")
	assert.Len(t, store.records, 8)

	out, err = run(t, store, "update", "new-1", "--department", "Research")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated employee new-1\n")
	assert.Contains(t, out, "warning:")

	out, err = run(t, store, "delete", "new-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted employee new-1\n")
	assert.NotContains(t, out, "remaining")
	assert.Len(t, store.records, 7)

	_, err = run(t, store, "list")
	require.ErrorIs(t, err, errBackendDown)
}
