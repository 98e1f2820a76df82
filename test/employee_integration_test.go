//go:build integration

package integration

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ogurasousui/employee-directory/internal/adapters/http/client"
	"github.com/ogurasousui/employee-directory/internal/adapters/http/handler"
	repo "github.com/ogurasousui/employee-directory/internal/adapters/repository/postgres"
	"github.com/ogurasousui/employee-directory/internal/core/directory"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/ogurasousui/employee-directory/internal/platform/config"
	pg "github.com/ogurasousui/employee-directory/internal/platform/db/postgres"
	"github.com/ogurasousui/employee-directory/internal/platform/logging"
)

const (
	migrationsDir = "../assets/migrations"
	seedFile      = "../assets/seeds/001_employees.sql"
)

func TestEmployeeDirectoryIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	seed, err := os.ReadFile(seedFile)
	if err != nil {
		t.Fatalf("failed to read seeds: %v", err)
	}
	if _, err := pool.Exec(ctx, string(seed)); err != nil {
		t.Fatalf("failed to apply seeds: %v", err)
	}

	svc := employee.NewService(repo.NewEmployeeRepository(pool), stubClock{now: time.Now().UTC()}, pg.NewTransactionManager(pool))
	srv := httptest.NewServer(handler.NewRouter(svc, logging.Discard(), handler.RouterOptions{}))
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL)
	if err != nil {
		t.Fatalf("client.New error: %v", err)
	}
	session := directory.NewSession(c, directory.DefaultPageSize)
	if err := session.Refresh(ctx); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	seeded := len(session.Snapshot().Records)
	if seeded != 3 {
		t.Fatalf("expected 3 seeded employees, got %d", seeded)
	}

	salary := 1250.0
	created, err := session.Create(ctx, employee.CreateEmployeeInput{
		Name:       "Integration",
		Email:      "Integration@Example.com",
		Phone:      "0123456789",
		JobTitle:   "Tester",
		Department: "Engineering",
		Salary:     &salary,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	records := session.Snapshot().Records
	if len(records) != seeded+1 || records[len(records)-1].ID != created.ID {
		t.Fatalf("created employee should be listed last: %+v", records)
	}
	if created.Email != "integration@example.com" {
		t.Fatalf("email not normalized: %s", created.Email)
	}

	if _, err := session.Create(ctx, employee.CreateEmployeeInput{
		Name: "Dup", Email: "integration@example.com", Phone: "0123456789", JobTitle: "Tester",
	}); !client.IsStatus(err, 409) {
		t.Fatalf("expected conflict, got %v", err)
	}

	dept := "Operations"
	updated, err := session.Update(ctx, employee.UpdateEmployeeInput{ID: created.ID, Department: &dept})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Department != dept || updated.Name != "Integration" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := session.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := session.Get(ctx, created.ID); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if _, err := session.Get(ctx, "not-a-uuid"); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound for malformed id, got %v", err)
	}
}

func resetMigrations(dsn, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	m, err := migrate.New("file://"+filepath.ToSlash(abs), dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}
