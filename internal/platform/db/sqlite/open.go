package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// MemoryPath はプロセス内だけで完結するデータベースを指します。
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS employees (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL UNIQUE,
    phone      TEXT NOT NULL,
    job_title  TEXT NOT NULL,
    department TEXT NOT NULL DEFAULT '',
    hire_date  TEXT NOT NULL,
    salary     REAL NOT NULL DEFAULT 0,
    projects   TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

// Open は SQLite データベースを開き、employees テーブルを用意します。
//
// SQLite は書き込みが 1 接続に限られるため、接続数は 1 に固定します。
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "employees.db"
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("sqlite: create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create employees table: %w", err)
	}
	return db, nil
}
