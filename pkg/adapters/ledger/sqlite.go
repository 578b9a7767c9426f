package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/aretw0/uranai/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteSink appends rows to a SQLite database file.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if needed) the database at path and applies migrations.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// Serialize writers; SQLite locks the whole file anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite ledger ready", "path", path)

	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Append(ctx context.Context, e domain.LedgerEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fortune_requests (user_id, name, birth, theme, report, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Name, e.Birth, e.Theme, e.Report, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert fortune request for %s: %w", e.UserID, err)
	}
	return nil
}

func (s *SQLiteSink) Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, name, birth, theme, report, created_at FROM fortune_requests ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fortune requests: %w", err)
	}
	return scanEntries(rows)
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func scanEntries(rows *sql.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Birth, &e.Theme, &e.Report, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fortune request: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
