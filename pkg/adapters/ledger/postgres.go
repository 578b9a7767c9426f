package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/aretw0/uranai/pkg/domain"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresSink appends rows to PostgreSQL.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink connects, configures the pool and applies migrations.
func NewPostgresSink(dsn string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres ledger ready")

	return &PostgresSink{db: db}, nil
}

func (s *PostgresSink) Append(ctx context.Context, e domain.LedgerEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fortune_requests (user_id, name, birth, theme, report, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.UserID, e.Name, e.Birth, e.Theme, e.Report, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert fortune request for %s: %w", e.UserID, err)
	}
	return nil
}

func (s *PostgresSink) Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, name, birth, theme, report, created_at FROM fortune_requests ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fortune requests: %w", err)
	}
	return scanEntries(rows)
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
