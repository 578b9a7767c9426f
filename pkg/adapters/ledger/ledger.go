// Package ledger provides append-only sinks for completed fortune requests.
//
// The operator reviews each generated draft before sending the final reading,
// so every sink only ever appends and lists the most recent rows.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/uranai/pkg/domain"
)

// Sink is a ledger that can also be listed and closed.
type Sink interface {
	Append(ctx context.Context, e domain.LedgerEntry) error
	Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
	Close() error
}

// DSNType identifies the backend selected by a DSN.
type DSNType string

const (
	DSNTypeSQLite   DSNType = "sqlite"
	DSNTypePostgres DSNType = "postgres"
	DSNTypeFile     DSNType = "file"
	DSNTypeSheets   DSNType = "sheets"
)

// DetectDSNType infers the backend: postgres URLs or key=value strings with a host,
// file:// URLs for JSON lines, sheets:// URLs for a Google Sheets tab, and
// anything else is a SQLite database path.
func DetectDSNType(dsn string) DSNType {
	d := strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(d, "postgres://"), strings.HasPrefix(d, "postgresql://"):
		return DSNTypePostgres
	case strings.Contains(d, "host=") && strings.Contains(d, "dbname="):
		return DSNTypePostgres
	case strings.HasPrefix(d, "file://"):
		return DSNTypeFile
	case strings.HasPrefix(d, "sheets://"):
		return DSNTypeSheets
	default:
		return DSNTypeSQLite
	}
}

// Open creates the sink selected by dsn.
func Open(dsn string) (Sink, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("ledger DSN not set")
	}
	switch DetectDSNType(dsn) {
	case DSNTypePostgres:
		return NewPostgresSink(dsn)
	case DSNTypeFile:
		return NewFileSink(strings.TrimPrefix(dsn, "file://"))
	case DSNTypeSheets:
		return openSheets(dsn)
	default:
		return NewSQLiteSink(dsn)
	}
}
