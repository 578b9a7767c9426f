package ports

import (
	"context"

	"github.com/aretw0/uranai/pkg/domain"
)

// Generator produces a personalized report. It may fail; callers do not retry.
type Generator interface {
	Generate(ctx context.Context, name, birth string, theme domain.Theme) (string, error)
}

// Ledger is an append-only sink of completed requests.
type Ledger interface {
	Append(ctx context.Context, entry domain.LedgerEntry) error
}

// Replier delivers messages through a one-time reply token.
// It fails if the token is invalid, expired or already used.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages []domain.Message) error
}
