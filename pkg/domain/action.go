package domain

import "time"

// RunGeneration is the side effect requested when a user selects a theme.
// The orchestrator executes it as generate → record → reply → reset.
type RunGeneration struct {
	Name  string
	Birth string
	Theme Theme
}

// LedgerEntry is one completed request appended for operator review.
type LedgerEntry struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Birth     string    `json:"birth"`
	Theme     string    `json:"theme"`
	Report    string    `json:"report"`
	CreatedAt time.Time `json:"created_at"`
}
