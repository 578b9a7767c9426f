package domain

import (
	"fmt"
	"strings"
)

// Session represents the persisted dialogue progress of a single user.
// Only the four dialogue fields are serialized; UserID is the store key.
type Session struct {
	UserID string `json:"-"`

	Step  Step   `json:"step"`
	Name  string `json:"name"`
	Birth string `json:"birth"` // YYYY-MM-DD
	Theme string `json:"theme"`
}

// NewSession creates a default session for the given user.
func NewSession(userID string) Session {
	return Session{UserID: userID, Step: StepStart}
}

// Reset clears every captured field and returns the session to StepStart.
// Resetting a default session yields the same default session.
func (s Session) Reset() Session {
	return NewSession(s.UserID)
}

// IsDefault reports whether the session carries no dialogue progress.
func (s Session) IsDefault() bool {
	return s.Step == StepStart && s.Name == "" && s.Birth == "" && s.Theme == ""
}

// Validate checks the structural invariants of a session.
func (s Session) Validate() error {
	if !s.Step.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStep, int(s.Step))
	}
	if s.Step >= StepAwaitingTheme {
		if strings.TrimSpace(s.Name) == "" || s.Birth == "" {
			return fmt.Errorf("%w: step %s requires name and birth", ErrInvalidStep, s.Step)
		}
	}
	return nil
}
