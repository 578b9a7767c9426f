package domain

import "fmt"

// Step is the position of a user in the intake dialogue.
// The integer values are part of the persisted record and must not change.
type Step int

const (
	StepStart         Step = 0 // Fresh session, nothing asked yet
	StepAwaitingName  Step = 1 // Name prompt sent
	StepAwaitingBirth Step = 2 // Birth date prompt sent
	StepAwaitingTheme Step = 3 // Theme quick-reply sent
	StepGenerating    Step = 4 // Report generation in progress
)

// Valid reports whether s is one of the defined dialogue steps.
func (s Step) Valid() bool {
	return s >= StepStart && s <= StepGenerating
}

func (s Step) String() string {
	switch s {
	case StepStart:
		return "start"
	case StepAwaitingName:
		return "awaiting_name"
	case StepAwaitingBirth:
		return "awaiting_birth"
	case StepAwaitingTheme:
		return "awaiting_theme"
	case StepGenerating:
		return "generating"
	default:
		return fmt.Sprintf("invalid(%d)", int(s))
	}
}
