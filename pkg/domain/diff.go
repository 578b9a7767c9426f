package domain

// SessionDiff lists the fields that changed between two snapshots of a session.
// Values are not included so the diff can be logged without leaking personal data.
type SessionDiff struct {
	UserID   string   `json:"user_id"`
	FromStep Step     `json:"from_step"`
	ToStep   Step     `json:"to_step"`
	Fields   []string `json:"fields,omitempty"`
}

// Diff calculates the difference between two sessions of the same user.
// It returns nil when nothing changed.
func Diff(oldSession, newSession Session) *SessionDiff {
	diff := &SessionDiff{
		UserID:   newSession.UserID,
		FromStep: oldSession.Step,
		ToStep:   newSession.Step,
	}

	if oldSession.Step != newSession.Step {
		diff.Fields = append(diff.Fields, "step")
	}
	if oldSession.Name != newSession.Name {
		diff.Fields = append(diff.Fields, "name")
	}
	if oldSession.Birth != newSession.Birth {
		diff.Fields = append(diff.Fields, "birth")
	}
	if oldSession.Theme != newSession.Theme {
		diff.Fields = append(diff.Fields, "theme")
	}

	if len(diff.Fields) == 0 {
		return nil
	}
	return diff
}
