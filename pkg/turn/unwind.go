package turn

import "github.com/aretw0/uranai/pkg/domain"

// unwind compensates a failed generation. Name, birth and the selected theme
// are kept so that selecting a theme again retries the request.
func unwind(s domain.Session) domain.Session {
	if s.Step != domain.StepGenerating {
		return s
	}
	s.Step = domain.StepAwaitingTheme
	return s
}
