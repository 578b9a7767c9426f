package dialogue

import (
	"fmt"

	"github.com/aretw0/uranai/pkg/domain"
)

// Result is the outcome of a single transition.
type Result struct {
	// Session is the next session value. The input session is never mutated.
	Session domain.Session

	// Messages are the replies for this turn, in order.
	Messages []domain.Message

	// Effect is set when the transition entered StepGenerating.
	Effect *domain.RunGeneration

	// Reset is true when the transition discarded the session because of a protocol violation.
	Reset bool
}

// Transition computes the next session, replies and side effect for an input.
func Transition(s domain.Session, in domain.Input) Result {
	// Unknown steps and broken invariants are protocol violations: start over, asking for the name.
	if err := s.Validate(); err != nil {
		next := s.Reset()
		next.Step = domain.StepAwaitingName
		return Result{Session: next, Messages: text(textSessionReset), Reset: true}
	}

	if s.Step == domain.StepGenerating {
		return Result{Session: s, Messages: text(textProcessing)}
	}

	switch in := in.(type) {
	case domain.UnsupportedInput:
		return Result{Session: s, Messages: text(textTextOnly)}

	case domain.ThemeInput:
		if s.Step != domain.StepAwaitingTheme {
			return outOfOrder(s)
		}
		return selectTheme(s, in.Theme)

	case domain.UnknownPostback:
		return outOfOrder(s)

	case domain.TextInput:
		return onText(s, in.Text)

	case nil:
		return onText(s, "")

	default:
		panic(fmt.Sprintf("dialogue: unhandled input type %T", in))
	}
}

func onText(s domain.Session, raw string) Result {
	// Rejected input behaves like empty input: the step re-prompts.
	t, err := SanitizeInput(raw)
	if err != nil {
		t = ""
	}

	switch s.Step {
	case domain.StepStart:
		next := s
		next.Step = domain.StepAwaitingName
		return Result{Session: next, Messages: text(textGreeting)}

	case domain.StepAwaitingName:
		if t == "" {
			return Result{Session: s, Messages: text(textAskNameAgain)}
		}
		next := s
		next.Name = t
		next.Step = domain.StepAwaitingBirth
		return Result{Session: next, Messages: text(fmt.Sprintf(textAskBirthFormat, t))}

	case domain.StepAwaitingBirth:
		birth, err := NormalizeBirth(t)
		if err != nil {
			return Result{Session: s, Messages: text(textBirthInvalid)}
		}
		next := s
		next.Birth = birth
		next.Step = domain.StepAwaitingTheme
		return Result{Session: next, Messages: themePrompt(textAskTheme)}

	case domain.StepAwaitingTheme:
		// Free text is never a theme; the label set is fixed.
		return Result{Session: s, Messages: themePrompt(textThemeFallback)}
	}

	// Unreachable: Validate and the Generating guard cover every other step.
	next := s.Reset()
	next.Step = domain.StepAwaitingName
	return Result{Session: next, Messages: text(textSessionReset), Reset: true}
}

func selectTheme(s domain.Session, theme domain.Theme) Result {
	next := s
	next.Theme = string(theme)
	next.Step = domain.StepGenerating
	return Result{
		Session: next,
		Effect: &domain.RunGeneration{
			Name:  next.Name,
			Birth: next.Birth,
			Theme: theme,
		},
	}
}

func outOfOrder(s domain.Session) Result {
	return Result{Session: s.Reset(), Messages: text(textUnexpectedOp), Reset: true}
}
