package dialogue

import "github.com/aretw0/uranai/pkg/domain"

// Edge documents one step change of the intake dialogue.
type Edge struct {
	From domain.Step
	To   domain.Step
	On   string

	// Effect marks edges taken by the turn after the generation side effect,
	// not by Transition itself.
	Effect bool
}

// Edges lists the step changes of the dialogue, including the two outcomes of
// the generation side effect. Self-loops (re-prompts) are omitted.
func Edges() []Edge {
	return []Edge{
		{From: domain.StepStart, To: domain.StepAwaitingName, On: "any text"},
		{From: domain.StepAwaitingName, To: domain.StepAwaitingBirth, On: "name"},
		{From: domain.StepAwaitingBirth, To: domain.StepAwaitingTheme, On: "valid birth date"},
		{From: domain.StepAwaitingTheme, To: domain.StepGenerating, On: "theme postback"},
		{From: domain.StepGenerating, To: domain.StepStart, On: "report recorded", Effect: true},
		{From: domain.StepGenerating, To: domain.StepAwaitingTheme, On: "generation failed", Effect: true},
		{From: domain.StepAwaitingName, To: domain.StepStart, On: "out-of-order postback"},
		{From: domain.StepAwaitingBirth, To: domain.StepStart, On: "out-of-order postback"},
	}
}
