package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/uranai/pkg/dialogue"
	"github.com/aretw0/uranai/pkg/domain"
)

// Overlay highlights a user's position on the diagram.
type Overlay struct {
	Current domain.Step
}

// GenerateMermaid renders the dialogue as a Mermaid flowchart.
// Input steps are drawn as parallelograms, the start as a circle and the
// generation step as a subroutine. Side-effect outcomes use dotted arrows.
func GenerateMermaid(edges []dialogue.Edge, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	seen := make(map[domain.Step]bool)
	for _, e := range edges {
		for _, s := range []domain.Step{e.From, e.To} {
			if seen[s] {
				continue
			}
			seen[s] = true
			opener, closer := shape(s)
			fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(s), opener, s.String(), closer)
		}
	}

	for _, e := range edges {
		label := strings.ReplaceAll(e.On, "\"", "'")
		arrow := fmt.Sprintf("-- \"%s\" -->", label)
		if e.Effect {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(e.From), arrow, nodeID(e.To))
	}

	if overlay != nil && seen[overlay.Current] {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current))
	}

	return sb.String()
}

func shape(s domain.Step) (string, string) {
	switch s {
	case domain.StepStart:
		return "((", "))"
	case domain.StepGenerating:
		return "[[", "]]"
	default:
		return "[/", "/]"
	}
}

func nodeID(s domain.Step) string {
	return fmt.Sprintf("step%d", int(s))
}
