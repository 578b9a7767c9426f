package main

import (
	"fmt"

	"github.com/aretw0/uranai/internal/presentation/graph"
	"github.com/aretw0/uranai/pkg/dialogue"
	"github.com/aretw0/uranai/pkg/session"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [user-id]",
	Short: "Export the dialogue diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the intake dialogue.
With a user id, the user's current step is highlighted (requires KV_URL).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(dialogue.Edges(), nil))
			return nil
		}

		return withSessions(cmd, func(m *session.Manager) error {
			s, err := m.Inspect(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("loading session '%s': %w", args[0], err)
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(dialogue.Edges(), &graph.Overlay{Current: s.Step}))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
