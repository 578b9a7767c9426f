package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/uranai"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/aretw0/uranai/pkg/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored dialogue sessions",
	Long:  `List, inspect, and remove the per-user sessions kept in the session store (KV_URL).`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List users with an active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(m *session.Manager) error {
			users, err := m.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No active sessions found.")
				return nil
			}

			fmt.Fprintln(out, "Active Sessions:")
			for _, id := range users {
				fmt.Fprintln(out, "- "+id)
			}
			return nil
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <user-id>",
	Short: "Print the stored session of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := args[0]
		return withSessions(cmd, func(m *session.Manager) error {
			s, err := m.Inspect(cmd.Context(), userID)
			if errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("no session for '%s'", userID)
			}
			if err != nil {
				return fmt.Errorf("loading session '%s': %w", userID, err)
			}

			view := struct {
				UserID string `json:"user_id"`
				Step   string `json:"step"`
				Name   string `json:"name"`
				Birth  string `json:"birth"`
				Theme  string `json:"theme"`
			}{s.UserID, s.Step.String(), s.Name, s.Birth, string(s.Theme)}

			data, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [user-id]...",
	Short: "Remove one or more sessions",
	Args: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all && len(args) > 0 {
			return errors.New("--all does not take user ids")
		}
		if !all && len(args) == 0 {
			return errors.New("requires at least one user id or --all")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(m *session.Manager) error {
			if all, _ := cmd.Flags().GetBool("all"); all {
				users, err := m.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing sessions: %w", err)
				}
				args = users
			}

			var failed int
			out := cmd.OutOrStdout()
			for _, id := range args {
				if err := m.Delete(cmd.Context(), id); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
					failed++
					continue
				}
				fmt.Fprintf(out, "Removed session '%s'\n", id)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d sessions could not be removed", failed, len(args))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionRmCmd.Flags().Bool("all", false, "Remove every stored session")
}

func withSessions(cmd *cobra.Command, fn func(*session.Manager) error) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Session.KVURL == "" {
		return errors.New("KV_URL is not set; the in-memory store has nothing to manage")
	}

	m, closeStore, err := uranai.OpenSessions(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := m.EnsureReady(cmd.Context()); err != nil {
		return err
	}
	return fn(m)
}
