package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/uranai/pkg/adapters/ledger"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Read recorded fortune requests",
}

var ledgerLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Print the most recent requests, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		sink, err := ledger.Open(cfg.Ledger.DSN)
		if err != nil {
			return err
		}
		defer sink.Close()

		entries, err := sink.Recent(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("reading ledger: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerLsCmd)
	ledgerLsCmd.Flags().IntP("limit", "n", 20, "Number of entries to print")
}
