// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the freshness of the persisted fixture index",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := engineConfig()
	if err != nil {
		return err
	}

	manager := newManager(cfg)
	rec, err := manager.Status()
	if err != nil {
		return fmt.Errorf("no freshness record: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	state := "stale"
	if manager.IsCurrent() {
		state = "current"
	}
	fmt.Printf("Index %s: built %s, %d document(s) from %s\n", state, rec.LastUpdate, rec.Documents, rec.Source)
	return nil
}

func init() {
	statusCmd.Flags().Bool("json", false, "output the freshness record as JSON")

	rootCmd.AddCommand(statusCmd)
}
