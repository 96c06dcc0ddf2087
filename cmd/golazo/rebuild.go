// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the fixture index from the fixtures API",
	Long: `Rebuild fetches today's fixtures, builds a fresh semantic index,
persists it, and updates the freshness record. With --if-stale the
persisted index is reused when it was already built today.

When the fixtures API is unreachable or returns no relevant matches, the
index is rebuilt around a single placeholder document instead of failing.`,
	RunE: runRebuild,
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ifStale, _ := cmd.Flags().GetBool("if-stale")

	cfg, err := engineConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	manager := newManager(cfg)
	if ifStale {
		if err := manager.Reload(ctx); err != nil {
			return err
		}
	} else {
		if err := manager.Rebuild(ctx); err != nil {
			return err
		}
	}

	rec, err := manager.Status()
	if err != nil {
		return err
	}
	fmt.Printf("Index current as of %s: %d document(s) from %s\n", rec.LastUpdate, rec.Documents, rec.Source)
	return nil
}

func init() {
	rebuildCmd.Flags().Bool("if-stale", false, "skip the rebuild when the persisted index was built today")

	rootCmd.AddCommand(rebuildCmd)
}
