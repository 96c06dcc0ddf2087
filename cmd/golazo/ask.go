// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/golazo-dev/golazo/internal/engine"
	"github.com/golazo-dev/golazo/internal/fixtures"
	"github.com/golazo-dev/golazo/internal/lifecycle"
	"github.com/golazo-dev/golazo/internal/llm"
	"github.com/golazo-dev/golazo/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about today's fixtures",
	Long: `Ask runs the full query pipeline: it ensures today's fixture index is
loaded (rebuilding it when stale), retrieves the most relevant fixture
documents, and generates an answer in the voice of a Spanish football
commentator.

Failures degrade to descriptive Spanish fallback answers; ask never fails
because of an upstream API.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := engineConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	manager := newManager(cfg)
	manager.Initialize(ctx)
	select {
	case <-manager.Ready():
	case <-ctx.Done():
		return fmt.Errorf("index initialization timed out: %w", ctx.Err())
	}

	backend := llm.NewBackend(cfg.LLM, cfg.LLM.APIKey)
	eng := engine.New(cfg, manager, backend, os.Stderr)

	result := eng.Query(ctx, question, !noCache)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(result)
	return nil
}

// printResult renders a query result for the terminal: question, answer,
// the documents the answer drew on, and whether the cache served it.
func printResult(r types.Result) {
	cacheState := "MISS"
	if r.CacheHit {
		cacheState = "HIT"
	}
	fmt.Printf("Pregunta: %s\n\n", r.Question)
	fmt.Println(r.Answer)
	if len(r.DocsUsed) > 0 {
		fmt.Println("\nDocumentos:")
		for i, d := range r.DocsUsed {
			fmt.Printf("  %d. %s\n", i+1, d.Content)
			if league, ok := d.Metadata["league"]; ok {
				fmt.Printf("     [%v]\n", league)
			}
		}
	}
	fmt.Printf("\nCache: %s\n", cacheState)
}

// newManager wires the fixtures client into a lifecycle manager.
func newManager(cfg types.EngineConfig) *lifecycle.Manager {
	source := fixtures.NewClient(cfg.Fixtures, cfg.Fixtures.APIKey)
	return lifecycle.NewManager(cfg.Index, source, cfg.Fixtures.Timezone, os.Stderr)
}

func init() {
	askCmd.Flags().Bool("no-cache", false, "bypass the query cache")
	askCmd.Flags().Bool("json", false, "output the full result as JSON")

	rootCmd.AddCommand(askCmd)
}
