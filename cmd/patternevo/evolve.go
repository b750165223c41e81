package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/emergentmind/patternevo/pkg/events"
	"github.com/emergentmind/patternevo/pkg/evolution"
	"github.com/emergentmind/patternevo/pkg/logging"
	"github.com/emergentmind/patternevo/pkg/patterns"
	"github.com/spf13/cobra"
)

// evolveCmd runs an evolution cycle against a seed pattern
func evolveCmd() *cobra.Command {
	var seedArg string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Evolve a seed pattern and store the result",
		Long: `Run evolutionary search rooted at a seed pattern. The seed is given as
inline JSON or as a path to a JSON file, for example:

  patternevo evolve --seed '{"id":"p1","type":"workflow","name":"deploy","confidence":0.5,"impact":0.5}'

The evolved pattern is saved to the pattern store and printed as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			seed, err := loadSeed(seedArg)
			if err != nil {
				return err
			}

			store, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			bus := events.NewBus()
			defer bus.Close()
			bus.On(evolution.MetricsEventName, func(event events.Event) {
				m, ok := event.Payload.(evolution.RunMetrics)
				if !ok {
					return
				}
				logging.GetLogger().Info(ctx, "generation %d: best_fitness=%.4f, avg_confidence=%.4f, diversity=%.4f",
					m.GenerationNumber, m.BestFitness, m.AverageConfidence, m.Diversity)
			})

			engine := evolution.New(store, bus,
				evolution.WithConfig(cfg.Evolution),
				evolution.WithStrategy(cfg.Strategy),
			)

			result, err := engine.Evolve(ctx, seed)
			if err != nil {
				return err
			}

			if err := store.SavePattern(ctx, result.Pattern); err != nil {
				return err
			}

			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&seedArg, "seed", "", "seed pattern as inline JSON or a path to a JSON file (required)")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite pattern store (overrides config)")
	_ = cmd.MarkFlagRequired("seed")

	return cmd
}

// loadSeed accepts inline JSON or a path to a JSON file.
func loadSeed(arg string) (*patterns.Pattern, error) {
	data := []byte(arg)
	if !strings.HasPrefix(strings.TrimSpace(arg), "{") {
		fileData, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
		data = fileData
	}

	var seed patterns.Pattern
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed pattern: %w", err)
	}
	return &seed, nil
}

func openStore(override string) (*patterns.SQLiteStore, error) {
	path := cfg.Database.Path
	if override != "" {
		path = override
	}
	return patterns.NewSQLiteStore(path)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
