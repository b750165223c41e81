package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/emergentmind/patternevo/pkg/config"
	"github.com/emergentmind/patternevo/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.App
	version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var configPath string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "patternevo",
		Short: "Evolve behavioral patterns through population-based search",
		Long: `patternevo runs evolutionary search over a pattern's confidence and
impact traits: breed a population from a seed pattern, mutate and select
across generations, and keep the variant with the best fitness.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			level := logging.ParseSeverity(cfg.Logging.Level)
			if verbose {
				level = logging.DEBUG
			}

			outputs := []logging.Output{logging.NewConsoleOutput(true)}
			if cfg.Logging.File != "" {
				fileOut, err := logging.NewFileOutput(cfg.Logging.File)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				outputs = append(outputs, fileOut)
			}

			logging.SetLogger(logging.NewLogger(logging.Config{
				Severity: level,
				Outputs:  outputs,
			}))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		evolveCmd(),
		historyCmd(),
		versionCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// versionCmd shows version information
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("patternevo %s\n", version)
		},
	}
}
