package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// historyCmd prints a pattern's stored variants
func historyCmd() *cobra.Command {
	var dbPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history <pattern-id>",
		Short: "Show a pattern's stored history",
		Long:  `Print every stored variant of a pattern, oldest first.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			history, err := store.GetPatternHistory(ctx, args[0])
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no history for pattern %q\n", args[0])
				return nil
			}

			if asJSON {
				return printJSON(cmd, history)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tTYPE\tCONFIDENCE\tIMPACT\tTAGS")
			for i, p := range history {
				fmt.Fprintf(w, "%d\t%s\t%s\t%.4f\t%.4f\t%d\n",
					i+1, p.Name, p.Type, p.Confidence, p.Impact, len(p.Tags))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite pattern store (overrides config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print history as JSON")

	return cmd
}
