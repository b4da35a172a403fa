package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand returns the togglesolve command tree with fresh flag state.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "togglesolve",
		Short: "Minimum button presses for factory machines",
		Long: `Reads machine records, one per line, and reports the fewest button
presses that reach every machine's light pattern (toggle semantics) and
counter targets (increment semantics).

Examples:
  togglesolve solve input.txt
  togglesolve solve --objective counters --backend search input.txt
  togglesolve solve --config togglesolve.yaml --metrics-file solve.prom input.txt`,
		Version:       "0.3.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().String("log-format", "", "log format: text or json (overrides config)")

	root.AddCommand(newSolveCommand())

	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
