// Package cli implements the Nutrio command-line interface using Cobra.
// Every command except serve runs the engine in-process against the local
// database.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "nutrio",
	Short: "Nutrio progression engine",
	Long: `Nutrio turns nutrition-tracking actions into XP, levels and achievements.

Run 'nutrio serve' for the HTTP API, or use the other commands to inspect
and adjust progression directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at the configured level instead of warnings only")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
