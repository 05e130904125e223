package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nutrio/nutrio/internal/app/catalog"
	"github.com/nutrio/nutrio/internal/app/progression"
	"github.com/nutrio/nutrio/internal/daemon"
)

func init() {
	catalogCmd.Flags().StringVar(&catalogFile, "file", "", "Catalog overlay to load instead of the configured one")
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(catalogCmd)
}

var catalogFile string

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Print the level curve with titles and tiers",
	Args:  cobra.NoArgs,
	RunE:  runLevels,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Validate and print the reward catalog",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func runLevels(cmd *cobra.Command, args []string) error {
	levels := progression.Levels()
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), levels)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEVEL\tTITLE\tTIER\tXP TO NEXT\tTOTAL XP")
	for _, l := range levels {
		fmt.Fprintf(w, "%d\t%s %s\t%s\t%d\t%d\n",
			l.Level, l.Emoji, l.Title, l.Tier,
			progression.XPRequiredFor(l.Level),
			progression.CumulativeXPFor(l.Level),
		)
	}
	return w.Flush()
}

func runCatalog(cmd *cobra.Command, args []string) error {
	path := catalogFile
	if path == "" {
		cfg, err := daemon.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = cfg.Catalog.Path
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]interface{}{
			"sources":      cat.Sources(),
			"caps":         cat.Caps(),
			"achievements": cat.Achievements(),
		})
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tBASE XP\tDAILY CAP")
	for _, s := range cat.Sources() {
		capText := "-"
		if limit, ok := cat.Cap(s.CapBucket); ok && s.Capped() {
			capText = fmt.Sprintf("%s (%d)", s.CapBucket, limit)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", s.ID, s.BaseAmount, capText)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "ACHIEVEMENT\tNAME\tDIFFICULTY\tBONUS XP")
	for _, a := range cat.Achievements() {
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%d\n", a.ID, a.Icon, a.Name, a.Difficulty, a.BonusXP)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "catalog %s is valid\n", path)
	}
	return nil
}
