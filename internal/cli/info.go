package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database, catalog and health information",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	schema, err := d.DB.SchemaVersion()
	if err != nil {
		return err
	}
	users, err := d.DB.UserCount(ctx)
	if err != nil {
		return err
	}
	d.Health.RunOnce(ctx)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]interface{}{
			"schema_version": schema,
			"users":          users,
			"sources":        len(d.Catalog.Sources()),
			"achievements":   d.Catalog.AchievementCount(),
			"policy":         d.Notifications.Policy(),
			"health":         d.Health.Statuses(),
		})
	}
	p := d.Notifications.Policy()
	fmt.Fprintf(out, "Schema version: %d\n", schema)
	fmt.Fprintf(out, "Users:          %d\n", users)
	fmt.Fprintf(out, "Catalog:        %d sources, %d achievements\n", len(d.Catalog.Sources()), d.Catalog.AchievementCount())
	fmt.Fprintf(out, "Notifications:  %d/day, quiet %s-%s\n", p.MaxPerDay, p.QuietStart, p.QuietEnd)
	for _, s := range d.Health.Statuses() {
		state := "ok"
		if !s.Healthy {
			state = "FAIL: " + s.Error
		}
		fmt.Fprintf(out, "Health %-8s %s\n", s.Name+":", state)
	}
	return nil
}
