package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nutrio/nutrio/internal/daemon"
)

func init() {
	notificationsCmd.Flags().IntVar(&notificationsLimit, "limit", 0, "Maximum notifications to show (default 50)")
	rootCmd.AddCommand(notificationsCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var notificationsLimit int

var notificationsCmd = &cobra.Command{
	Use:   "notifications USER",
	Short: "List a user's pending notifications",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotifications,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the Nutrio config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to $NUTRIO_HOME/config.toml",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func runNotifications(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	list, err := d.Notifications.Pending(cmd.Context(), args[0], notificationsLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, list)
	}
	sent, err := d.Notifications.TodayCount(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sent today: %d/%d\n", sent, d.Notifications.Policy().MaxPerDay)
	if len(list) == 0 {
		fmt.Fprintln(out, "No pending notifications.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tTITLE\tCREATED")
	for _, n := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", n.ID, n.Type, n.Title, n.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(daemon.NutrioHome(), "config.toml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := daemon.SaveConfig(daemon.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
