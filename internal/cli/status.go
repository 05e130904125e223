package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rehydrateCmd)
	rootCmd.AddCommand(activityCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status USER",
	Short: "Show a user's level, caps, streak and achievements",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var rehydrateCmd = &cobra.Command{
	Use:   "rehydrate USER TOTAL_XP",
	Short: "Rebuild a user's level from a persisted lifetime XP total",
	Args:  cobra.ExactArgs(2),
	RunE:  runRehydrate,
}

var activityCmd = &cobra.Command{
	Use:   "activity USER",
	Short: "Record today's activity toward the user's streak",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivity,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	st, err := d.Progression.Status(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, st)
	}
	fmt.Fprintf(out, "User: %s\n", st.UserID)
	printDisplay(out, st.Display)

	buckets := make([]string, 0, len(st.Caps))
	for b := range st.Caps {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)
	fmt.Fprintln(out, "Daily caps:")
	for _, b := range buckets {
		fmt.Fprintf(out, "  %-16s %d/%d\n", b, st.TodayUsage[b], st.Caps[b])
	}

	if st.Streak != nil {
		fmt.Fprintf(out, "Streak: %d day(s), longest %d\n", st.Streak.CurrentDays, st.Streak.LongestDays)
	}

	fmt.Fprintf(out, "Achievements: %d/%d\n", len(st.Unlocked), d.Catalog.AchievementCount())
	for _, a := range st.Unlocked {
		fmt.Fprintf(out, "  %s %-24s %s\n", a.Icon, a.Name, a.UnlockedAt.Format("2006-01-02"))
	}
	if n := len(st.RecentUnlocks); n > 0 {
		fmt.Fprintf(out, "%d unacknowledged unlock(s)\n", n)
	}
	return nil
}

func runRehydrate(cmd *cobra.Command, args []string) error {
	total, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("TOTAL_XP must be an integer: %w", err)
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	disp, err := d.Progression.Rehydrate(cmd.Context(), args[0], total)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), disp)
	}
	printDisplay(cmd.OutOrStdout(), disp)
	return nil
}

func runActivity(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Progression.RecordActivity(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res)
	}
	switch {
	case !res.Update.FirstToday:
		fmt.Fprintln(out, "Already active today")
	case res.Update.FreezeSpent:
		fmt.Fprintln(out, "Streak freeze used")
	case res.Update.Broken:
		fmt.Fprintln(out, "Streak restarted")
	}
	fmt.Fprintf(out, "Streak: %d day(s)\n", res.Streak.CurrentDays)
	for _, g := range res.Grants {
		fmt.Fprintf(out, "  +%d XP from %s\n", g.GrantedAmount, g.Source)
	}
	return nil
}
