package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(ackCmd)
}

var unlockCmd = &cobra.Command{
	Use:   "unlock USER ACHIEVEMENT",
	Short: "Unlock an achievement for a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runUnlock,
}

var ackCmd = &cobra.Command{
	Use:   "ack USER",
	Short: "Acknowledge a user's recent unlock celebrations",
	Args:  cobra.ExactArgs(1),
	RunE:  runAck,
}

func runUnlock(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Progression.UnlockAchievement(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res)
	}
	if !res.WasNewUnlock {
		fmt.Fprintf(out, "%s already unlocked\n", args[1])
		printDisplay(out, res.Display)
		return nil
	}
	def, _ := d.Catalog.Achievement(args[1])
	fmt.Fprintf(out, "Unlocked %s %s (+%d XP)\n", def.Icon, def.Name, def.BonusXP)
	for _, m := range res.Milestones {
		fmt.Fprintf(out, "  Milestone %s: +%d XP\n", m.Source, m.GrantedAmount)
	}
	if res.Total.LeveledUp {
		fmt.Fprintf(out, "Level up! %d → %d\n", res.Total.LevelBefore, res.Total.LevelAfter)
	}
	printDisplay(out, res.Display)
	return nil
}

func runAck(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	n, err := d.Progression.AckRecentUnlocks(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]int{"acknowledged": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %d unlock(s)\n", n)
	return nil
}
