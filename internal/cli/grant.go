package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nutrio/nutrio/internal/app/progression"
	"github.com/nutrio/nutrio/internal/domain"
)

func init() {
	f := grantCmd.Flags()
	f.IntVar(&grantBase, "base", 0, "Base XP (defaults to the catalog amount; 0 grants nothing)")
	f.StringVar(&grantMultiplier, "multiplier", "", "Multiplier kind: premium, weekend, first_action or streak")
	f.BoolVar(&grantPremium, "premium", false, "User has an active premium subscription")
	f.IntVar(&grantStreakDays, "streak-days", 0, "Override the active streak length")
	f.BoolVar(&grantWeekend, "weekend", false, "Override the weekend flag")
	f.BoolVar(&grantFirstAction, "first-action", false, "Override the first-action-today flag")
	rootCmd.AddCommand(grantCmd)
}

var (
	grantBase        int
	grantMultiplier  string
	grantPremium     bool
	grantStreakDays  int
	grantWeekend     bool
	grantFirstAction bool
)

var grantCmd = &cobra.Command{
	Use:   "grant USER SOURCE",
	Short: "Grant XP for a reward source",
	Example: `  nutrio grant u1 meal_log
  nutrio grant u1 hit_calorie_goal --multiplier premium --premium`,
	Args: cobra.ExactArgs(2),
	RunE: runGrant,
}

func runGrant(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	req := progression.GrantRequest{
		Source:     args[1],
		Multiplier: domain.MultiplierKind(grantMultiplier),
		IsPremium:  grantPremium,
	}
	flags := cmd.Flags()
	if flags.Changed("base") {
		req.BaseAmount = &grantBase
	}
	if flags.Changed("streak-days") {
		req.StreakDays = &grantStreakDays
	}
	if flags.Changed("weekend") {
		req.IsWeekend = &grantWeekend
	}
	if flags.Changed("first-action") {
		req.IsFirstActionToday = &grantFirstAction
	}

	res, err := d.Progression.Grant(cmd.Context(), args[0], req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res)
	}
	fmt.Fprintf(out, "+%d XP from %s (x%.2f", res.GrantedAmount, res.Source, res.Multiplier)
	if res.Clamped {
		fmt.Fprintf(out, ", capped from %d", res.EffectiveAmount)
	}
	fmt.Fprintln(out, ")")
	if res.Level.LeveledUp {
		fmt.Fprintf(out, "Level up! %d → %d\n", res.Level.LevelBefore, res.Level.LevelAfter)
	}
	printDisplay(out, res.Display)
	return nil
}
