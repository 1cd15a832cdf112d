package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexiquest/progress-engine/internal/domain/progress"
)

func newChallengeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Daily challenges",
	}
	cmd.AddCommand(newChallengeListCommand(), newChallengeAdvanceCommand())
	return cmd
}

func newChallengeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List today's challenges",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			challenges := app.queries.Challenges(cmd.Context())
			if len(challenges) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No challenges. Sync to fetch today's set.")
				return nil
			}

			now := time.Now()
			out := cmd.OutOrStdout()
			for _, c := range challenges {
				state := fmt.Sprintf("%d/%d", c.Progress.Current, c.Progress.Target)
				switch {
				case c.IsCompleted():
					state = "done"
				case c.IsFailed(now):
					state = "expired"
				}
				fmt.Fprintf(out, "%-12s %-18s %-8s +%d XP (until %s)\n",
					c.ID, c.Type, state, c.XPReward, c.ExpiresAt.Local().Format("15:04"))
			}
			return nil
		},
	}
}

func newChallengeAdvanceCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "advance <challenge-id>",
		Short: "Advance a challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.coord.AdvanceChallenge(cmd.Context(), args[0], steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Challenge %s advanced by %d\n", args[0], steps)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "steps to advance")
	return cmd
}

func newLeaderboardCommand() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			p, err := progress.ParsePeriod(period)
			if err != nil {
				return err
			}

			view, err := app.queries.Leaderboard(cmd.Context(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if view.Stale {
				fmt.Fprintf(out, "(cached %s)\n", view.FetchedAt.Local().Format("Jan 2 15:04"))
			}
			for _, e := range view.Entries {
				fmt.Fprintf(out, "%3d. %-20s %6d XP\n", e.Rank, e.UserID, e.XP)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", "weekly", "all_time, monthly, weekly or daily")
	return cmd
}
