package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show progress and sync state",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.queries.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User:         %s\n", report.UserID)
			fmt.Fprintf(out, "Sync state:   %s (%d queued)\n", report.SyncState, report.QueueDepth)
			fmt.Fprintf(out, "Level:        %d (%s, %.0f%% to next)\n",
				report.Level, report.Rank, report.ProgressToNext*100)
			fmt.Fprintf(out, "Total XP:     %d\n", report.TotalXP)

			streak := fmt.Sprintf("%d days", report.CurrentStreak)
			if !report.StreakActive && report.CurrentStreak > 0 {
				streak += " (at risk)"
			}
			fmt.Fprintf(out, "Streak:       %s (best %d)\n", streak, report.LongestStreak)
			fmt.Fprintf(out, "Lessons:      %d\n", report.LessonsCompleted)
			fmt.Fprintf(out, "Words:        %d\n", report.WordsLearned)
			fmt.Fprintf(out, "Study time:   %d min\n", report.MinutesStudied)
			fmt.Fprintf(out, "Achievements: %d / %d\n",
				report.UnlockedAchievements, report.TotalAchievements)
			return nil
		},
	}
}

func newAchievementsCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "List achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			for _, a := range app.queries.Achievements(cmd.Context()) {
				if !a.Unlocked && !all {
					continue
				}
				mark := " "
				if a.Unlocked {
					mark = "x"
				}
				fmt.Fprintf(out, "[%s] %-24s %-10s %s\n", mark, a.Title, a.Rarity, a.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include locked achievements")
	return cmd
}
