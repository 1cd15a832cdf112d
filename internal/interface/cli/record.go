package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lexiquest/progress-engine/internal/domain/mutation"
)

func newXPCommand() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "xp <amount>",
		Short: "Credit XP earned outside a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("amount %q is not a number", args[0])
			}

			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.coord.AddXP(cmd.Context(), amount, language); err != nil {
				return err
			}
			snap := app.coord.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "+%d XP (total %d, level %d)\n",
				amount, snap.TotalXP, snap.Level)
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "language code the XP belongs to")
	return cmd
}

func newLessonCommand() *cobra.Command {
	var payload mutation.CompleteLessonPayload

	cmd := &cobra.Command{
		Use:   "lesson <lesson-id>",
		Short: "Record a completed lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload.LessonID = args[0]

			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.coord.CompleteLesson(cmd.Context(), payload); err != nil {
				return err
			}
			snap := app.coord.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Lesson %s recorded (+%d XP, streak %d)\n",
				payload.LessonID, payload.XP, snap.CurrentStreak)
			return nil
		},
	}
	cmd.Flags().IntVar(&payload.XP, "xp", 10, "XP the lesson earned")
	cmd.Flags().StringVarP(&payload.LanguageCode, "language", "l", "", "language code")
	cmd.Flags().IntVar(&payload.Minutes, "minutes", 0, "minutes spent")
	cmd.Flags().IntVar(&payload.WordsLearned, "words", 0, "new words learned")
	cmd.Flags().BoolVar(&payload.Perfect, "perfect", false, "finished with a perfect quiz")
	return cmd
}

func newWordsCommand() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "words <count>",
		Short: "Record vocabulary learned outside a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("count %q is not a number", args[0])
			}

			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.coord.LearnWords(cmd.Context(), count, language); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d words recorded (total %d)\n",
				count, app.coord.Snapshot().WordsLearned)
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "language code")
	return cmd
}

func newStudyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "study <minutes>",
		Short: "Record study time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("minutes %q is not a number", args[0])
			}

			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.coord.RecordStudyTime(cmd.Context(), minutes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d minutes recorded (total %d)\n",
				minutes, app.coord.Snapshot().MinutesStudied)
			return nil
		},
	}
}
