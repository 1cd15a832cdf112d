package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the lexisync command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "lexisync",
		Short:         "LexiQuest progress engine",
		Long:          "lexisync records language-learning progress locally and keeps it synchronized with the LexiQuest service.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newStatusCommand(),
		newAchievementsCommand(),
		newXPCommand(),
		newLessonCommand(),
		newWordsCommand(),
		newStudyCommand(),
		newChallengeCommand(),
		newLeaderboardCommand(),
		newSyncCommand(),
		newLoginCommand(),
		newDaemonCommand(),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}
