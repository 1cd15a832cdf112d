package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation pass now",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			before, err := app.coord.QueueDepth(cmd.Context())
			if err != nil {
				return err
			}

			if err := app.coord.TriggerReconcile(cmd.Context()); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Synced. %d mutation(s) delivered, state %s.\n",
				before, app.coord.State())
			return nil
		},
	}
}

func newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <token>",
		Short: "Store the session token issued by the LexiQuest app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.tokens.SetToken(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token stored.")
			return nil
		},
	}
}

func newDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the engine in the background, syncing continuously",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			// The daemon assumes the network is reachable; the auth signal
			// comes from the token manager and flips the monitor online,
			// which edge-triggers the first reconciliation.
			app.monitor.SetReachable(true)
			app.monitor.SetAuthenticated(app.tokens.Valid(ctx))

			if err := app.sched.Start(ctx); err != nil {
				return err
			}
			defer app.sched.Stop()

			app.log.Info("daemon running")

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop

			app.log.Info("daemon stopping")
			return nil
		},
	}
}
