package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"medminder/internal/logging"
	"medminder/internal/notify"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run in the foreground: dose notifications, midnight reset, periodic sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			scheduler, err := notify.NewScheduler(a.hub, notify.ConsoleNotifier{}, a.engine)
			if err != nil {
				return err
			}
			if err := scheduler.Start(); err != nil {
				return err
			}
			defer scheduler.Stop()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if a.cfg.RemoteEnabled() {
				if err := a.engine.Reconcile(ctx); err != nil {
					logging.Warn("initial reconciliation failed", map[string]interface{}{
						"error": err.Error(),
					})
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Watching for doses. Ctrl-C to stop.")
			ticker := time.NewTicker(watchInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if !a.cfg.RemoteEnabled() {
						continue
					}
					if err := a.engine.Reconcile(ctx); err != nil {
						logging.Warn("periodic reconciliation failed", map[string]interface{}{
							"error": err.Error(),
						})
					}
				}
			}
		})
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "sync-interval", 5*time.Minute, "How often to reconcile with the remote store")
	rootCmd.AddCommand(watchCmd)
}
