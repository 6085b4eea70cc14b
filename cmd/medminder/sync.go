package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push local data to the remote store and pull its copy back",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if !a.cfg.RemoteEnabled() {
				fmt.Fprintln(cmd.OutOrStdout(), "No remote store configured; set MONGODB_URI to enable sync.")
				return nil
			}
			if err := a.engine.ForceSync(context.Background()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sync complete.")
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear today's taken marks and regenerate the schedule",
	Long:  "Clear today's taken marks and regenerate the schedule. Normally runs automatically at midnight.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.engine.DailyReset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Daily reset complete.")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(syncCmd, resetCmd)
}
