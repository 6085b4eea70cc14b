package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"medminder/internal/config"
	"medminder/internal/db"
	"medminder/internal/export"
	"medminder/internal/logging"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and restore local data",
}

var backupOut string

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a JSON backup of medications and reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(repo *db.Repository, cfg config.Config) error {
			path := backupOut
			if path == "" {
				path = fmt.Sprintf("medminder_%s.json", time.Now().Format("20060102_150405"))
			}
			res, err := export.NewService(repo, cfg.UserID).Export(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d medications, %d reminders)\n",
				res.FilePath, res.Medications, res.Reminders)
			return nil
		})
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore a backup into the local store",
	Long:  "Restore a backup into the local store. Entities are matched by identity; existing copies are overwritten.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			res, err := export.NewService(a.local, a.cfg.UserID).Import(args[0])
			if err != nil {
				return err
			}
			if err := a.engine.Refresh(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d medications, %d reminders from %s\n",
				res.Medications, res.Reminders, res.FilePath)
			return nil
		})
	},
}

// withStore opens just the local store, for commands that do not need the
// engine or remote.
func withStore(run func(*db.Repository, config.Config) error) error {
	cfg := config.Load()
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagUser != "" {
		cfg.UserID = flagUser
	}
	logging.Init(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer database.Close()
	return run(db.NewRepository(database.DB), cfg)
}

func init() {
	backupCreateCmd.Flags().StringVar(&backupOut, "out", "", "Output file path")
	backupCmd.AddCommand(backupCreateCmd, backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}
