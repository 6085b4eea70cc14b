package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagDataDir string
	flagUser    string
)

var rootCmd = &cobra.Command{
	Use:   "medminder",
	Short: "medminder tracks medications and dose schedules from your terminal",
	Long: "medminder is a local-first medication reminder. Data lives in a local " +
		"SQLite database and is mirrored to MongoDB when one is configured; the " +
		"app stays fully usable offline.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory for the local database (overrides MEDMINDER_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "User identity for remote sync (overrides MEDMINDER_USER)")
}
