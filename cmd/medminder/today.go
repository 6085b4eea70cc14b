package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"medminder/internal/models"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's dose schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			snap := a.hub.Current()
			if len(snap.Today) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing scheduled for today.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "TIME\tMEDICATION\tDOSAGE\tSTATUS\tREMINDER\tDOSE")
			for _, e := range snap.Today {
				status := "pending"
				if e.IsCompleted {
					status = "taken"
				} else if e.IsOverdue {
					status = "overdue"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\t%d\n",
					e.TimeOfDay, e.MedicationName, e.DosageLabel, status, e.ReminderID, e.DoseIndex)
			}
			return nil
		})
	},
}

var takeCmd = &cobra.Command{
	Use:   "take <reminder-id> <dose-index>",
	Short: "Toggle a dose as taken",
	Long:  "Toggle a dose as taken. Running it again on the same dose marks it pending again.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doseIndex, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid dose index %q", args[1])
		}
		return withApp(func(a *app) error {
			if err := a.engine.ToggleDose(models.ID(args[0]), doseIndex); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Toggled dose %d of reminder %s\n", doseIndex, args[0])
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show today's adherence summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			s := a.hub.Current().Stats
			fmt.Fprintf(cmd.OutOrStdout(), "Medications:      %d\n", s.TotalMedications)
			fmt.Fprintf(cmd.OutOrStdout(), "Active reminders: %d\n", s.ActiveReminders)
			fmt.Fprintf(cmd.OutOrStdout(), "Taken today:      %d\n", s.CompletedToday)
			fmt.Fprintf(cmd.OutOrStdout(), "Pending today:    %d\n", s.PendingToday)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd, takeCmd, statsCmd)
}
