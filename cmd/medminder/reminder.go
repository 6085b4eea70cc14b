package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"medminder/internal/models"
	"medminder/internal/reconcile"
)

var reminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Manage dose reminders",
}

var (
	remMedicationID string
	remName         string
	remDosage       float64
	remUnit         string
	remForm         string
	remMode         string
	remFrequency    int
	remFirstDose    string
	remWeekdays     string
)

var reminderAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a reminder",
	Long: "Add a dose reminder. With --mode per_day, --frequency is doses per day " +
		"spread from --time at equal hour gaps. With --mode every_hours, --frequency " +
		"is the hour gap between doses.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			rem, err := a.engine.CreateReminder(reconcile.CreateReminderInput{
				MedicationID:   models.ID(remMedicationID),
				MedicationName: remName,
				Dosage:         remDosage,
				Unit:           remUnit,
				Form:           remForm,
				FrequencyMode:  models.FrequencyMode(remMode),
				Frequency:      remFrequency,
				FirstDoseTime:  remFirstDose,
				Weekdays:       remWeekdays,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added reminder for %s (%s)\n", rem.MedicationName, rem.ID)
			return nil
		})
	},
}

var reminderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			snap := a.hub.Current()
			if len(snap.Reminders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reminders.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tMEDICATION\tDOSAGE\tSCHEDULE\tDAYS")
			for _, r := range snap.Reminders {
				schedule := fmt.Sprintf("%dx/day from %s", r.Frequency, r.FirstDoseTime)
				if r.FrequencyMode == models.FrequencyEveryHours {
					schedule = fmt.Sprintf("every %dh from %s", r.Frequency, r.FirstDoseTime)
				}
				days := r.Weekdays
				if days == "" {
					days = "daily"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.MedicationName, r.DosageLabel(), schedule, days)
			}
			return nil
		})
	},
}

var reminderDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a reminder and its schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.engine.DeleteReminder(models.ID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted reminder %s\n", args[0])
			return nil
		})
	},
}

func init() {
	reminderAddCmd.Flags().StringVar(&remMedicationID, "medication-id", "", "Medication to link; its name is copied onto the reminder")
	reminderAddCmd.Flags().StringVar(&remName, "name", "", "Medication display name (required unless --medication-id is given)")
	reminderAddCmd.Flags().Float64Var(&remDosage, "dosage", 0, "Dosage amount")
	reminderAddCmd.Flags().StringVar(&remUnit, "unit", "", "Dosage unit, e.g. mg (required)")
	reminderAddCmd.Flags().StringVar(&remForm, "form", "", "Form, e.g. tablet")
	reminderAddCmd.Flags().StringVar(&remMode, "mode", string(models.FrequencyPerDay), "per_day or every_hours")
	reminderAddCmd.Flags().IntVar(&remFrequency, "frequency", 1, "Doses per day, or hour gap with --mode every_hours")
	reminderAddCmd.Flags().StringVar(&remFirstDose, "time", "08:00", `First dose time, "15:04" or "8:00 AM"`)
	reminderAddCmd.Flags().StringVar(&remWeekdays, "weekdays", "", "Comma-separated days, e.g. mon,wed,fri; empty means every day")
	reminderAddCmd.MarkFlagRequired("unit")

	reminderCmd.AddCommand(reminderAddCmd, reminderListCmd, reminderDeleteCmd)
	rootCmd.AddCommand(reminderCmd)
}
