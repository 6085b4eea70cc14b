package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"medminder/internal/models"
	"medminder/internal/reconcile"
)

var medCmd = &cobra.Command{
	Use:   "med",
	Short: "Manage medications",
}

var (
	medName         string
	medDosage       float64
	medUnit         string
	medForm         string
	medDescription  string
	medInstructions string
)

var medAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a medication",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			med, err := a.engine.CreateMedication(reconcile.CreateMedicationInput{
				Name:         medName,
				Dosage:       medDosage,
				Unit:         medUnit,
				Form:         medForm,
				Description:  medDescription,
				Instructions: medInstructions,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added medication %s (%s)\n", med.Name, med.ID)
			return nil
		})
	},
}

var medListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active medications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			snap := a.hub.Current()
			if len(snap.Medications) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No medications.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tDOSAGE\tFORM")
			for _, m := range snap.Medications {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%g %s\t%s\n", m.ID, m.Name, m.Dosage, m.Unit, m.Form)
			}
			return nil
		})
	},
}

var medDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Hide a medication without deleting its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.engine.DeactivateMedication(models.ID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated medication %s\n", args[0])
			return nil
		})
	},
}

var medPurgeCmd = &cobra.Command{
	Use:   "purge <id>",
	Short: "Delete a medication permanently",
	Long:  "Delete a medication permanently. Reminders keep their copied display name and stay active.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.engine.PurgeMedication(models.ID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged medication %s\n", args[0])
			return nil
		})
	},
}

func init() {
	medAddCmd.Flags().StringVar(&medName, "name", "", "Medication name (required)")
	medAddCmd.Flags().Float64Var(&medDosage, "dosage", 0, "Dosage amount")
	medAddCmd.Flags().StringVar(&medUnit, "unit", "", "Dosage unit, e.g. mg (required)")
	medAddCmd.Flags().StringVar(&medForm, "form", "", "Form, e.g. tablet")
	medAddCmd.Flags().StringVar(&medDescription, "description", "", "Free-text description")
	medAddCmd.Flags().StringVar(&medInstructions, "instructions", "", "Intake instructions")
	medAddCmd.MarkFlagRequired("name")
	medAddCmd.MarkFlagRequired("unit")

	medCmd.AddCommand(medAddCmd, medListCmd, medDeactivateCmd, medPurgeCmd)
	rootCmd.AddCommand(medCmd)
}
