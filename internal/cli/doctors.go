package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/medicall/internal/doctor"
)

func newDoctorsCmd() *cobra.Command {
	var executive string

	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "List doctors",
		Long:  "List the doctors of an executive's portfolio, or of the whole team with --executive ALL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doctors, err := newAPIClient().ListDoctors(resolveExecutive(executive))
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(doctors)
			}
			return printDoctorTable(cmd.OutOrStdout(), doctors)
		},
	}

	cmd.Flags().StringVarP(&executive, "executive", "e", "", "executive name (ALL for everyone)")

	cmd.AddCommand(newDoctorShowCmd(), newDoctorAddCmd(), newDoctorRemoveCmd())
	return cmd
}

func newDoctorShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a doctor and its visits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doctors, err := newAPIClient().ListDoctors("")
			if err != nil {
				return err
			}
			for i := range doctors {
				if doctors[i].ID == args[0] {
					if isJSON() {
						return printJSON(doctors[i])
					}
					return printVisitList(cmd.OutOrStdout(), &doctors[i])
				}
			}
			return fmt.Errorf("doctor %s not found", args[0])
		},
	}
}

func newDoctorAddCmd() *cobra.Command {
	var d doctor.Doctor
	var class string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a doctor",
		Long: `Add a doctor to an executive's portfolio.

Examples:
  medicall doctors add "DR. JUAN PEREZ" --executive LUIS --specialty CARDIOLOGIA --class A`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Name = strings.ToUpper(strings.TrimSpace(args[0]))
			if d.Name == "" {
				return fmt.Errorf("name is required")
			}
			if d.Executive == "" {
				d.Executive = defaultExecutive()
			}
			d.Classification = doctor.Classification(strings.ToUpper(class))

			saved, err := newAPIClient().UpsertDoctor(d)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Doctor %s added (%s).\n", saved.Name, saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&d.Executive, "executive", "e", "", "owning executive")
	cmd.Flags().StringVar(&d.Specialty, "specialty", "", "specialty")
	cmd.Flags().StringVar(&d.Hospital, "hospital", "", "hospital")
	cmd.Flags().StringVar(&d.Phone, "phone", "", "phone")
	cmd.Flags().StringVar(&d.Email, "email", "", "email")
	cmd.Flags().StringVar(&class, "class", "", "classification (A|B|C)")

	return cmd
}

func newDoctorRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a doctor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient().DeleteDoctor(args[0]); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(map[string]interface{}{"id": args[0], "removed": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Doctor %s removed.\n", args[0])
			return nil
		},
	}
}
