package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/medicall/internal/procedure"
)

func newProceduresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "procedures",
		Short: "List hospital procedures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			procedures, err := newAPIClient().ListProcedures()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(procedures)
			}
			return printProcedureTable(cmd.OutOrStdout(), procedures)
		},
	}

	cmd.AddCommand(newProcedureAddCmd(), newProcedureRemoveCmd())
	return cmd
}

func newProcedureAddCmd() *cobra.Command {
	var (
		p         procedure.Procedure
		performed bool
	)

	cmd := &cobra.Command{
		Use:   "add <date>",
		Short: "Record a procedure",
		Long: `Record a procedure. Pass --id to replace an existing one.

Examples:
  medicall procedures add 2025-03-10 --doctor 3f2a --hospital "HOSPITAL ANGELES" --type ARTROSCOPIA --cost 1500 --commission 45 --performed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Date = args[0]
			p.Status = procedure.StatusScheduled
			if performed {
				p.Status = procedure.StatusPerformed
			}

			c := newAPIClient()
			if p.DoctorID != "" && p.DoctorName == "" {
				doctors, err := c.ListDoctors("")
				if err != nil {
					return err
				}
				for _, d := range doctors {
					if d.ID == p.DoctorID {
						p.DoctorName = d.Name
						break
					}
				}
			}

			saved, err := c.UpsertProcedure(p)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Procedure %s saved (%s, %s).\n", saved.ID, saved.Date, saved.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&p.ID, "id", "", "procedure id to replace")
	cmd.Flags().StringVar(&p.Time, "time", "", "time (HH:MM)")
	cmd.Flags().StringVar(&p.Hospital, "hospital", "", "hospital")
	cmd.Flags().StringVar(&p.DoctorID, "doctor", "", "doctor id")
	cmd.Flags().StringVar(&p.DoctorName, "doctor-name", "", "doctor name (looked up from --doctor when empty)")
	cmd.Flags().StringVar(&p.ProcedureType, "type", "", "procedure type")
	cmd.Flags().StringVar(&p.PaymentType, "payment", "", "payment type")
	cmd.Flags().Float64Var(&p.Cost, "cost", 0, "cost")
	cmd.Flags().Float64Var(&p.Commission, "commission", 0, "commission")
	cmd.Flags().StringVar(&p.Technician, "technician", "", "technician")
	cmd.Flags().StringVar(&p.Notes, "notes", "", "notes")
	cmd.Flags().BoolVar(&performed, "performed", false, "the procedure was performed")

	return cmd
}

func newProcedureRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a procedure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient().DeleteProcedure(args[0]); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(map[string]interface{}{"id": args[0], "removed": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Procedure %s removed.\n", args[0])
			return nil
		},
	}
}
