package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/medicall/internal/calendar"
	"github.com/evcraddock/medicall/internal/doctor"
)

func newPlanCmd() *cobra.Command {
	var req doctor.PlanRequest

	cmd := &cobra.Command{
		Use:   "plan <doctor-id> <date> [time]",
		Short: "Plan a visit to a doctor",
		Long: `Plan a visit to a doctor.

Date format: YYYY-MM-DD. Time format: HH:MM.

Examples:
  medicall plan 3f2a 2025-03-10 09:30 --objective "presentar producto"
  medicall plan 3f2a 2025-03-11 --appointment`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := calendar.ParseDate(args[1]); err != nil {
				return fmt.Errorf("invalid date %q (YYYY-MM-DD)", args[1])
			}
			req.DoctorID = args[0]
			req.Date = args[1]
			if len(args) == 3 {
				req.Time = args[2]
			}

			d, err := newAPIClient().PlanVisit(req)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(d)
			}
			v := d.Visits[len(d.Visits)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "Visit %s planned for %s on %s %s (%s).\n", v.ID, d.Name, v.Date, v.Time, v.Outcome)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Objective, "objective", "o", "", "visit objective (default VISITA)")
	cmd.Flags().BoolVarP(&req.Appointment, "appointment", "a", false, "the visit is a confirmed appointment (CITA)")

	return cmd
}

func newReportCmd() *cobra.Command {
	var req doctor.ReportRequest
	var outcome string

	cmd := &cobra.Command{
		Use:   "report <doctor-id> <visit-id>",
		Short: "Report the outcome of a visit",
		Long: `Report the outcome of a visit. Date, time and outcome default to the
planned values; the outcome of a visit that was only planned defaults to
SEGUIMIENTO.

Outcomes: SEGUIMIENTO, COTIZACIÓN, INTERESADO, AUSENTE, CANCELADA

Examples:
  medicall report 3f2a 9c1e --note "presentado, pide muestras"
  medicall report 3f2a 9c1e -n "no estaba" --outcome AUSENTE`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(req.Note) == "" {
				return fmt.Errorf("--note is required")
			}
			req.DoctorID = args[0]
			req.VisitID = args[1]
			req.Outcome = doctor.Outcome(strings.ToUpper(outcome))

			d, err := newAPIClient().ReportVisit(req)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(d)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Visit %s reported for %s.\n", req.VisitID, d.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Note, "note", "n", "", "report note (required)")
	cmd.Flags().StringVar(&outcome, "outcome", "", "visit outcome")
	cmd.Flags().StringVar(&req.Date, "date", "", "actual visit date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Time, "time", "", "actual visit time (HH:MM)")
	cmd.Flags().StringVar(&req.FollowUp, "follow-up", "", "follow-up action")

	return cmd
}

func newUnplanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unplan <doctor-id> <visit-id>",
		Short: "Delete a visit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newAPIClient().DeleteVisit(args[0], args[1])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(map[string]interface{}{"doctorId": args[0], "visitId": args[1], "removed": true})
			}
			if d == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Doctor %s no longer exists.\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Visit %s removed from %s.\n", args[1], d.Name)
			return nil
		},
	}
}
