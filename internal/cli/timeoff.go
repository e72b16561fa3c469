package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/medicall/internal/timeoff"
)

func newTimeOffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeoff",
		Short: "List executive absences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := newAPIClient().ListTimeOff()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(events)
			}
			return printTimeOffTable(cmd.OutOrStdout(), events)
		},
	}

	cmd.AddCommand(newTimeOffAddCmd(), newTimeOffRemoveCmd())
	return cmd
}

func newTimeOffAddCmd() *cobra.Command {
	var e timeoff.Event

	cmd := &cobra.Command{
		Use:   "add <start> [end]",
		Short: "Record an absence",
		Long: `Record an absence. The end date defaults to the start date.

Examples:
  medicall timeoff add 2025-03-12 --executive LUIS --reason VACACIONES
  medicall timeoff add 2025-04-01 2025-04-05 --reason INCAPACIDAD`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.StartDate = args[0]
			if len(args) == 2 {
				e.EndDate = args[1]
			}
			if e.Executive == "" {
				e.Executive = defaultExecutive()
			}
			e.Executive = strings.ToUpper(e.Executive)

			saved, err := newAPIClient().AddTimeOff(e)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Absence %s recorded for %s (%s to %s).\n", saved.ID, saved.Executive, saved.StartDate, saved.EndDate)
			return nil
		},
	}

	cmd.Flags().StringVarP(&e.Executive, "executive", "e", "", "executive")
	cmd.Flags().StringVar(&e.Duration, "duration", "", "duration label, e.g. DIA COMPLETO")
	cmd.Flags().StringVar(&e.Reason, "reason", "", "reason")
	cmd.Flags().StringVar(&e.Notes, "notes", "", "notes")

	return cmd
}

func newTimeOffRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an absence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient().DeleteTimeOff(args[0]); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(map[string]interface{}{"id": args[0], "removed": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Absence %s removed.\n", args[0])
			return nil
		},
	}
}
