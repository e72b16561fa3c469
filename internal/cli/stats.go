package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/medicall/internal/calendar"
	"github.com/evcraddock/medicall/internal/client"
)

// addPeriodFlags binds the period and executive flags shared by stats and
// export.
func addPeriodFlags(cmd *cobra.Command, q *client.Query) {
	cmd.Flags().StringVar(&q.Year, "year", "", "year (default: current)")
	cmd.Flags().StringVar(&q.Month, "month", "", "month 0-11 or ALL (default: current month)")
	cmd.Flags().StringVar(&q.Day, "day", "", "day 1-31 (default: whole month)")
	cmd.Flags().StringVarP(&q.Executive, "executive", "e", "", "executive name (ALL for everyone)")
}

func newStatsCmd() *cobra.Command {
	var q client.Query

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show visit and procedure performance",
		Long: `Show the performance dashboard for a period.

Months are 0-based (0 = January). Without --year the current month is used.

Examples:
  medicall stats
  medicall stats --year 2025 --month ALL --executive ALL`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Executive = resolveExecutive(q.Executive)
			res, err := newAPIClient().Stats(q)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(res)
			}
			return printStats(cmd.OutOrStdout(), res)
		},
	}

	addPeriodFlags(cmd, &q)
	return cmd
}

func newCalendarCmd() *cobra.Command {
	var date, view, executive string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the visit calendar",
		Long: `Show visits on a month, week or day calendar. Month and week views show
the number of visits per day; the day view lists the time slots.

Examples:
  medicall calendar --date 2025-03-10
  medicall calendar --view day --executive LUIS`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := calendar.ParseView(view)
			if err != nil {
				return err
			}
			exec := resolveExecutive(executive)
			c := newAPIClient()

			if v == calendar.ViewDay {
				slots, err := c.DaySlots(date, exec)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(slots)
				}
				return printSlots(cmd.OutOrStdout(), slots)
			}

			resp, err := c.Calendar(date, v, exec)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s view around %s (prev %s, next %s)\n\n", resp.View, resp.Date, resp.Prev, resp.Next)
			return printCalendar(cmd.OutOrStdout(), resp.Cells)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "reference date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&view, "view", "month", "month, week or day")
	cmd.Flags().StringVarP(&executive, "executive", "e", "", "executive name (ALL for everyone)")

	return cmd
}
