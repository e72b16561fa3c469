package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/evcraddock/medicall/internal/calendar"
	"github.com/evcraddock/medicall/internal/doctor"
	"github.com/evcraddock/medicall/internal/procedure"
	"github.com/evcraddock/medicall/internal/stats"
	"github.com/evcraddock/medicall/internal/timeoff"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table wraps a tabwriter and keeps the first write error.
type table struct {
	w   *tabwriter.Writer
	err error
}

func newTable(out io.Writer, header ...string) *table {
	t := &table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	t.row(header...)
	seps := make([]string, len(header))
	for i, h := range header {
		seps[i] = strings.Repeat("-", len([]rune(h)))
	}
	t.row(seps...)
	return t
}

func (t *table) row(cols ...string) {
	if t.err != nil {
		return
	}
	if _, err := fmt.Fprintln(t.w, strings.Join(cols, "\t")); err != nil {
		t.err = fmt.Errorf("writing table row: %w", err)
	}
}

func (t *table) flush() error {
	if t.err != nil {
		return t.err
	}
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printDoctorTable prints the roster as a table.
func printDoctorTable(out io.Writer, doctors []doctor.Doctor) error {
	if len(doctors) == 0 {
		_, err := fmt.Fprintln(out, "No doctors found.")
		return err
	}

	t := newTable(out, "ID", "NAME", "EXECUTIVE", "SPECIALTY", "CLASS", "PLANNED", "DONE")
	for _, d := range doctors {
		var planned, done int
		for _, v := range d.Visits {
			switch v.Status {
			case doctor.StatusPlanned:
				planned++
			case doctor.StatusCompleted:
				done++
			}
		}
		t.row(d.ID, truncate(d.Name, 32), dash(d.Executive), truncate(dash(d.Specialty), 20),
			dash(string(d.Classification)), fmt.Sprint(planned), fmt.Sprint(done))
	}
	if err := t.flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\nTotal: %d doctors\n", len(doctors))
	return err
}

// printVisitList prints the visits of one doctor, in stored order.
func printVisitList(out io.Writer, d *doctor.Doctor) error {
	if _, err := fmt.Fprintf(out, "%s (%s)\n", d.Name, d.ID); err != nil {
		return err
	}
	if len(d.Visits) == 0 {
		_, err := fmt.Fprintln(out, "  No visits.")
		return err
	}

	t := newTable(out, "VISIT", "DATE", "TIME", "STATUS", "OUTCOME", "NOTE")
	for _, v := range d.Visits {
		t.row(v.ID, dash(v.Date), dash(v.Time), string(v.Status), dash(string(v.Outcome)), truncate(dash(v.Note), 40))
	}
	return t.flush()
}

// printProcedureTable prints procedures as a table.
func printProcedureTable(out io.Writer, procedures []procedure.Procedure) error {
	if len(procedures) == 0 {
		_, err := fmt.Fprintln(out, "No procedures found.")
		return err
	}

	t := newTable(out, "ID", "DATE", "HOSPITAL", "DOCTOR", "PROCEDURE", "COST", "COMMISSION", "STATUS")
	for _, p := range procedures {
		t.row(p.ID, dash(p.Date), truncate(dash(p.Hospital), 24), truncate(dash(p.DoctorName), 24),
			truncate(dash(p.ProcedureType), 24), formatMoney(p.Cost), formatMoney(p.Commission), string(p.Status))
	}
	return t.flush()
}

// printTimeOffTable prints absences as a table.
func printTimeOffTable(out io.Writer, events []timeoff.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(out, "No time off recorded.")
		return err
	}

	t := newTable(out, "ID", "EXECUTIVE", "START", "END", "REASON")
	for _, e := range events {
		t.row(e.ID, e.Executive, e.StartDate, e.EndDate, truncate(dash(e.Reason), 30))
	}
	return t.flush()
}

// printStats prints the dashboard.
func printStats(out io.Writer, r *stats.Result) error {
	scope := r.Executive
	if scope == "" {
		scope = "ALL"
	}
	lines := []string{
		fmt.Sprintf("Period:      %s", r.Period.Label()),
		fmt.Sprintf("Executive:   %s", scope),
		fmt.Sprintf("Doctors:     %d (A %d, B %d, C %d, none %d)", r.TotalDoctors,
			r.Classifications.A, r.Classifications.B, r.Classifications.C, r.Classifications.None),
		fmt.Sprintf("Visits:      %d planned, %d completed, %d other", r.PlannedVisits, r.CompletedVisits, r.OtherVisits),
		fmt.Sprintf("Performance: %d%%", r.Performance),
		fmt.Sprintf("Procedures:  %d in period, %d performed", r.RelevantProcedures, r.PerformedProcedures),
		fmt.Sprintf("Revenue:     %s (commission %s)", formatMoney(r.TotalRevenue), formatMoney(r.TotalCommission)),
		"",
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(out, l); err != nil {
			return err
		}
	}

	t := newTable(out, "EXECUTIVE", "DOCTORS", "PLANNED", "DONE", "PERF", "REVENUE", "COMMISSION")
	for _, m := range r.Team {
		t.row(m.Name, fmt.Sprint(m.Doctors), fmt.Sprint(m.Planned), fmt.Sprint(m.Completed),
			fmt.Sprintf("%d%%", m.Performance), formatMoney(m.Revenue), formatMoney(m.Commission))
	}
	if err := t.flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(out, "\nActivity:"); err != nil {
		return err
	}
	if len(r.Activity) == 0 {
		_, err := fmt.Fprintln(out, "  No activity in this period.")
		return err
	}
	t = newTable(out, "DATE", "DOCTOR", "EXECUTIVE", "OUTCOME", "NOTE")
	for _, a := range r.Activity {
		t.row(a.Visit.Date, truncate(a.DoctorName, 32), a.Executive, string(a.Visit.Outcome), truncate(dash(a.Visit.Note), 40))
	}
	return t.flush()
}

// printCalendar prints a month or week grid, one row per week, with the
// number of events per day in brackets.
func printCalendar(out io.Writer, cells []*calendar.Cell) error {
	w := tabwriter.NewWriter(out, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(w, "Su\tMo\tTu\tWe\tTh\tFr\tSa\t"); err != nil {
		return fmt.Errorf("writing calendar header: %w", err)
	}
	for i := 0; i < len(cells); i += 7 {
		end := i + 7
		if end > len(cells) {
			end = len(cells)
		}
		cols := make([]string, 0, 7)
		for _, c := range cells[i:end] {
			cols = append(cols, formatCell(c))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cols, "\t")+"\t"); err != nil {
			return fmt.Errorf("writing calendar row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing calendar: %w", err)
	}
	return nil
}

func formatCell(c *calendar.Cell) string {
	if c == nil {
		return ""
	}
	s := fmt.Sprint(c.Day)
	if n := len(c.Events); n > 0 {
		s += fmt.Sprintf("[%d]", n)
	}
	if c.Today {
		s = "*" + s
	}
	return s
}

// printSlots prints the occupied time slots of a day.
func printSlots(out io.Writer, slots []calendar.Slot) error {
	t := newTable(out, "TIME", "DOCTOR", "EXECUTIVE", "STATUS", "OBJECTIVE")
	for _, s := range slots {
		if len(s.Events) == 0 {
			t.row(s.Time, "-", "", "", "")
			continue
		}
		for _, e := range s.Events {
			t.row(s.Time, truncate(e.DoctorName, 32), e.Executive, string(e.Visit.Status), dash(e.Visit.Objective))
		}
	}
	return t.flush()
}

// formatMoney formats an amount with thousands separators and two decimals.
func formatMoney(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)

	return sign + "$" + strings.Join(parts, ",") + "." + frac
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
