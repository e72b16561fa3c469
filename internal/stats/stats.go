// Package stats rolls visits and procedures up into dashboard metrics.
//
// Compute is a pure function of its input: it never mutates the roster or
// the procedure list and returns the same result for the same input.
package stats

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/evcraddock/medicall/internal/doctor"
	"github.com/evcraddock/medicall/internal/executive"
	"github.com/evcraddock/medicall/internal/period"
	"github.com/evcraddock/medicall/internal/procedure"
)

// RecentLimit caps the recent procedures list.
const RecentLimit = 10

// ActivityLimit caps the activity log.
const ActivityLimit = 50

// Input is everything a dashboard computation needs.
type Input struct {
	Roster     []doctor.Doctor
	Procedures []procedure.Procedure
	Period     period.Selection
	// Executive restricts the global counters to one executive's doctors.
	// Empty means the whole roster.
	Executive string
	// Executives lists the team breakdown rows. When empty, the distinct
	// executives of the roster are used.
	Executives executive.Directory
}

// Classifications counts doctors by A/B/C segment.
type Classifications struct {
	A    int `json:"A"`
	B    int `json:"B"`
	C    int `json:"C"`
	None int `json:"none"`
}

// TeamMember is one row of the per-executive breakdown.
type TeamMember struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Doctors     int     `json:"doctors"`
	Planned     int     `json:"planned"`
	Completed   int     `json:"completed"`
	Revenue     float64 `json:"revenue"`
	Commission  float64 `json:"commission"`
	Performance int     `json:"performance"`
}

// ActivityEntry is a completed visit in the activity log.
type ActivityEntry struct {
	DoctorID   string       `json:"doctorId"`
	DoctorName string       `json:"doctorName"`
	Executive  string       `json:"executive"`
	Visit      doctor.Visit `json:"visit"`
}

// Result is the computed dashboard.
type Result struct {
	Period              period.Selection      `json:"period"`
	Executive           string                `json:"executive,omitempty"`
	TotalDoctors        int                   `json:"totalDoctors"`
	PlannedVisits       int                   `json:"plannedVisits"`
	CompletedVisits     int                   `json:"completedVisits"`
	OtherVisits         int                   `json:"otherVisits"`
	Performance         int                   `json:"performance"`
	Classifications     Classifications       `json:"classifications"`
	Team                []TeamMember          `json:"team"`
	RelevantProcedures  int                   `json:"relevantProcedures"`
	PerformedProcedures int                   `json:"performedProcedures"`
	TotalRevenue        float64               `json:"totalRevenue"`
	TotalCommission     float64               `json:"totalCommission"`
	RecentProcedures    []procedure.Procedure `json:"recentProcedures"`
	Activity            []ActivityEntry       `json:"activity"`
}

// Compute builds the dashboard for in.
func Compute(in Input) Result {
	scope := in.Roster
	if in.Executive != "" {
		scope = make([]doctor.Doctor, 0)
		for _, d := range in.Roster {
			if d.Executive == in.Executive {
				scope = append(scope, d)
			}
		}
	}

	res := Result{
		Period:       in.Period,
		Executive:    in.Executive,
		TotalDoctors: len(scope),
		Activity:     make([]ActivityEntry, 0),
	}

	for _, d := range scope {
		for _, v := range d.Visits {
			if !in.Period.Contains(v.Date) {
				continue
			}
			switch s := v.State().(type) {
			case doctor.Completed:
				res.CompletedVisits++
				res.Activity = append(res.Activity, ActivityEntry{
					DoctorID:   d.ID,
					DoctorName: d.Name,
					Executive:  d.Executive,
					Visit:      v,
				})
			case doctor.Planned:
				switch {
				case s.Appointment:
					res.PlannedVisits++
				case s.Excluded():
					res.OtherVisits++
				default:
					res.PlannedVisits++
				}
			}
		}

		switch d.Classification {
		case doctor.ClassA:
			res.Classifications.A++
		case doctor.ClassB:
			res.Classifications.B++
		case doctor.ClassC:
			res.Classifications.C++
		default:
			res.Classifications.None++
		}
	}

	sort.SliceStable(res.Activity, func(i, j int) bool {
		return res.Activity[i].Visit.Date > res.Activity[j].Visit.Date
	})
	if len(res.Activity) > ActivityLimit {
		res.Activity = res.Activity[:ActivityLimit]
	}

	res.Performance = percent(res.CompletedVisits, res.PlannedVisits+res.CompletedVisits+res.OtherVisits)

	inScope := make(map[string]bool, len(scope))
	for _, d := range scope {
		inScope[d.ID] = true
	}

	relevant := make([]procedure.Procedure, 0)
	revenue, commission := decimal.Zero, decimal.Zero
	for _, p := range in.Procedures {
		if !in.Period.Contains(p.Date) {
			continue
		}
		if in.Executive != "" && !inScope[p.DoctorID] {
			continue
		}
		relevant = append(relevant, p)
		if p.Performed() {
			res.PerformedProcedures++
			revenue = revenue.Add(decimal.NewFromFloat(p.Cost))
			commission = commission.Add(decimal.NewFromFloat(p.Commission))
		}
	}
	res.RelevantProcedures = len(relevant)
	res.TotalRevenue = revenue.InexactFloat64()
	res.TotalCommission = commission.InexactFloat64()

	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].Date > relevant[j].Date
	})
	if len(relevant) > RecentLimit {
		relevant = relevant[:RecentLimit]
	}
	res.RecentProcedures = relevant

	res.Team = team(in)

	return res
}

// team computes the per-executive breakdown over the whole roster.
//
// Its planned bucket leaves out appointments (CITA) and planned no-shows
// (AUSENTE), unlike the global counter which counts appointments as planned
// and planned AUSENTE/CANCELADA as other. Planned CANCELADA still counts as
// planned here.
func team(in Input) []TeamMember {
	dir := in.Executives
	if len(dir) == 0 {
		names := make([]string, 0, len(in.Roster))
		for _, d := range in.Roster {
			names = append(names, d.Executive)
		}
		dir = executive.FromNames(names)
	}

	owner := make(map[string]string, len(in.Roster))
	for _, d := range in.Roster {
		owner[d.ID] = d.Executive
	}

	rows := make([]TeamMember, 0, len(dir))
	for _, e := range dir {
		m := TeamMember{Name: e.Name, Color: e.Color}

		for _, d := range in.Roster {
			if d.Executive != e.Name {
				continue
			}
			m.Doctors++
			for _, v := range d.Visits {
				if !in.Period.Contains(v.Date) {
					continue
				}
				switch s := v.State().(type) {
				case doctor.Completed:
					m.Completed++
				case doctor.Planned:
					if !s.Appointment && s.Outcome != doctor.OutcomeAbsent {
						m.Planned++
					}
				}
			}
		}

		revenue, commission := decimal.Zero, decimal.Zero
		for _, p := range in.Procedures {
			if !p.Performed() || !in.Period.Contains(p.Date) {
				continue
			}
			if owner[p.DoctorID] != e.Name {
				continue
			}
			revenue = revenue.Add(decimal.NewFromFloat(p.Cost))
			commission = commission.Add(decimal.NewFromFloat(p.Commission))
		}
		m.Revenue = revenue.InexactFloat64()
		m.Commission = commission.InexactFloat64()
		m.Performance = percent(m.Completed, m.Planned+m.Completed)

		rows = append(rows, m)
	}
	return rows
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
