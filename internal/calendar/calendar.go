// Package calendar projects visits onto month, week and day grids.
//
// All dates are naive calendar dates. Keys are built from the calendar
// components of a time.Time in its own location, never from a UTC
// serialization, so a visit on 2025-03-10 always lands in the 10 March cell.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/evcraddock/medicall/internal/doctor"
)

// DateLayout is the wire format of every date.
const DateLayout = "2006-01-02"

// MonthCells is the fixed size of a month grid (6 weeks of 7 days).
const MonthCells = 42

// View is a calendar rendering mode.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
	ViewDay   View = "day"
)

// ErrInvalidView is returned for an unknown view name.
var ErrInvalidView = errors.New("invalid calendar view")

// ParseView parses a view name. Empty selects the month view.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewMonth, nil
	case ViewMonth, ViewWeek, ViewDay:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
	}
}

// ParseDate parses a YYYY-MM-DD string as local midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// Key returns the YYYY-MM-DD key of t's calendar date.
func Key(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysIn returns the number of days in t's month.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthDays returns the 42 grid positions for ref's month. Leading and
// trailing positions outside the month are nil.
func MonthDays(ref time.Time) []*time.Time {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	lead := int(first.Weekday())
	n := DaysIn(first)

	days := make([]*time.Time, MonthCells)
	for d := 0; d < n; d++ {
		day := first.AddDate(0, 0, d)
		days[lead+d] = &day
	}
	return days
}

// WeekDays returns the seven dates of the Sunday-started week holding ref.
func WeekDays(ref time.Time) []time.Time {
	ref = midnight(ref)
	start := ref.AddDate(0, 0, -int(ref.Weekday()))
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// Days returns the grid positions for view. Only the month view has nil
// placeholders.
func Days(ref time.Time, view View) []*time.Time {
	switch view {
	case ViewWeek:
		week := WeekDays(ref)
		days := make([]*time.Time, len(week))
		for i := range week {
			days[i] = &week[i]
		}
		return days
	case ViewDay:
		day := midnight(ref)
		return []*time.Time{&day}
	default:
		return MonthDays(ref)
	}
}

// Event is one visit placed on the calendar.
type Event struct {
	DoctorID   string       `json:"doctorId"`
	DoctorName string       `json:"doctorName"`
	Executive  string       `json:"executive"`
	Visit      doctor.Visit `json:"visit"`
}

// Events maps a YYYY-MM-DD key to the events on that date.
type Events map[string][]Event

// Index builds the events-by-date map for one executive's doctors, or for
// the whole roster when executive is empty. Visits without a date are
// skipped. Events on a date are ordered by time.
func Index(roster []doctor.Doctor, executive string) Events {
	events := make(Events)
	for _, d := range roster {
		if executive != "" && d.Executive != executive {
			continue
		}
		for _, v := range d.Visits {
			if v.Date == "" {
				continue
			}
			events[v.Date] = append(events[v.Date], Event{
				DoctorID:   d.ID,
				DoctorName: d.Name,
				Executive:  d.Executive,
				Visit:      v,
			})
		}
	}
	for _, list := range events {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Visit.Time < list[j].Visit.Time
		})
	}
	return events
}

// Cell is a rendered calendar day.
type Cell struct {
	Date   string  `json:"date"`
	Day    int     `json:"day"`
	Today  bool    `json:"today"`
	Events []Event `json:"events"`
}

// Grid renders the cells of view around ref. Month grids contain nil cells
// for the positions outside the month.
func Grid(ref time.Time, view View, events Events, now time.Time) []*Cell {
	days := Days(ref, view)
	cells := make([]*Cell, len(days))
	for i, day := range days {
		if day == nil {
			continue
		}
		key := Key(*day)
		list := events[key]
		if list == nil {
			list = []Event{}
		}
		cells[i] = &Cell{
			Date:   key,
			Day:    day.Day(),
			Today:  SameDay(*day, now),
			Events: list,
		}
	}
	return cells
}

// Slot is one half-hour row of the day view.
type Slot struct {
	Time   string  `json:"time"`
	Events []Event `json:"events"`
}

// TimeSlots returns the fixed half-hour grid 09:00 through 20:30.
func TimeSlots() []string {
	slots := make([]string, 0, 24)
	for h := 9; h <= 20; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}
	return slots
}

// DaySlots places ref's events into the fixed time slots. Events whose
// time is not on the grid do not appear in any slot.
func DaySlots(ref time.Time, events Events) []Slot {
	day := events[Key(ref)]
	times := TimeSlots()
	slots := make([]Slot, len(times))
	for i, t := range times {
		slots[i] = Slot{Time: t, Events: []Event{}}
		for _, e := range day {
			if e.Visit.Time == t {
				slots[i].Events = append(slots[i].Events, e)
			}
		}
	}
	return slots
}

// Navigate moves ref by step units of view: months, weeks or days.
// Moving by months keeps the day of month, clamped to the target month.
func Navigate(ref time.Time, view View, step int) time.Time {
	switch view {
	case ViewWeek:
		return ref.AddDate(0, 0, 7*step)
	case ViewDay:
		return ref.AddDate(0, 0, step)
	default:
		first := time.Date(ref.Year(), ref.Month()+time.Month(step), 1,
			ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), ref.Location())
		day := ref.Day()
		if n := DaysIn(first); day > n {
			day = n
		}
		return first.AddDate(0, 0, day-1)
	}
}

// Executives lists the distinct executives of a roster, sorted.
func Executives(roster []doctor.Doctor) []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, d := range roster {
		if d.Executive == "" || seen[d.Executive] {
			continue
		}
		seen[d.Executive] = true
		names = append(names, d.Executive)
	}
	sort.Strings(names)
	return names
}
