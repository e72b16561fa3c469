// Package period provides the (year, month, day) selection used to filter
// visits and procedures by their calendar date.
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// AllMonths selects every month of the year.
	AllMonths = -1
	// AnyDay selects every day of the month.
	AnyDay = 0
)

// ErrInvalidSelection is returned when a selection cannot be parsed.
var ErrInvalidSelection = errors.New("invalid period selection")

// monthNames are used for period labels. Index is the 0-based month.
var monthNames = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Selection is a filter over calendar dates.
// Month is 0-based (0 = January) or AllMonths; Day is 1-31 or AnyDay.
type Selection struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Year selects a whole year.
func Year(year int) Selection {
	return Selection{Year: year, Month: AllMonths, Day: AnyDay}
}

// Month selects a whole month. month is 0-based.
func Month(year, month int) Selection {
	return Selection{Year: year, Month: month, Day: AnyDay}
}

// Current returns the selection for the current month of now.
func Current(now time.Time) Selection {
	return Month(now.Year(), int(now.Month())-1)
}

// Contains reports whether date (YYYY-MM-DD) falls inside the selection.
// Empty or malformed dates never match.
func (s Selection) Contains(date string) bool {
	y, m, d, ok := split(date)
	if !ok {
		return false
	}
	if y != s.Year {
		return false
	}
	if s.Month != AllMonths && m-1 != s.Month {
		return false
	}
	if s.Day != AnyDay && d != s.Day {
		return false
	}
	return true
}

// Label returns a human-readable description of the selection.
func (s Selection) Label() string {
	if s.Month == AllMonths || s.Month < 0 || s.Month > 11 {
		return fmt.Sprintf("Año %d", s.Year)
	}
	if s.Day != AnyDay {
		return fmt.Sprintf("%d de %s %d", s.Day, monthNames[s.Month], s.Year)
	}
	return fmt.Sprintf("%s %d", monthNames[s.Month], s.Year)
}

// MonthParam returns the month as it appears in query strings and file names:
// "ALL" or the 0-based month number.
func (s Selection) MonthParam() string {
	if s.Month == AllMonths {
		return "ALL"
	}
	return strconv.Itoa(s.Month)
}

// Parse builds a selection from string input such as query parameters.
// month accepts "", "ALL" or 0-11; day accepts "" or 1-31.
func Parse(year, month, day string) (Selection, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return Selection{}, fmt.Errorf("%w: year %q", ErrInvalidSelection, year)
	}

	s := Selection{Year: y, Month: AllMonths, Day: AnyDay}

	month = strings.TrimSpace(month)
	if month != "" && !strings.EqualFold(month, "ALL") {
		m, err := strconv.Atoi(month)
		if err != nil || m < 0 || m > 11 {
			return Selection{}, fmt.Errorf("%w: month must be ALL or 0-11, got %q", ErrInvalidSelection, month)
		}
		s.Month = m
	}

	day = strings.TrimSpace(day)
	if day != "" {
		d, err := strconv.Atoi(day)
		if err != nil || d < 1 || d > 31 {
			return Selection{}, fmt.Errorf("%w: day must be 1-31, got %q", ErrInvalidSelection, day)
		}
		s.Day = d
	}

	return s, nil
}

// split parses YYYY-MM-DD into integer components.
func split(date string) (y, m, d int, ok bool) {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var err error
	if y, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, false
	}
	if m, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, false
	}
	if d, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, false
	}
	return y, m, d, true
}
