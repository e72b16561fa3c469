package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/evcraddock/medicall/internal/calendar"
	"github.com/evcraddock/medicall/internal/doctor"
	"github.com/evcraddock/medicall/internal/period"
	"github.com/evcraddock/medicall/internal/stats"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"zero", 0, "$0.00"},
		{"small", 45, "$45.00"},
		{"thousands", 1500, "$1,500.00"},
		{"millions", 1234567.891, "$1,234,567.89"},
		{"cents", 0.1 + 0.2, "$0.30"},
		{"negative", -2500.5, "-$2,500.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatMoney(tt.amount)
			if result != tt.expected {
				t.Errorf("formatMoney(%v) = %q, want %q", tt.amount, result, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world!", 8, "hello..."},
		{"multibyte", "CARDIOLOGÍA PEDIÁTRICA", 14, "CARDIOLOGÍA..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, result, tt.expected)
			}
		})
	}
}

func TestPrintDoctorTable(t *testing.T) {
	var buf bytes.Buffer
	doctors := []doctor.Doctor{{
		ID: "d1", Name: "DR. A", Executive: "LUIS", Classification: doctor.ClassA,
		Visits: []doctor.Visit{
			{ID: "v1", Status: doctor.StatusPlanned},
			{ID: "v2", Status: doctor.StatusCompleted},
			{ID: "v3", Status: doctor.StatusCompleted},
		},
	}}

	if err := printDoctorTable(&buf, doctors); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "EXECUTIVE") || !strings.Contains(out, "Total: 1 doctors") {
		t.Errorf("output = %q", out)
	}
	fields := strings.Fields(strings.Split(out, "\n")[2])
	if got := strings.Join(fields, " "); got != "d1 DR. A LUIS - A 1 2" {
		t.Errorf("row = %q", got)
	}
}

func TestPrintDoctorTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := printDoctorTable(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "No doctors found." {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	res := &stats.Result{
		Period:          period.Month(2025, 2),
		PlannedVisits:   3,
		CompletedVisits: 1,
		Performance:     25,
		TotalRevenue:    1500,
		Team:            []stats.TeamMember{{Name: "LUIS", Doctors: 2, Planned: 3, Completed: 1, Performance: 25, Revenue: 1500, Commission: 45}},
		Activity: []stats.ActivityEntry{{
			DoctorID: "d1", DoctorName: "DR. A", Executive: "LUIS",
			Visit: doctor.Visit{ID: "v1", Date: "2025-03-10", Outcome: doctor.OutcomeInterested, Note: "PIDE MUESTRAS"},
		}},
	}

	if err := printStats(&buf, res); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Marzo 2025", "Executive:   ALL", "3 planned, 1 completed", "25%", "$1,500.00", "$45.00", "Activity:", "INTERESADO", "PIDE MUESTRAS"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestPrintStatsNoActivity(t *testing.T) {
	var buf bytes.Buffer
	if err := printStats(&buf, &stats.Result{Period: period.Month(2025, 2)}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), "No activity in this period.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		cell *calendar.Cell
		want string
	}{
		{"padding", nil, ""},
		{"empty day", &calendar.Cell{Day: 4}, "4"},
		{"busy day", &calendar.Cell{Day: 10, Events: make([]calendar.Event, 2)}, "10[2]"},
		{"today", &calendar.Cell{Day: 11, Today: true}, "*11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCell(tt.cell); got != tt.want {
				t.Errorf("formatCell = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintSlots(t *testing.T) {
	var buf bytes.Buffer
	slots := []calendar.Slot{
		{Time: "09:00"},
		{Time: "09:30", Events: []calendar.Event{{DoctorName: "DR. A", Executive: "LUIS", Visit: doctor.Visit{Status: doctor.StatusPlanned, Objective: "VISITA"}}}},
	}
	if err := printSlots(&buf, slots); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "DR. A") || !strings.Contains(buf.String(), "09:00") {
		t.Errorf("output = %q", buf.String())
	}
}
