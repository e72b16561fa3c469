package doctor

import (
	"errors"
	"fmt"
	"testing"
)

func testLedger(t *testing.T, roster ...Doctor) *Ledger {
	t.Helper()
	l := NewLedger(roster)
	n := 0
	l.newID = func() string {
		n++
		return fmt.Sprintf("v%d", n)
	}
	return l
}

func TestPlanRoutineVisit(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1", Executive: "LUIS"})

	d, err := l.Plan(PlanRequest{DoctorID: "d1", Date: "2025-03-10", Time: "09:00", Objective: "seguimiento"})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(d.Visits) != 1 {
		t.Fatalf("got %d visits, want 1", len(d.Visits))
	}

	v := d.Visits[0]
	if v.ID == "" {
		t.Error("expected visit id")
	}
	if v.Status != StatusPlanned {
		t.Errorf("status = %q, want planned", v.Status)
	}
	if v.Outcome != OutcomePlanned {
		t.Errorf("outcome = %q, want PLANEADA", v.Outcome)
	}
	if v.Objective != "SEGUIMIENTO" {
		t.Errorf("objective = %q, want SEGUIMIENTO", v.Objective)
	}
	if v.Note != NotePlanned {
		t.Errorf("note = %q, want %q", v.Note, NotePlanned)
	}
	if v.Date != "2025-03-10" || v.Time != "09:00" {
		t.Errorf("date/time = %s %s", v.Date, v.Time)
	}
}

func TestPlanAppointment(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1"})

	d, err := l.Plan(PlanRequest{DoctorID: "d1", Date: "2025-03-10", Time: "10:30", Appointment: true})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	v := d.Visits[0]
	if v.Outcome != OutcomeAppointment {
		t.Errorf("outcome = %q, want CITA", v.Outcome)
	}
	if v.Note != NoteAppointment {
		t.Errorf("note = %q, want %q", v.Note, NoteAppointment)
	}
	if v.Objective != DefaultObjective {
		t.Errorf("objective = %q, want %q", v.Objective, DefaultObjective)
	}
}

func TestPlanBlankObjectiveDefaults(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1"})

	d, err := l.Plan(PlanRequest{DoctorID: "d1", Date: "2025-03-10", Objective: "   "})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if d.Visits[0].Objective != DefaultObjective {
		t.Errorf("objective = %q, want %q", d.Visits[0].Objective, DefaultObjective)
	}
}

func TestPlanRequiresDoctor(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1"})

	_, err := l.Plan(PlanRequest{Date: "2025-03-10"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	d, _ := l.Doctor("d1")
	if len(d.Visits) != 0 {
		t.Error("failed plan must not mutate the roster")
	}
}

func TestPlanRequiresValidDate(t *testing.T) {
	tests := []struct {
		name string
		date string
	}{
		{"blank", ""},
		{"day first", "10/03/2025"},
		{"no padding", "2025-3-10"},
		{"impossible day", "2025-02-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := testLedger(t, Doctor{ID: "d1"})
			_, err := l.Plan(PlanRequest{DoctorID: "d1", Date: tt.date})
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			d, _ := l.Doctor("d1")
			if len(d.Visits) != 0 {
				t.Error("failed plan must not mutate the roster")
			}
		})
	}
}

func TestPlanUnknownDoctor(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1"})

	_, err := l.Plan(PlanRequest{DoctorID: "nope", Date: "2025-03-10"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlanDoesNotTouchOtherDoctors(t *testing.T) {
	l := testLedger(t,
		Doctor{ID: "d1", Visits: []Visit{{ID: "a", Date: "2025-01-01", Status: StatusCompleted}}},
		Doctor{ID: "d2", Visits: []Visit{{ID: "b", Date: "2025-01-02", Status: StatusPlanned}}},
	)

	if _, err := l.Plan(PlanRequest{DoctorID: "d1", Date: "2025-03-10"}); err != nil {
		t.Fatalf("plan: %v", err)
	}

	d2, _ := l.Doctor("d2")
	if len(d2.Visits) != 1 || d2.Visits[0].ID != "b" {
		t.Errorf("d2 visits changed: %+v", d2.Visits)
	}
	d1, _ := l.Doctor("d1")
	if len(d1.Visits) != 2 {
		t.Errorf("d1 has %d visits, want 2", len(d1.Visits))
	}
}

func TestPlanIsCopyOnWrite(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1"})

	before, _ := l.Doctor("d1")
	if _, err := l.Plan(PlanRequest{DoctorID: "d1", Date: "2025-03-10"}); err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(before.Visits) != 0 {
		t.Error("earlier snapshot was mutated")
	}
}

func TestReportCompletesVisit(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1"})
	planned, err := l.Plan(PlanRequest{DoctorID: "d1", Date: "2025-03-10", Time: "09:00"})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	visitID := planned.Visits[0].ID

	d, err := l.Report(ReportRequest{
		DoctorID: "d1",
		VisitID:  visitID,
		Note:     "no llego",
		Outcome:  OutcomeAbsent,
		Date:     "2025-03-10",
		Time:     "09:00",
		FollowUp: "llamar lunes",
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	v := d.Visits[0]
	if v.ID != visitID {
		t.Errorf("id = %q, want %q", v.ID, visitID)
	}
	if v.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", v.Status)
	}
	if v.Note != "NO LLEGO" {
		t.Errorf("note = %q, want NO LLEGO", v.Note)
	}
	if v.FollowUp != "LLAMAR LUNES" {
		t.Errorf("followUp = %q, want LLAMAR LUNES", v.FollowUp)
	}
	if v.Outcome != OutcomeAbsent {
		t.Errorf("outcome = %q, want AUSENTE", v.Outcome)
	}
	if _, ok := v.State().(Completed); !ok {
		t.Errorf("state = %T, want Completed", v.State())
	}
}

func TestReportTwiceOverwrites(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1", Visits: []Visit{{ID: "v1", Date: "2025-03-10", Status: StatusPlanned, Outcome: OutcomePlanned}}})

	if _, err := l.Report(ReportRequest{DoctorID: "d1", VisitID: "v1", Note: "first", Outcome: OutcomeInterested, Date: "2025-03-10", Time: "09:00"}); err != nil {
		t.Fatalf("first report: %v", err)
	}
	d, err := l.Report(ReportRequest{DoctorID: "d1", VisitID: "v1", Note: "second", Outcome: OutcomeQuote, Date: "2025-03-11", Time: "10:00"})
	if err != nil {
		t.Fatalf("second report: %v", err)
	}

	if len(d.Visits) != 1 {
		t.Fatalf("got %d visits, want 1", len(d.Visits))
	}
	v := d.Visits[0]
	if v.Note != "SECOND" || v.Outcome != OutcomeQuote || v.Date != "2025-03-11" || v.Time != "10:00" {
		t.Errorf("visit = %+v, want second report values", v)
	}
	if v.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", v.Status)
	}
}

func TestReportRequiresNote(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1", Visits: []Visit{{ID: "v1", Status: StatusPlanned}}})

	_, err := l.Report(ReportRequest{DoctorID: "d1", VisitID: "v1", Note: "  "})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	d, _ := l.Doctor("d1")
	if d.Visits[0].Status != StatusPlanned {
		t.Error("failed report must not mutate the visit")
	}
}

func TestReportRejectsPlanningOutcome(t *testing.T) {
	for _, outcome := range []Outcome{OutcomeAppointment, OutcomePlanned} {
		t.Run(string(outcome), func(t *testing.T) {
			l := testLedger(t, Doctor{ID: "d1"})
			planned, err := l.Plan(PlanRequest{DoctorID: "d1", Date: "2025-03-10", Appointment: true})
			if err != nil {
				t.Fatalf("plan: %v", err)
			}

			_, err = l.Report(ReportRequest{DoctorID: "d1", VisitID: planned.Visits[0].ID, Note: "ok", Outcome: outcome})
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			d, _ := l.Doctor("d1")
			if v := d.Visits[0]; v.Status != StatusPlanned || v.Outcome != OutcomeAppointment {
				t.Errorf("visit = %+v, want untouched plan", v)
			}
		})
	}
}

func TestReportRejectsMalformedDate(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1", Visits: []Visit{{ID: "v1", Date: "2025-03-10", Status: StatusPlanned}}})

	_, err := l.Report(ReportRequest{DoctorID: "d1", VisitID: "v1", Note: "ok", Date: "mañana"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestReportUnknownVisit(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1"})

	_, err := l.Report(ReportRequest{DoctorID: "d1", VisitID: "missing", Note: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReportBlankFieldsUseDraft(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1", Visits: []Visit{{ID: "v1", Date: "2025-03-10", Status: StatusPlanned, Outcome: OutcomeAppointment}}})

	d, err := l.Report(ReportRequest{DoctorID: "d1", VisitID: "v1", Note: "ok"})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	v := d.Visits[0]
	if v.Date != "2025-03-10" {
		t.Errorf("date = %q, want kept", v.Date)
	}
	if v.Time != "09:00" {
		t.Errorf("time = %q, want 09:00", v.Time)
	}
	if v.Outcome != OutcomeFollowUp {
		t.Errorf("outcome = %q, want SEGUIMIENTO", v.Outcome)
	}
}

func TestDeleteVisit(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1", Visits: []Visit{{ID: "v1"}, {ID: "v2"}, {ID: "v3"}}})

	d, err := l.DeleteVisit("d1", "v2")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(d.Visits) != 2 || d.Visits[0].ID != "v1" || d.Visits[1].ID != "v3" {
		t.Errorf("visits = %+v", d.Visits)
	}
}

func TestDeleteVisitMissingIsNoop(t *testing.T) {
	l := testLedger(t, Doctor{ID: "d1", Visits: []Visit{{ID: "v1"}}})

	d, err := l.DeleteVisit("d1", "nope")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(d.Visits) != 1 {
		t.Errorf("got %d visits, want 1", len(d.Visits))
	}
}

func TestDeleteVisitUnknownDoctor(t *testing.T) {
	l := testLedger(t)

	_, err := l.DeleteVisit("nope", "v1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLedgerPutAndRemove(t *testing.T) {
	l := testLedger(t, Doctor{ID: "a"}, Doctor{ID: "b"}, Doctor{ID: "c"})

	l.Remove("b")
	l.Remove("missing")
	if l.Len() != 2 {
		t.Fatalf("len = %d, want 2", l.Len())
	}
	if _, ok := l.Doctor("c"); !ok {
		t.Fatal("c should still be indexed after removing b")
	}

	l.Put(Doctor{ID: "a", Name: "renamed"})
	a, _ := l.Doctor("a")
	if a.Name != "renamed" {
		t.Errorf("name = %q, want renamed", a.Name)
	}
	if l.Len() != 2 {
		t.Errorf("put of existing id should replace, len = %d", l.Len())
	}

	roster := l.Roster()
	if roster[0].ID != "a" || roster[1].ID != "c" {
		t.Errorf("roster order = %s,%s", roster[0].ID, roster[1].ID)
	}
}

func TestNewLedgerGeneratesUUIDs(t *testing.T) {
	l := NewLedger([]Doctor{{ID: "d1"}})

	d, err := l.Plan(PlanRequest{DoctorID: "d1", Date: "2025-03-10"})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	d, err = l.Plan(PlanRequest{DoctorID: "d1", Date: "2025-03-11"})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if d.Visits[0].ID == d.Visits[1].ID {
		t.Error("expected distinct visit ids")
	}
	if len(d.Visits[0].ID) != 36 {
		t.Errorf("id %q does not look like a uuid", d.Visits[0].ID)
	}
}
