package doctor

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlanRequest schedules a new visit.
type PlanRequest struct {
	DoctorID    string `json:"doctorId"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Objective   string `json:"objective"`
	Appointment bool   `json:"appointment"`
}

// ReportRequest records the outcome of a visit.
type ReportRequest struct {
	DoctorID string  `json:"doctorId"`
	VisitID  string  `json:"visitId"`
	Note     string  `json:"note"`
	Outcome  Outcome `json:"outcome"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	FollowUp string  `json:"followUp"`
}

// Ledger is an in-memory roster snapshot keyed by doctor id.
// Every mutation replaces the affected doctor record as a whole and returns
// the new record; records handed out earlier are never modified.
type Ledger struct {
	doctors []Doctor
	index   map[string]int
	newID   func() string
}

// NewLedger indexes a roster snapshot. Later duplicates of an id win.
func NewLedger(roster []Doctor) *Ledger {
	l := &Ledger{
		doctors: make([]Doctor, 0, len(roster)),
		index:   make(map[string]int, len(roster)),
		newID:   uuid.NewString,
	}
	for _, d := range roster {
		l.Put(d)
	}
	return l
}

// Doctor returns the doctor with the given id.
func (l *Ledger) Doctor(id string) (Doctor, bool) {
	i, ok := l.index[id]
	if !ok {
		return Doctor{}, false
	}
	return l.doctors[i].Clone(), true
}

// Roster returns a copy of every doctor in the ledger.
func (l *Ledger) Roster() []Doctor {
	out := make([]Doctor, len(l.doctors))
	for i, d := range l.doctors {
		out[i] = d.Clone()
	}
	return out
}

// Len returns the number of doctors.
func (l *Ledger) Len() int {
	return len(l.doctors)
}

// Put inserts or replaces a doctor by id.
func (l *Ledger) Put(d Doctor) {
	if i, ok := l.index[d.ID]; ok {
		l.doctors[i] = d.Clone()
		return
	}
	l.index[d.ID] = len(l.doctors)
	l.doctors = append(l.doctors, d.Clone())
}

// Remove deletes a doctor by id. Missing ids are ignored.
func (l *Ledger) Remove(id string) {
	i, ok := l.index[id]
	if !ok {
		return
	}
	l.doctors = append(l.doctors[:i], l.doctors[i+1:]...)
	delete(l.index, id)
	for j := i; j < len(l.doctors); j++ {
		l.index[l.doctors[j].ID] = j
	}
}

// Plan appends a new planned visit to the target doctor.
func (l *Ledger) Plan(req PlanRequest) (Doctor, error) {
	if strings.TrimSpace(req.DoctorID) == "" {
		return Doctor{}, validationError("select a doctor")
	}
	if !validDate(req.Date) {
		return Doctor{}, validationError("visit date %q must be YYYY-MM-DD", req.Date)
	}
	d, ok := l.Doctor(req.DoctorID)
	if !ok {
		return Doctor{}, ErrNotFound
	}

	v := Visit{
		ID:        l.newID(),
		Date:      req.Date,
		Time:      req.Time,
		Note:      NotePlanned,
		Objective: strings.ToUpper(strings.TrimSpace(req.Objective)),
		Outcome:   OutcomePlanned,
		Status:    StatusPlanned,
	}
	if req.Appointment {
		v.Note = NoteAppointment
		v.Outcome = OutcomeAppointment
	}
	if v.Objective == "" {
		v.Objective = DefaultObjective
	}

	d.Visits = append(d.Visits, v)
	l.Put(d)
	return d.Clone(), nil
}

// Report completes a visit with its outcome. Reporting an already completed
// visit overwrites the previous report.
func (l *Ledger) Report(req ReportRequest) (Doctor, error) {
	if strings.TrimSpace(req.Note) == "" {
		return Doctor{}, validationError("report note is required")
	}
	d, ok := l.Doctor(req.DoctorID)
	if !ok {
		return Doctor{}, ErrNotFound
	}
	i := d.FindVisit(req.VisitID)
	if i < 0 {
		return Doctor{}, ErrNotFound
	}

	// Blank date, time and outcome fall back to the pre-filled report form.
	draft := NewDraft(d.Visits[i])
	if req.Date == "" {
		req.Date = draft.Date
	}
	if req.Time == "" {
		req.Time = draft.Time
	}
	if req.Outcome == "" {
		req.Outcome = draft.Outcome
	}
	if req.Outcome.IsSentinel() {
		return Doctor{}, validationError("report outcome cannot be a planning marker")
	}
	if !validDate(req.Date) {
		return Doctor{}, validationError("visit date %q must be YYYY-MM-DD", req.Date)
	}

	v := d.Visits[i]
	v.Note = strings.ToUpper(req.Note)
	v.Outcome = req.Outcome
	v.FollowUp = strings.ToUpper(req.FollowUp)
	v.Date = req.Date
	v.Time = req.Time
	v.Status = StatusCompleted
	d.Visits[i] = v

	l.Put(d)
	return d.Clone(), nil
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// DeleteVisit removes a visit from a doctor. A missing visit leaves the
// doctor unchanged.
func (l *Ledger) DeleteVisit(doctorID, visitID string) (Doctor, error) {
	d, ok := l.Doctor(doctorID)
	if !ok {
		return Doctor{}, ErrNotFound
	}
	i := d.FindVisit(visitID)
	if i < 0 {
		return d, nil
	}

	visits := make([]Visit, 0, len(d.Visits)-1)
	visits = append(visits, d.Visits[:i]...)
	visits = append(visits, d.Visits[i+1:]...)
	d.Visits = visits

	l.Put(d)
	return d.Clone(), nil
}
