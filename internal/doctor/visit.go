package doctor

// Status is the two-state lifecycle of a visit.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusCompleted Status = "completed"
)

// Outcome tags the result of a visit. CITA and PLANEADA are planning
// sentinels; every other value is a report outcome.
type Outcome string

const (
	OutcomeAppointment Outcome = "CITA"
	OutcomePlanned     Outcome = "PLANEADA"
	OutcomeFollowUp    Outcome = "SEGUIMIENTO"
	OutcomeQuote       Outcome = "COTIZACIÓN"
	OutcomeInterested  Outcome = "INTERESADO"
	OutcomeAbsent      Outcome = "AUSENTE"
	OutcomeCancelled   Outcome = "CANCELADA"
)

// Notes written on a freshly planned visit.
const (
	NoteAppointment = "CITA PROGRAMADA"
	NotePlanned     = "VISITA PLANEADA"
)

// DefaultObjective is used when a visit is planned without an objective.
const DefaultObjective = "VISITA"

// IsSentinel reports whether o only marks a visit as not yet reported.
func (o Outcome) IsSentinel() bool {
	return o == OutcomeAppointment || o == OutcomePlanned
}

// Visit is a planned or completed contact with a doctor.
type Visit struct {
	ID        string  `json:"id" bson:"id"`
	Date      string  `json:"date" bson:"date"` // YYYY-MM-DD
	Time      string  `json:"time,omitempty" bson:"time,omitempty"`
	Note      string  `json:"note,omitempty" bson:"note,omitempty"`
	Objective string  `json:"objective,omitempty" bson:"objective,omitempty"`
	FollowUp  string  `json:"followUp,omitempty" bson:"followUp,omitempty"`
	Outcome   Outcome `json:"outcome" bson:"outcome"`
	Status    Status  `json:"status" bson:"status"`
}

// State is the decoded lifecycle of a visit: Planned or Completed.
type State interface {
	isState()
}

// Planned is a visit that has not been reported yet.
type Planned struct {
	Appointment bool
	Outcome     Outcome
}

// Completed is a reported visit.
type Completed struct {
	Outcome  Outcome
	Note     string
	FollowUp string
}

func (Planned) isState()   {}
func (Completed) isState() {}

// Excluded reports whether a planned visit is marked absent or cancelled.
// Such visits have not happened and do not count as pending plans.
func (p Planned) Excluded() bool {
	return p.Outcome == OutcomeAbsent || p.Outcome == OutcomeCancelled
}

// State decodes the stored status/outcome pair. It returns nil for a
// status it does not recognise.
func (v Visit) State() State {
	switch v.Status {
	case StatusCompleted:
		return Completed{Outcome: v.Outcome, Note: v.Note, FollowUp: v.FollowUp}
	case StatusPlanned:
		return Planned{Appointment: v.Outcome == OutcomeAppointment, Outcome: v.Outcome}
	default:
		return nil
	}
}

// Draft is the pre-filled content of a report form for a visit.
type Draft struct {
	Note     string  `json:"note"`
	Outcome  Outcome `json:"outcome"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	FollowUp string  `json:"followUp"`
}

// NewDraft pre-fills a report for v. Planning sentinels are not shown back
// to the user: the note starts blank and the outcome defaults to SEGUIMIENTO.
func NewDraft(v Visit) Draft {
	d := Draft{
		Note:     v.Note,
		Outcome:  v.Outcome,
		Date:     v.Date,
		Time:     v.Time,
		FollowUp: v.FollowUp,
	}
	if v.Note == NotePlanned || v.Note == NoteAppointment {
		d.Note = ""
	}
	if v.Outcome.IsSentinel() || v.Outcome == "" {
		d.Outcome = OutcomeFollowUp
	}
	if d.Time == "" {
		d.Time = "09:00"
	}
	return d
}
