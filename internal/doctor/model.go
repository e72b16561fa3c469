// Package doctor provides the doctor portfolio model, its visit ledger and
// data access.
package doctor

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation is returned when a required selection or field is missing.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a doctor or visit id is not in the roster.
	ErrNotFound = errors.New("not found")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Classification is the static A/B/C segmentation of a doctor.
type Classification string

const (
	ClassA Classification = "A"
	ClassB Classification = "B"
	ClassC Classification = "C"
)

// DefaultCategory is assigned to doctors stored without a category.
const DefaultCategory = "MEDICO"

// ScheduleSlot is a recurring office-hours entry for a doctor.
type ScheduleSlot struct {
	Day    string `json:"day" bson:"day"`
	Time   string `json:"time" bson:"time"`
	Active bool   `json:"active" bson:"active"`
}

// Doctor is one contact in an executive's portfolio. Visits are a
// sub-collection and are always persisted with the whole record.
type Doctor struct {
	ID                 string         `json:"id" bson:"id"`
	Category           string         `json:"category,omitempty" bson:"category,omitempty"`
	Executive          string         `json:"executive" bson:"executive"`
	Name               string         `json:"name" bson:"name"`
	Specialty          string         `json:"specialty,omitempty" bson:"specialty,omitempty"`
	SubSpecialty       string         `json:"subSpecialty,omitempty" bson:"subSpecialty,omitempty"`
	Address            string         `json:"address,omitempty" bson:"address,omitempty"`
	Hospital           string         `json:"hospital,omitempty" bson:"hospital,omitempty"`
	Area               string         `json:"area,omitempty" bson:"area,omitempty"`
	Phone              string         `json:"phone,omitempty" bson:"phone,omitempty"`
	Email              string         `json:"email,omitempty" bson:"email,omitempty"`
	Floor              string         `json:"floor,omitempty" bson:"floor,omitempty"`
	OfficeNumber       string         `json:"officeNumber,omitempty" bson:"officeNumber,omitempty"`
	BirthDate          string         `json:"birthDate,omitempty" bson:"birthDate,omitempty"`
	Cedula             string         `json:"cedula,omitempty" bson:"cedula,omitempty"`
	Profile            string         `json:"profile,omitempty" bson:"profile,omitempty"`
	Classification     Classification `json:"classification,omitempty" bson:"classification,omitempty"`
	SocialStyle        string         `json:"socialStyle,omitempty" bson:"socialStyle,omitempty"`
	AttitudinalSegment string         `json:"attitudinalSegment,omitempty" bson:"attitudinalSegment,omitempty"`
	ImportantNotes     string         `json:"importantNotes,omitempty" bson:"importantNotes,omitempty"`
	IsInsuranceDoctor  bool           `json:"isInsuranceDoctor" bson:"isInsuranceDoctor"`
	Visits             []Visit        `json:"visits" bson:"visits"`
	Schedule           []ScheduleSlot `json:"schedule,omitempty" bson:"schedule,omitempty"`
	CreatedAt          time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a copy of d that shares no slices with it.
func (d Doctor) Clone() Doctor {
	c := d
	if d.Visits != nil {
		c.Visits = make([]Visit, len(d.Visits))
		copy(c.Visits, d.Visits)
	}
	if d.Schedule != nil {
		c.Schedule = make([]ScheduleSlot, len(d.Schedule))
		copy(c.Schedule, d.Schedule)
	}
	return c
}

// Validate checks the fields every stored doctor needs.
func (d Doctor) Validate() error {
	if d.ID == "" {
		return validationError("doctor id is required")
	}
	return nil
}

// FindVisit returns the index of the visit with the given id, or -1.
func (d Doctor) FindVisit(visitID string) int {
	for i := range d.Visits {
		if d.Visits[i].ID == visitID {
			return i
		}
	}
	return -1
}
