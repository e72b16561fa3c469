// Package procedure provides billable hospital procedures and their storage.
package procedure

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation is returned for a procedure that cannot be stored.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a procedure id does not exist.
	ErrNotFound = errors.New("not found")
)

// Status is the lifecycle of a procedure.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusPerformed Status = "performed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusScheduled || s == StatusPerformed
}

// Procedure is a billable medical procedure tied to a doctor.
// DoctorID is a lookup reference only; the doctor does not own it.
type Procedure struct {
	ID            string    `json:"id" bson:"id"`
	Date          string    `json:"date" bson:"date"`
	Time          string    `json:"time,omitempty" bson:"time,omitempty"`
	Hospital      string    `json:"hospital,omitempty" bson:"hospital,omitempty"`
	DoctorID      string    `json:"doctorId" bson:"doctorId"`
	DoctorName    string    `json:"doctorName,omitempty" bson:"doctorName,omitempty"`
	ProcedureType string    `json:"procedureType,omitempty" bson:"procedureType,omitempty"`
	PaymentType   string    `json:"paymentType,omitempty" bson:"paymentType,omitempty"`
	Cost          float64   `json:"cost" bson:"cost"`
	Commission    float64   `json:"commission" bson:"commission"`
	Technician    string    `json:"technician,omitempty" bson:"technician,omitempty"`
	Notes         string    `json:"notes,omitempty" bson:"notes,omitempty"`
	Status        Status    `json:"status" bson:"status"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Performed reports whether the procedure has been carried out.
func (p Procedure) Performed() bool {
	return p.Status == StatusPerformed
}

// Validate checks the id, the status and that money fields are not negative.
// An empty status is treated as scheduled.
func (p *Procedure) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: procedure id is required", ErrValidation)
	}
	if p.Status == "" {
		p.Status = StatusScheduled
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: status must be scheduled or performed, got %q", ErrValidation, p.Status)
	}
	if p.Cost < 0 || p.Commission < 0 {
		return fmt.Errorf("%w: cost and commission must not be negative", ErrValidation)
	}
	return nil
}
