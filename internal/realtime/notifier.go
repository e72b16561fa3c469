package realtime

import (
	"github.com/evcraddock/medicall/internal/doctor"
	"github.com/evcraddock/medicall/internal/procedure"
)

// Notifier receives change notifications after a successful write.
// Implementations must not block the caller.
type Notifier interface {
	DoctorUpdated(d doctor.Doctor)
	DoctorDeleted(id string)
	ProcedureUpdated(p procedure.Procedure)
	ProcedureDeleted(id string)
}

// DoctorUpdated broadcasts the full updated doctor record.
func (h *Hub) DoctorUpdated(d doctor.Doctor) {
	h.publish(EventDoctorUpdated, d.ID, d)
}

// DoctorDeleted broadcasts the id of a removed doctor.
func (h *Hub) DoctorDeleted(id string) {
	h.publish(EventDoctorDeleted, id, nil)
}

// ProcedureUpdated broadcasts the full updated procedure.
func (h *Hub) ProcedureUpdated(p procedure.Procedure) {
	h.publish(EventProcedureUpdated, p.ID, p)
}

// ProcedureDeleted broadcasts the id of a removed procedure.
func (h *Hub) ProcedureDeleted(id string) {
	h.publish(EventProcedureDeleted, id, nil)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) DoctorUpdated(doctor.Doctor)          {}
func (Nop) DoctorDeleted(string)                 {}
func (Nop) ProcedureUpdated(procedure.Procedure) {}
func (Nop) ProcedureDeleted(string)              {}
