// Package crm ties the visit ledger, the stores, the dashboard and the
// realtime notifier together.
package crm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/evcraddock/medicall/internal/calendar"
	"github.com/evcraddock/medicall/internal/doctor"
	"github.com/evcraddock/medicall/internal/executive"
	"github.com/evcraddock/medicall/internal/export"
	"github.com/evcraddock/medicall/internal/period"
	"github.com/evcraddock/medicall/internal/procedure"
	"github.com/evcraddock/medicall/internal/realtime"
	"github.com/evcraddock/medicall/internal/stats"
	"github.com/evcraddock/medicall/internal/timeoff"
)

// DoctorStore persists whole doctor records.
type DoctorStore interface {
	List(ctx context.Context) ([]doctor.Doctor, error)
	Upsert(ctx context.Context, d doctor.Doctor) (doctor.Doctor, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	InsertMany(ctx context.Context, doctors []doctor.Doctor) error
}

// ProcedureStore persists procedures.
type ProcedureStore interface {
	List(ctx context.Context) ([]procedure.Procedure, error)
	Upsert(ctx context.Context, p procedure.Procedure) (procedure.Procedure, error)
	Delete(ctx context.Context, id string) error
}

// TimeOffStore persists executive absences.
type TimeOffStore interface {
	List(ctx context.Context) ([]timeoff.Event, error)
	Add(ctx context.Context, e timeoff.Event) (timeoff.Event, error)
	Delete(ctx context.Context, id string) error
}

// Stores groups the persistence backends of a service.
type Stores struct {
	Doctors    DoctorStore
	Procedures ProcedureStore
	TimeOff    TimeOffStore
}

// ErrValidation is returned for invalid seed or restore input.
var ErrValidation = errors.New("validation failed")

// Service runs CRM operations.
//
// Every roster mutation reads the current roster, applies the change to an
// in-memory ledger, writes the whole doctor record back and then notifies
// listeners. Mutations from one Service are serialized; writes from other
// processes are last-write-wins.
type Service struct {
	stores     Stores
	notifier   realtime.Notifier
	executives executive.Directory
	now        func() time.Time

	mu sync.Mutex
}

// NewService creates a service. A nil notifier discards notifications; an
// empty executive directory is derived from the roster on each request.
func NewService(stores Stores, notifier realtime.Notifier, executives executive.Directory) *Service {
	if notifier == nil {
		notifier = realtime.Nop{}
	}
	return &Service{
		stores:     stores,
		notifier:   notifier,
		executives: executives,
		now:        time.Now,
	}
}

// ListDoctors returns the full roster.
func (s *Service) ListDoctors(ctx context.Context) ([]doctor.Doctor, error) {
	doctors, err := s.stores.Doctors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}
	return doctors, nil
}

// UpsertDoctor creates or replaces a doctor record.
func (s *Service) UpsertDoctor(ctx context.Context, d doctor.Doctor) (doctor.Doctor, error) {
	if err := d.Validate(); err != nil {
		return doctor.Doctor{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, d)
}

// DeleteDoctor removes a doctor. Deleting a missing doctor is not an error.
func (s *Service) DeleteDoctor(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stores.Doctors.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting doctor: %w", err)
	}
	slog.Debug("doctor deleted", "doctor_id", id)
	s.notifier.DoctorDeleted(id)
	return nil
}

// PlanVisit schedules a visit for a doctor.
func (s *Service) PlanVisit(ctx context.Context, req doctor.PlanRequest) (doctor.Doctor, error) {
	return s.mutate(ctx, func(l *doctor.Ledger) (doctor.Doctor, error) {
		return l.Plan(req)
	})
}

// ReportVisit records the outcome of a visit.
func (s *Service) ReportVisit(ctx context.Context, req doctor.ReportRequest) (doctor.Doctor, error) {
	return s.mutate(ctx, func(l *doctor.Ledger) (doctor.Doctor, error) {
		return l.Report(req)
	})
}

// DeleteVisit removes a visit from a doctor. A missing visit leaves the
// doctor unchanged; a missing doctor returns doctor.ErrNotFound.
func (s *Service) DeleteVisit(ctx context.Context, doctorID, visitID string) (doctor.Doctor, error) {
	return s.mutate(ctx, func(l *doctor.Ledger) (doctor.Doctor, error) {
		return l.DeleteVisit(doctorID, visitID)
	})
}

// ReportDraft returns the pre-filled report form for a visit.
func (s *Service) ReportDraft(ctx context.Context, doctorID, visitID string) (doctor.Draft, error) {
	roster, err := s.ListDoctors(ctx)
	if err != nil {
		return doctor.Draft{}, err
	}
	d, ok := doctor.NewLedger(roster).Doctor(doctorID)
	if !ok {
		return doctor.Draft{}, fmt.Errorf("doctor %s: %w", doctorID, doctor.ErrNotFound)
	}
	i := d.FindVisit(visitID)
	if i < 0 {
		return doctor.Draft{}, fmt.Errorf("visit %s: %w", visitID, doctor.ErrNotFound)
	}
	return doctor.NewDraft(d.Visits[i]), nil
}

func (s *Service) mutate(ctx context.Context, op func(*doctor.Ledger) (doctor.Doctor, error)) (doctor.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roster, err := s.stores.Doctors.List(ctx)
	if err != nil {
		return doctor.Doctor{}, fmt.Errorf("loading roster: %w", err)
	}

	d, err := op(doctor.NewLedger(roster))
	if err != nil {
		return doctor.Doctor{}, err
	}

	return s.save(ctx, d)
}

// save writes a doctor record and notifies listeners. Callers hold s.mu.
func (s *Service) save(ctx context.Context, d doctor.Doctor) (doctor.Doctor, error) {
	saved, err := s.stores.Doctors.Upsert(ctx, d)
	if err != nil {
		return doctor.Doctor{}, fmt.Errorf("saving doctor: %w", err)
	}
	slog.Debug("doctor saved", "doctor_id", saved.ID, "visits", len(saved.Visits))
	s.notifier.DoctorUpdated(saved)
	return saved, nil
}

// SeedResult reports the outcome of a seed.
type SeedResult struct {
	Seeded bool `json:"seeded"`
	Count  int  `json:"count"`
}

// Seed loads an initial roster into an empty store. If the store already
// holds doctors nothing is written and the existing count is reported.
func (s *Service) Seed(ctx context.Context, doctors []doctor.Doctor) (SeedResult, error) {
	if len(doctors) == 0 {
		return SeedResult{}, fmt.Errorf("%w: seed requires at least one doctor", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.stores.Doctors.Count(ctx)
	if err != nil {
		return SeedResult{}, fmt.Errorf("counting doctors: %w", err)
	}
	if n > 0 {
		slog.Info("seed skipped, store not empty", "count", n)
		return SeedResult{Seeded: false, Count: n}, nil
	}

	if err := s.stores.Doctors.InsertMany(ctx, doctors); err != nil {
		return SeedResult{}, fmt.Errorf("seeding doctors: %w", err)
	}
	slog.Info("roster seeded", "count", len(doctors))
	return SeedResult{Seeded: true, Count: len(doctors)}, nil
}

// ListProcedures returns every procedure.
func (s *Service) ListProcedures(ctx context.Context) ([]procedure.Procedure, error) {
	procedures, err := s.stores.Procedures.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing procedures: %w", err)
	}
	return procedures, nil
}

// UpsertProcedure creates or replaces a procedure.
func (s *Service) UpsertProcedure(ctx context.Context, p procedure.Procedure) (procedure.Procedure, error) {
	if err := p.Validate(); err != nil {
		return procedure.Procedure{}, err
	}

	saved, err := s.stores.Procedures.Upsert(ctx, p)
	if err != nil {
		return procedure.Procedure{}, fmt.Errorf("saving procedure: %w", err)
	}
	slog.Debug("procedure saved", "procedure_id", saved.ID)
	s.notifier.ProcedureUpdated(saved)
	return saved, nil
}

// DeleteProcedure removes a procedure. Deleting a missing procedure is not
// an error.
func (s *Service) DeleteProcedure(ctx context.Context, id string) error {
	if err := s.stores.Procedures.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting procedure: %w", err)
	}
	slog.Debug("procedure deleted", "procedure_id", id)
	s.notifier.ProcedureDeleted(id)
	return nil
}

// ListTimeOff returns every absence.
func (s *Service) ListTimeOff(ctx context.Context) ([]timeoff.Event, error) {
	events, err := s.stores.TimeOff.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing time off: %w", err)
	}
	return events, nil
}

// AddTimeOff stores an absence.
func (s *Service) AddTimeOff(ctx context.Context, e timeoff.Event) (timeoff.Event, error) {
	if err := e.Prepare(); err != nil {
		return timeoff.Event{}, err
	}
	saved, err := s.stores.TimeOff.Add(ctx, e)
	if err != nil {
		return timeoff.Event{}, fmt.Errorf("saving time off: %w", err)
	}
	return saved, nil
}

// DeleteTimeOff removes an absence.
func (s *Service) DeleteTimeOff(ctx context.Context, id string) error {
	if err := s.stores.TimeOff.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting time off: %w", err)
	}
	return nil
}

// Executives returns the configured executive directory, or the distinct
// executives of the roster when none is configured.
func (s *Service) Executives(ctx context.Context) (executive.Directory, error) {
	if len(s.executives) > 0 {
		return s.executives, nil
	}
	roster, err := s.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}
	return executive.FromNames(calendar.Executives(roster)), nil
}

// Stats computes the dashboard for a period, optionally scoped to one
// executive.
func (s *Service) Stats(ctx context.Context, sel period.Selection, exec string) (stats.Result, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return stats.Result{}, err
	}
	return stats.Compute(stats.Input{
		Roster:     snap.Doctors,
		Procedures: snap.Procedures,
		Period:     sel,
		Executive:  exec,
		Executives: s.executives,
	}), nil
}

// Calendar renders the calendar cells of view around ref.
func (s *Service) Calendar(ctx context.Context, ref time.Time, view calendar.View, exec string) ([]*calendar.Cell, error) {
	roster, err := s.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.Grid(ref, view, calendar.Index(roster, exec), s.now()), nil
}

// DaySlots returns the day view time slots for ref.
func (s *Service) DaySlots(ctx context.Context, ref time.Time, exec string) ([]calendar.Slot, error) {
	roster, err := s.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.DaySlots(ref, calendar.Index(roster, exec)), nil
}

// Snapshot is a consistent read of every store.
type Snapshot struct {
	Doctors    []doctor.Doctor
	Procedures []procedure.Procedure
	TimeOff    []timeoff.Event
}

// Snapshot reads the roster, procedures and absences.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	doctors, err := s.ListDoctors(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	procedures, err := s.ListProcedures(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	events, err := s.ListTimeOff(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Doctors: doctors, Procedures: procedures, TimeOff: events}, nil
}

// Backup returns a full backup of the CRM.
func (s *Service) Backup(ctx context.Context) (export.Backup, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return export.Backup{}, err
	}
	return export.NewBackup(snap.Doctors, snap.Procedures, snap.TimeOff, s.now()), nil
}

// RestoreResult counts the records written by a restore.
type RestoreResult struct {
	Doctors    int `json:"doctors"`
	Procedures int `json:"procedures"`
	TimeOff    int `json:"timeOff"`
}

// Restore upserts every record of a backup. Records not in the backup are
// kept.
func (s *Service) Restore(ctx context.Context, b export.Backup) (RestoreResult, error) {
	if b.Doctors == nil {
		return RestoreResult{}, fmt.Errorf("%w: backup has no doctors list", ErrValidation)
	}

	var res RestoreResult

	s.mu.Lock()
	for _, d := range b.Doctors {
		if _, err := s.save(ctx, d); err != nil {
			s.mu.Unlock()
			return res, fmt.Errorf("restoring doctor %s: %w", d.ID, err)
		}
		res.Doctors++
	}
	s.mu.Unlock()

	for _, p := range b.Procedures {
		if _, err := s.UpsertProcedure(ctx, p); err != nil {
			return res, fmt.Errorf("restoring procedure %s: %w", p.ID, err)
		}
		res.Procedures++
	}

	for _, e := range b.TimeOff {
		if _, err := s.AddTimeOff(ctx, e); err != nil {
			return res, fmt.Errorf("restoring time off %s: %w", e.ID, err)
		}
		res.TimeOff++
	}

	slog.Info("backup restored", "doctors", res.Doctors, "procedures", res.Procedures, "time_off", res.TimeOff)
	return res, nil
}
