package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evcraddock/medicall/internal/procedure"
	"github.com/evcraddock/medicall/internal/timeoff"
)

// ProcedureStore keeps procedure documents.
type ProcedureStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// List returns every procedure, newest date first.
func (s *ProcedureStore) List(ctx context.Context) ([]procedure.Procedure, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing procedures: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	procedures := make([]procedure.Procedure, 0)
	if err := cur.All(ctx, &procedures); err != nil {
		return nil, fmt.Errorf("decoding procedures: %w", err)
	}
	return procedures, nil
}

// Upsert replaces the procedure with the same id.
func (s *ProcedureStore) Upsert(ctx context.Context, p procedure.Procedure) (procedure.Procedure, error) {
	if err := p.Validate(); err != nil {
		return procedure.Procedure{}, err
	}

	created, err := createdAt(ctx, s.coll, p.ID)
	if err != nil {
		return procedure.Procedure{}, fmt.Errorf("querying procedure %s: %w", p.ID, err)
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	if created.IsZero() {
		created = now
	}
	p.CreatedAt = created
	p.UpdatedAt = now

	if err := replace(ctx, s.coll, p.ID, p); err != nil {
		return procedure.Procedure{}, fmt.Errorf("upserting procedure %s: %w", p.ID, err)
	}
	return p, nil
}

// Delete removes a procedure. Deleting a missing procedure is not an error.
func (s *ProcedureStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, byID(id)); err != nil {
		return fmt.Errorf("deleting procedure: %w", err)
	}
	return nil
}

// TimeOffStore keeps executive absences.
type TimeOffStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// List returns every absence, latest start first.
func (s *TimeOffStore) List(ctx context.Context) ([]timeoff.Event, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing time off: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	events := make([]timeoff.Event, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decoding time off: %w", err)
	}
	return events, nil
}

// Add stores an absence.
func (s *TimeOffStore) Add(ctx context.Context, e timeoff.Event) (timeoff.Event, error) {
	if err := e.Prepare(); err != nil {
		return timeoff.Event{}, err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	}
	if err := replace(ctx, s.coll, e.ID, e); err != nil {
		return timeoff.Event{}, fmt.Errorf("inserting time off: %w", err)
	}
	return e, nil
}

// Delete removes an absence.
func (s *TimeOffStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, byID(id)); err != nil {
		return fmt.Errorf("deleting time off: %w", err)
	}
	return nil
}
