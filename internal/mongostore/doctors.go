package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evcraddock/medicall/internal/doctor"
)

// DoctorStore keeps whole doctor documents, visits embedded.
type DoctorStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// List returns every doctor, most recently updated first.
func (s *DoctorStore) List(ctx context.Context) ([]doctor.Doctor, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	doctors := make([]doctor.Doctor, 0)
	if err := cur.All(ctx, &doctors); err != nil {
		return nil, fmt.Errorf("decoding doctors: %w", err)
	}
	for i := range doctors {
		normalizeDoctor(&doctors[i])
	}
	return doctors, nil
}

// Get returns a doctor by id.
func (s *DoctorStore) Get(ctx context.Context, id string) (doctor.Doctor, error) {
	var d doctor.Doctor
	err := s.coll.FindOne(ctx, byID(id)).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return doctor.Doctor{}, fmt.Errorf("doctor %s: %w", id, doctor.ErrNotFound)
	}
	if err != nil {
		return doctor.Doctor{}, fmt.Errorf("querying doctor %s: %w", id, err)
	}
	normalizeDoctor(&d)
	return d, nil
}

// Upsert replaces the doctor document with the same id, keeping its
// creation time.
func (s *DoctorStore) Upsert(ctx context.Context, d doctor.Doctor) (doctor.Doctor, error) {
	if err := d.Validate(); err != nil {
		return doctor.Doctor{}, err
	}
	normalizeDoctor(&d)

	created, err := createdAt(ctx, s.coll, d.ID)
	if err != nil {
		return doctor.Doctor{}, fmt.Errorf("querying doctor %s: %w", d.ID, err)
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	if created.IsZero() {
		created = now
	}
	d.CreatedAt = created
	d.UpdatedAt = now

	if err := replace(ctx, s.coll, d.ID, d); err != nil {
		return doctor.Doctor{}, fmt.Errorf("upserting doctor %s: %w", d.ID, err)
	}
	return d, nil
}

// Delete removes a doctor. Deleting a missing doctor is not an error.
func (s *DoctorStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, byID(id)); err != nil {
		return fmt.Errorf("deleting doctor: %w", err)
	}
	return nil
}

// Count returns the number of stored doctors.
func (s *DoctorStore) Count(ctx context.Context) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting doctors: %w", err)
	}
	return int(n), nil
}

// InsertMany stores a batch of new doctors.
func (s *DoctorStore) InsertMany(ctx context.Context, doctors []doctor.Doctor) error {
	now := s.now().UTC().Truncate(time.Millisecond)
	docs := make([]interface{}, 0, len(doctors))
	for _, d := range doctors {
		if err := d.Validate(); err != nil {
			return err
		}
		normalizeDoctor(&d)
		d.CreatedAt = now
		d.UpdatedAt = now
		docs = append(docs, d)
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("inserting doctors: %w", err)
	}
	return nil
}

func normalizeDoctor(d *doctor.Doctor) {
	if d.Category == "" {
		d.Category = doctor.DefaultCategory
	}
	if d.Visits == nil {
		d.Visits = []doctor.Visit{}
	}
}
