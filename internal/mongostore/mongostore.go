// Package mongostore keeps doctors, procedures and absences in MongoDB.
// It is the alternative to the SQLite repositories for shared deployments.
package mongostore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	DoctorsCollection    = "doctors"
	ProceduresCollection = "procedures"
	TimeOffCollection    = "time_off"
)

const connectTimeout = 10 * time.Second

// Store is a connected MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// Connect opens a client, pings the server and ensures the id indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	s := &Store{client: client, db: client.Database(database), now: time.Now}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	slog.Info("connected to mongodb", "database", database)
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting from mongodb: %w", err)
	}
	return nil
}

// Drop removes the whole database.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.db.Drop(ctx); err != nil {
		return fmt.Errorf("dropping database: %w", err)
	}
	return nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	for _, name := range []string{DoctorsCollection, ProceduresCollection, TimeOffCollection} {
		_, err := s.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("creating id index on %s: %w", name, err)
		}
	}
	return nil
}

// Doctors returns the doctor store.
func (s *Store) Doctors() *DoctorStore {
	return &DoctorStore{coll: s.db.Collection(DoctorsCollection), now: s.now}
}

// Procedures returns the procedure store.
func (s *Store) Procedures() *ProcedureStore {
	return &ProcedureStore{coll: s.db.Collection(ProceduresCollection), now: s.now}
}

// TimeOff returns the absence store.
func (s *Store) TimeOff() *TimeOffStore {
	return &TimeOffStore{coll: s.db.Collection(TimeOffCollection), now: s.now}
}

func byID(id string) bson.M {
	return bson.M{"id": id}
}

// createdAt returns the stored creation time of a document, or zero.
func createdAt(ctx context.Context, coll *mongo.Collection, id string) (time.Time, error) {
	var doc struct {
		CreatedAt time.Time `bson:"createdAt"`
	}
	err := coll.FindOne(ctx, byID(id), options.FindOne().SetProjection(bson.M{"createdAt": 1})).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return doc.CreatedAt, nil
}

// replace upserts doc keyed on id.
func replace(ctx context.Context, coll *mongo.Collection, id string, doc interface{}) error {
	_, err := coll.ReplaceOne(ctx, byID(id), doc, options.Replace().SetUpsert(true))
	return err
}
