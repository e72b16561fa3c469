// Package timeoff stores executive absences (vacations, sick days, courses).
package timeoff

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/medicall/internal/db"
)

// ErrValidation is returned for an absence that cannot be stored.
var ErrValidation = errors.New("validation failed")

// Event is one absence of an executive.
type Event struct {
	ID        string    `json:"id" bson:"id"`
	Executive string    `json:"executive" bson:"executive"`
	StartDate string    `json:"startDate" bson:"startDate"`
	EndDate   string    `json:"endDate" bson:"endDate"`
	Duration  string    `json:"duration,omitempty" bson:"duration,omitempty"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Prepare validates e and fills defaults: a generated id and an end date
// equal to the start date.
func (e *Event) Prepare() error {
	if strings.TrimSpace(e.Executive) == "" {
		return fmt.Errorf("%w: executive is required", ErrValidation)
	}
	if strings.TrimSpace(e.StartDate) == "" {
		return fmt.Errorf("%w: start date is required", ErrValidation)
	}
	if e.EndDate == "" {
		e.EndDate = e.StartDate
	}
	if e.EndDate < e.StartDate {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrValidation, e.EndDate, e.StartDate)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Repository handles absence persistence in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a time-off repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns every absence, latest start first.
func (r *Repository) List(ctx context.Context) (events []Event, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, body, created_at FROM time_off ORDER BY start_date DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("listing time off: %w", err)
	}
	defer db.CloseRows(rows, &err)

	events = make([]Event, 0)
	for rows.Next() {
		var (
			id, body  string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &body, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning time off: %w", err)
		}
		var e Event
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			return nil, fmt.Errorf("decoding time off %s: %w", id, err)
		}
		e.ID = id
		e.CreatedAt = createdAt
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time off: %w", err)
	}

	return events, nil
}

// Add stores an absence and returns it with its id.
func (r *Repository) Add(ctx context.Context, e Event) (Event, error) {
	if err := e.Prepare(); err != nil {
		return Event{}, err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(e)
	if err != nil {
		return Event{}, fmt.Errorf("encoding time off: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO time_off (id, executive, start_date, body, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			executive = excluded.executive,
			start_date = excluded.start_date,
			body = excluded.body`,
		e.ID, e.Executive, e.StartDate, string(body), e.CreatedAt,
	)
	if err != nil {
		return Event{}, fmt.Errorf("inserting time off: %w", err)
	}
	return e, nil
}

// Delete removes an absence. Deleting a missing absence is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM time_off WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting time off: %w", err)
	}
	return nil
}
