package procedure

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evcraddock/medicall/internal/db"
)

// Repository handles procedure persistence in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a procedure repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns every procedure, newest date first.
func (r *Repository) List(ctx context.Context) (procedures []Procedure, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, body, created_at, updated_at FROM procedures ORDER BY date DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("listing procedures: %w", err)
	}
	defer db.CloseRows(rows, &err)

	procedures = make([]Procedure, 0)
	for rows.Next() {
		p, err := scanProcedure(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning procedure: %w", err)
		}
		procedures = append(procedures, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating procedures: %w", err)
	}

	return procedures, nil
}

// Get returns a procedure by id.
func (r *Repository) Get(ctx context.Context, id string) (Procedure, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, body, created_at, updated_at FROM procedures WHERE id = ?", id)

	p, err := scanProcedure(row)
	if err == sql.ErrNoRows {
		return Procedure{}, fmt.Errorf("procedure %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Procedure{}, fmt.Errorf("querying procedure %s: %w", id, err)
	}
	return p, nil
}

// Upsert inserts or replaces a procedure by id.
func (r *Repository) Upsert(ctx context.Context, p Procedure) (Procedure, error) {
	if err := p.Validate(); err != nil {
		return Procedure{}, err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return Procedure{}, fmt.Errorf("encoding procedure %s: %w", p.ID, err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO procedures (id, doctor_id, date, status, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doctor_id = excluded.doctor_id,
			date = excluded.date,
			status = excluded.status,
			body = excluded.body,
			updated_at = CURRENT_TIMESTAMP`,
		p.ID, p.DoctorID, p.Date, string(p.Status), string(body),
	)
	if err != nil {
		return Procedure{}, fmt.Errorf("upserting procedure %s: %w", p.ID, err)
	}

	return r.Get(ctx, p.ID)
}

// Delete removes a procedure. Deleting a missing procedure is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM procedures WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting procedure: %w", err)
	}
	return nil
}

func scanProcedure(row interface{ Scan(...interface{}) error }) (Procedure, error) {
	var (
		id, body             string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &body, &createdAt, &updatedAt); err != nil {
		return Procedure{}, err
	}

	var p Procedure
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return Procedure{}, fmt.Errorf("decoding procedure %s: %w", id, err)
	}
	p.ID = id
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return p, nil
}
