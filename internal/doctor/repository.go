package doctor

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evcraddock/medicall/internal/db"
)

// Repository stores doctor records in SQLite. Each doctor is kept as one JSON
// document with its visits; indexed columns are copied out for lookups.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a doctor repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, body, created_at, updated_at`

const upsertSQL = `INSERT INTO doctors (id, executive, name, category, body)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		executive = excluded.executive,
		name = excluded.name,
		category = excluded.category,
		body = excluded.body,
		updated_at = CURRENT_TIMESTAMP`

// List returns every doctor, most recently updated first.
func (r *Repository) List(ctx context.Context) (doctors []Doctor, err error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM doctors ORDER BY updated_at DESC, rowid DESC", selectColumns))
	if err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}
	defer db.CloseRows(rows, &err)

	doctors = make([]Doctor, 0)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning doctor: %w", err)
		}
		doctors = append(doctors, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating doctors: %w", err)
	}

	return doctors, nil
}

// Get returns a doctor by id.
func (r *Repository) Get(ctx context.Context, id string) (Doctor, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM doctors WHERE id = ?", selectColumns), id)

	d, err := scanDoctor(row)
	if err == sql.ErrNoRows {
		return Doctor{}, fmt.Errorf("doctor %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Doctor{}, fmt.Errorf("querying doctor %s: %w", id, err)
	}

	return *d, nil
}

// Upsert inserts or replaces a doctor by id and returns the stored record.
func (r *Repository) Upsert(ctx context.Context, d Doctor) (Doctor, error) {
	if err := d.Validate(); err != nil {
		return Doctor{}, err
	}

	if err := r.exec(ctx, r.db, d); err != nil {
		return Doctor{}, err
	}

	return r.Get(ctx, d.ID)
}

// Delete removes a doctor by id. Deleting a missing doctor is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM doctors WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting doctor: %w", err)
	}
	return nil
}

// Count returns the number of stored doctors.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM doctors").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting doctors: %w", err)
	}
	return n, nil
}

// InsertMany stores a batch of doctors in one transaction.
func (r *Repository) InsertMany(ctx context.Context, doctors []Doctor) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	for _, d := range doctors {
		if err := d.Validate(); err != nil {
			return rollback(tx, err)
		}
		if err := r.exec(ctx, tx, d); err != nil {
			return rollback(tx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing doctors: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *Repository) exec(ctx context.Context, e execer, d Doctor) error {
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	if d.Visits == nil {
		d.Visits = []Visit{}
	}

	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding doctor %s: %w", d.ID, err)
	}

	if _, err := e.ExecContext(ctx, upsertSQL, d.ID, d.Executive, d.Name, d.Category, string(body)); err != nil {
		return fmt.Errorf("upserting doctor %s: %w", d.ID, err)
	}
	return nil
}

func rollback(tx *sql.Tx, err error) error {
	if rbErr := tx.Rollback(); rbErr != nil {
		return fmt.Errorf("%w (also failed to roll back: %v)", err, rbErr)
	}
	return err
}

// scanDoctor decodes a doctor row.
func scanDoctor(row interface{ Scan(...interface{}) error }) (*Doctor, error) {
	var (
		id                   string
		body                 string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var d Doctor
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		return nil, fmt.Errorf("decoding doctor %s: %w", id, err)
	}
	d.ID = id
	d.CreatedAt = createdAt
	d.UpdatedAt = updatedAt
	if d.Visits == nil {
		d.Visits = []Visit{}
	}

	return &d, nil
}
