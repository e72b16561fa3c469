package doctor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/evcraddock/medicall/internal/db"
)

func TestUpsertAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	saved, err := repo.Upsert(ctx, Doctor{
		ID:             "d1",
		Executive:      "LUIS",
		Name:           "DR. PEREZ",
		Specialty:      "CARDIOLOGIA",
		Classification: ClassA,
		Visits: []Visit{
			{ID: "v1", Date: "2025-03-10", Time: "09:00", Status: StatusPlanned, Outcome: OutcomePlanned},
		},
		Schedule: []ScheduleSlot{{Day: "LUNES", Time: "10:00", Active: true}},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.Category != DefaultCategory {
		t.Errorf("category = %q, want %q", saved.Category, DefaultCategory)
	}
	if saved.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := repo.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "DR. PEREZ" || got.Executive != "LUIS" {
		t.Errorf("got %+v", got)
	}
	if len(got.Visits) != 1 || got.Visits[0].Outcome != OutcomePlanned {
		t.Errorf("visits = %+v", got.Visits)
	}
	if len(got.Schedule) != 1 || !got.Schedule[0].Active {
		t.Errorf("schedule = %+v", got.Schedule)
	}
}

func TestUpsertReplacesWholeRecord(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, Doctor{ID: "d1", Name: "A", Phone: "555", Visits: []Visit{{ID: "v1"}}}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := repo.Upsert(ctx, Doctor{ID: "d1", Name: "B"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "B" {
		t.Errorf("name = %q, want B", got.Name)
	}
	if got.Phone != "" {
		t.Errorf("phone = %q, want cleared", got.Phone)
	}
	if got.Visits == nil || len(got.Visits) != 0 {
		t.Errorf("visits = %#v, want empty slice", got.Visits)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestUpsertRequiresID(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.Upsert(context.Background(), Doctor{Name: "nameless"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := repo.Upsert(ctx, Doctor{ID: id, Name: id}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	if err := repo.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting missing doctor should not fail: %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d doctors, want 2", len(all))
	}
	for _, d := range all {
		if d.ID == "b" {
			t.Error("deleted doctor still listed")
		}
	}
}

func TestListEmpty(t *testing.T) {
	repo := testRepo(t)

	all, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("list = %#v, want empty slice", all)
	}
}

func TestInsertMany(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	err := repo.InsertMany(ctx, []Doctor{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	if err != nil {
		t.Fatalf("insert many: %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestInsertManyRollsBack(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	err := repo.InsertMany(ctx, []Doctor{{ID: "a"}, {Name: "no id"}})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0 after rollback", n)
	}
}

func testRepo(t *testing.T) *Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return NewRepository(d)
}
