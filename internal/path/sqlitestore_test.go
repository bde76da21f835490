package path

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"backend-pathrecorder/internal/db"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	sqlDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "paths.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	store, err := NewSQLiteStore(sqlDB)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestSQLiteStorePathLifecycle(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := store.SavePath(ctx, testRecord("path-1", "A")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SavePath(ctx, testRecord("path-2", "B")); err != nil {
		t.Fatalf("save: %v", err)
	}

	records, err := store.Paths(ctx)
	if err != nil || len(records) != 2 {
		t.Fatalf("paths: %v %v", records, err)
	}
	if records[0].ID != "path-1" || records[1].ID != "path-2" {
		t.Fatalf("insertion order not preserved: %+v", records)
	}

	got, err := store.PathFor(ctx, "path-1")
	if err != nil || len(got.Locations) != 2 {
		t.Fatalf("get: %+v %v", got, err)
	}

	got.Name = "renamed"
	if err := store.UpdatePath(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.PathFor(ctx, "path-1")
	if got.Name != "renamed" {
		t.Fatalf("update not visible")
	}

	if err := store.DeletePath(ctx, "path-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.PathFor(ctx, "path-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found")
	}
	if err := store.DeletePath(ctx, "path-2"); err != nil {
		t.Fatalf("delete must be idempotent: %v", err)
	}
}

func TestSQLiteStoreUpdateUnknownID(t *testing.T) {
	store := newTestSQLiteStore(t)
	if err := store.UpdatePath(context.Background(), testRecord("missing", "x")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSQLiteStoreSessionSlot(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	if _, ok, err := store.LoadSession(ctx); err != nil || ok {
		t.Fatalf("expected no session initially")
	}

	state := SessionState{
		Locations: testRecord("x", "x").Locations,
		IsPaused:  true,
	}
	if err := store.SaveSession(ctx, state); err != nil {
		t.Fatalf("save session: %v", err)
	}
	// Saving again overwrites the single slot.
	state.ElapsedSec = 30
	if err := store.SaveSession(ctx, state); err != nil {
		t.Fatalf("re-save session: %v", err)
	}

	got, ok, err := store.LoadSession(ctx)
	if err != nil || !ok || got.ElapsedSec != 30 {
		t.Fatalf("load session: %+v %v", got, err)
	}

	if err := store.ClearSession(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.LoadSession(ctx); ok {
		t.Fatalf("expected session cleared")
	}
}
