package path

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

var errStore = errors.New("store error")

func TestPGStoreSaveAndGet(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewPGStore(mock)
	ctx := context.Background()
	record := testRecord("path-1", "Morning walk")

	mock.ExpectExec(`INSERT INTO paths`).
		WithArgs("path-1", "Morning walk", record.StartTime, 120.0, 350.5, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := store.SavePath(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	locations := []byte(`[{"latitude":52,"longitude":13,"timestamp":"2025-06-01T10:00:00Z","accuracy_m":5,"segment_id":"seg-1"}]`)
	photos := []byte(`[]`)
	mock.ExpectQuery(`SELECT id, name, start_time, total_duration_sec, total_distance_m, locations, photos`).
		WithArgs("path-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "start_time", "total_duration_sec", "total_distance_m", "locations", "photos"}).
			AddRow("path-1", "Morning walk", record.StartTime, 120.0, 350.5, locations, photos))

	got, err := store.PathFor(ctx, "path-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Morning walk" || len(got.Locations) != 1 || got.Locations[0].SegmentID != "seg-1" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStorePathForNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, start_time, total_duration_sec, total_distance_m, locations, photos`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "start_time", "total_duration_sec", "total_distance_m", "locations", "photos"}))

	store := NewPGStore(mock)
	if _, err := store.PathFor(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPGStoreUpdateNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE paths`).
		WithArgs("missing", "x", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewPGStore(mock)
	if err := store.UpdatePath(context.Background(), testRecord("missing", "x")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPGStoreDeleteIdempotent(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM paths`).
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	store := NewPGStore(mock)
	if err := store.DeletePath(context.Background(), "gone"); err != nil {
		t.Fatalf("delete on unknown id must not error: %v", err)
	}
}

func TestPGStoreSessionSlot(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	store := NewPGStore(mock)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO recording_state`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	state := SessionState{
		Locations: []Position{{Latitude: 52, Longitude: 13, Timestamp: start, SegmentID: "seg-1"}},
		IsPaused:  true,
	}
	if err := store.SaveSession(ctx, state); err != nil {
		t.Fatalf("save session: %v", err)
	}

	blob := []byte(`{"locations":[{"latitude":52,"longitude":13,"timestamp":"2025-06-01T10:00:00Z","accuracy_m":0,"segment_id":"seg-1"}],"total_distance_m":0,"elapsed_sec":9,"is_paused":true,"photos":null}`)
	mock.ExpectQuery(`SELECT data FROM recording_state`).
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(blob))

	got, ok, err := store.LoadSession(ctx)
	if err != nil || !ok || got.ElapsedSec != 9 || !got.IsPaused {
		t.Fatalf("load session: %+v %v", got, err)
	}

	mock.ExpectExec(`DELETE FROM recording_state`).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := store.ClearSession(ctx); err != nil {
		t.Fatalf("clear session: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStorePathsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, start_time`).
		WillReturnError(errStore)

	store := NewPGStore(mock)
	if _, err := store.Paths(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
