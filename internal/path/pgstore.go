package path

import (
	"context"
	"encoding/json"
	"errors"

	"backend-pathrecorder/internal/db"

	"github.com/jackc/pgx/v5"
)

// PGStore keeps records in Postgres, one row per record with the
// location history and photos bulk-serialized into jsonb columns.
type PGStore struct {
	db db.Querier
}

func NewPGStore(querier db.Querier) *PGStore {
	return &PGStore{db: querier}
}

// EnsureSchema creates the tables the store needs.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS paths (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			start_time TIMESTAMPTZ NOT NULL,
			total_duration_sec DOUBLE PRECISION NOT NULL,
			total_distance_m DOUBLE PRECISION NOT NULL,
			locations JSONB NOT NULL,
			photos JSONB NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS recording_state (
			id INT PRIMARY KEY CHECK (id = 1),
			data JSONB NOT NULL
		)
	`)
	return err
}

func (s *PGStore) Paths(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, start_time, total_duration_sec, total_distance_m, locations, photos
		FROM paths ORDER BY start_time
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *PGStore) PathFor(ctx context.Context, id string) (Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, start_time, total_duration_sec, total_distance_m, locations, photos
		FROM paths WHERE id = $1
	`, id)
	if err != nil {
		return Record{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Record{}, err
		}
		return Record{}, ErrNotFound
	}
	return scanRecord(rows)
}

func (s *PGStore) SavePath(ctx context.Context, record Record) error {
	locations, photos, err := marshalRecordBlobs(record)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO paths (id, name, start_time, total_duration_sec, total_distance_m, locations, photos)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, record.ID, record.Name, record.StartTime, record.TotalDuration, record.TotalDistance, locations, photos)
	return err
}

func (s *PGStore) UpdatePath(ctx context.Context, record Record) error {
	locations, photos, err := marshalRecordBlobs(record)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE paths
		SET name = $2, start_time = $3, total_duration_sec = $4, total_distance_m = $5, locations = $6, photos = $7
		WHERE id = $1
	`, record.ID, record.Name, record.StartTime, record.TotalDuration, record.TotalDistance, locations, photos)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) DeletePath(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM paths WHERE id = $1`, id)
	return err
}

func (s *PGStore) SaveSession(ctx context.Context, state SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO recording_state (id, data) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
	`, data)
	return err
}

func (s *PGStore) LoadSession(ctx context.Context) (SessionState, bool, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT data FROM recording_state WHERE id = 1`).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return SessionState{}, false, nil
	}
	if err != nil {
		return SessionState{}, false, err
	}
	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return SessionState{}, false, err
	}
	if len(state.Locations) == 0 {
		return SessionState{}, false, nil
	}
	return state, true, nil
}

func (s *PGStore) ClearSession(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM recording_state WHERE id = 1`)
	return err
}

func marshalRecordBlobs(record Record) (locations, photos []byte, err error) {
	if record.Locations == nil {
		record.Locations = []Position{}
	}
	if record.Photos == nil {
		record.Photos = []Photo{}
	}
	locations, err = json.Marshal(record.Locations)
	if err != nil {
		return nil, nil, err
	}
	photos, err = json.Marshal(record.Photos)
	if err != nil {
		return nil, nil, err
	}
	return locations, photos, nil
}

func scanRecord(rows pgx.Rows) (Record, error) {
	var r Record
	var locations, photos []byte
	if err := rows.Scan(&r.ID, &r.Name, &r.StartTime, &r.TotalDuration, &r.TotalDistance, &locations, &photos); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(locations, &r.Locations); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(photos, &r.Photos); err != nil {
		return Record{}, err
	}
	return r, nil
}
