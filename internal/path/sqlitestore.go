package path

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// SQLiteStore keeps each record bulk-serialized as a JSON document in a
// sqlite row; insertion order is the collection order.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(sqlDB *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: sqlDB}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS paths (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS recording_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			data TEXT NOT NULL
		);
	`)
	return err
}

func (s *SQLiteStore) Paths(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM paths ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) PathFor(ctx context.Context, id string) (Record, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM paths WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}

func (s *SQLiteStore) SavePath(ctx context.Context, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO paths (id, data) VALUES (?, ?)`, record.ID, data)
	return err
}

func (s *SQLiteStore) UpdatePath(ctx context.Context, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE paths SET data = ? WHERE id = ?`, data, record.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeletePath(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM paths WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) SaveSession(ctx context.Context, state SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recording_state (id, data) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data
	`, data)
	return err
}

func (s *SQLiteStore) LoadSession(ctx context.Context) (SessionState, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM recording_state WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
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

func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recording_state WHERE id = 1`)
	return err
}
