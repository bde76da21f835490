package path

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	redisPathsKey   = "pathrecorder:paths"
	redisSessionKey = "pathrecorder:session"
)

// RedisStore serializes the whole collection into a single redis value,
// mirroring the blob-store contract. The mutex serializes the
// read-modify-write cycle of mutations.
type RedisStore struct {
	mu     sync.Mutex
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) readAll(ctx context.Context) ([]Record, error) {
	data, err := s.client.Get(ctx, redisPathsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *RedisStore) writeAll(ctx context.Context, records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisPathsKey, data, 0).Err()
}

func (s *RedisStore) Paths(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll(ctx)
}

func (s *RedisStore) PathFor(ctx context.Context, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.readAll(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *RedisStore) SavePath(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.readAll(ctx)
	if err != nil {
		return err
	}
	return s.writeAll(ctx, append(records, record))
}

func (s *RedisStore) UpdatePath(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.readAll(ctx)
	if err != nil {
		return err
	}
	for i, r := range records {
		if r.ID == record.ID {
			records[i] = record
			return s.writeAll(ctx, records)
		}
	}
	return ErrNotFound
}

func (s *RedisStore) DeletePath(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.readAll(ctx)
	if err != nil {
		return err
	}
	for i, r := range records {
		if r.ID == id {
			records = append(records[:i], records[i+1:]...)
			return s.writeAll(ctx, records)
		}
	}
	return nil
}

func (s *RedisStore) SaveSession(ctx context.Context, state SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisSessionKey, data, 0).Err()
}

func (s *RedisStore) LoadSession(ctx context.Context) (SessionState, bool, error) {
	data, err := s.client.Get(ctx, redisSessionKey).Bytes()
	if errors.Is(err, redis.Nil) {
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

func (s *RedisStore) ClearSession(ctx context.Context) error {
	return s.client.Del(ctx, redisSessionKey).Err()
}
