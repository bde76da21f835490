package path

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookups and updates on ids the store does
// not hold. Deletes on unknown ids are no-ops instead.
var ErrNotFound = errors.New("path not found")

// Store is the durable collection of finalized records plus a single
// slot for the in-progress session checkpoint. Mutations persist before
// returning; reads reflect the most recently completed write.
type Store interface {
	Paths(ctx context.Context) ([]Record, error)
	PathFor(ctx context.Context, id string) (Record, error)
	SavePath(ctx context.Context, record Record) error
	UpdatePath(ctx context.Context, record Record) error
	DeletePath(ctx context.Context, id string) error

	SaveSession(ctx context.Context, state SessionState) error
	LoadSession(ctx context.Context) (SessionState, bool, error)
	ClearSession(ctx context.Context) error
}
