package game

import "context"

// Store persists whole snapshots. Load returns ErrNoSnapshot when nothing
// has been saved yet.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}
