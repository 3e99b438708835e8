// Package store persists table snapshots on the local device.
//
// Only the schema and the rows are saved. Selection, drafts, pending
// confirmations and the view are transient and never reach the store.
package store

import (
	"context"
	"errors"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// ErrNoSnapshot is returned by Load when nothing was saved under a name.
var ErrNoSnapshot = errors.New("no snapshot saved")

// Store saves and loads named snapshots.
type Store interface {
	Save(ctx context.Context, name string, snap core.Snapshot) error
	Load(ctx context.Context, name string) (core.Snapshot, error)
}
