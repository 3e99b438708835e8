package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// DefaultAutosaveInterval bounds how often the autosaver writes.
const DefaultAutosaveInterval = 2 * time.Second

// finalFlushTimeout bounds the save done after Run's context ends.
const finalFlushTimeout = 5 * time.Second

// Autosaver coalesces change notifications and saves the current snapshot
// at most once per interval.
type Autosaver struct {
	store    Store
	name     string
	source   func() core.Snapshot
	interval time.Duration
	logger   *slog.Logger
	dirty    chan struct{}
}

// NewAutosaver saves source() under name whenever it has been notified.
// A non-positive interval uses DefaultAutosaveInterval.
func NewAutosaver(st Store, name string, source func() core.Snapshot, interval time.Duration, logger *slog.Logger) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Autosaver{
		store:    st,
		name:     name,
		source:   source,
		interval: interval,
		logger:   logger.With("component", "autosave", "snapshot", name),
		dirty:    make(chan struct{}, 1),
	}
}

// Notify marks the table dirty. It never blocks.
func (a *Autosaver) Notify() {
	select {
	case a.dirty <- struct{}{}:
	default:
	}
}

// Publish lets the autosaver stand in as a table's core.Publisher.
func (a *Autosaver) Publish(core.ChangeEvent) { a.Notify() }

// Attach subscribes to every change kind on bus and returns the
// unsubscribe func.
func (a *Autosaver) Attach(bus *core.EventBus) func() {
	return bus.SubscribeAll(func(_ context.Context, e core.ChangeEvent) error {
		a.logger.Debug("change observed", "kind", e.Kind, "rows", e.Rows)
		a.Notify()
		return nil
	})
}

// Run saves pending changes every interval until ctx ends, then performs a
// final flush. Save failures are logged and retried on the next tick; only
// the final flush error is returned.
func (a *Autosaver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			select {
			case <-a.dirty:
				pending = true
			default:
			}
			if !pending {
				return nil
			}
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
			defer cancel()
			if err := a.flush(flushCtx); err != nil {
				return fmt.Errorf("final autosave: %w", err)
			}
			return nil

		case <-a.dirty:
			pending = true

		case <-ticker.C:
			if !pending {
				continue
			}
			if err := a.flush(ctx); err != nil {
				a.logger.Error("autosave failed", "error", err)
				continue
			}
			pending = false
		}
	}
}

func (a *Autosaver) flush(ctx context.Context) error {
	return a.store.Save(ctx, a.name, a.source())
}
