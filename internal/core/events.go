package core

import (
	"context"
	"fmt"
	"time"

	"github.com/asaidimu/go-events"
)

// ChangeKind names what a mutation changed.
type ChangeKind string

const (
	ChangeRowAdded       ChangeKind = "row.added"
	ChangeRowUpdated     ChangeKind = "row.updated"
	ChangeRowsDeleted    ChangeKind = "rows.deleted"
	ChangeRowsReplaced   ChangeKind = "rows.replaced"
	ChangeColumnAdded    ChangeKind = "column.added"
	ChangeColumnUpdated  ChangeKind = "column.updated"
	ChangeColumnDeleted  ChangeKind = "column.deleted"
	ChangeColumnsReorder ChangeKind = "columns.reordered"
	ChangeRestored       ChangeKind = "table.restored"
)

// AllChangeKinds lists every kind a Table publishes.
var AllChangeKinds = []ChangeKind{
	ChangeRowAdded, ChangeRowUpdated, ChangeRowsDeleted, ChangeRowsReplaced,
	ChangeColumnAdded, ChangeColumnUpdated, ChangeColumnDeleted,
	ChangeColumnsReorder, ChangeRestored,
}

// ChangeEvent describes one successful mutation of persisted state.
// Selection, editing and view changes are not published.
type ChangeEvent struct {
	Kind      ChangeKind `json:"kind"`
	IDs       []string   `json:"ids,omitempty"` // affected row or column ids
	Rows      int        `json:"rows"`          // row count after the change
	Columns   int        `json:"columns"`       // column count after the change
	Timestamp time.Time  `json:"timestamp"`
}

// Publisher receives change events from a Table.
type Publisher interface {
	Publish(ChangeEvent)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ChangeEvent)

func (f PublisherFunc) Publish(e ChangeEvent) { f(e) }

// EventBus is a Publisher backed by a typed event bus. Subscribers are
// invoked by the bus, possibly on another goroutine.
type EventBus struct {
	bus *events.TypedEventBus[ChangeEvent]
}

// NewEventBus creates a bus with the library defaults.
func NewEventBus() (*EventBus, error) {
	bus, err := events.NewTypedEventBus[ChangeEvent](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}
	return &EventBus{bus: bus}, nil
}

// Publish emits e under its kind.
func (b *EventBus) Publish(e ChangeEvent) {
	b.bus.Emit(string(e.Kind), e)
}

// Subscribe registers fn for one kind and returns the unsubscribe func.
func (b *EventBus) Subscribe(kind ChangeKind, fn func(context.Context, ChangeEvent) error) func() {
	return b.bus.Subscribe(string(kind), fn)
}

// SubscribeAll registers fn for every kind.
func (b *EventBus) SubscribeAll(fn func(context.Context, ChangeEvent) error) func() {
	unsubs := make([]func(), 0, len(AllChangeKinds))
	for _, k := range AllChangeKinds {
		unsubs = append(unsubs, b.Subscribe(k, fn))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
