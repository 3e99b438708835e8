package web

import (
	"sync"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// Session owns the table served over HTTP. core.Table holds no locks, so
// every request goes through Read or Write and sees a consistent state.
type Session struct {
	mu    sync.Mutex
	table *core.Table
	name  string
}

// NewSession wraps table. name labels exports and logs.
func NewSession(name string, table *core.Table) *Session {
	return &Session{table: table, name: name}
}

// Name returns the session's table name.
func (s *Session) Name() string { return s.name }

// Write runs fn with exclusive access to the table.
func (s *Session) Write(fn func(t *core.Table) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.table)
}

// Read runs fn with exclusive access. Query methods on core.Table do not
// mutate, but view state shares storage with the table so reads still lock.
func (s *Session) Read(fn func(t *core.Table)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.table)
}

// Snapshot returns the persistable state. It is the autosaver's source.
func (s *Session) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Snapshot()
}
