package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"ergotree.dev/sigmachain/serialization"
)

// Sessions is an in-process, in-memory registry of open ConstantStore
// handles: cmd/sigmatrace uses it to batch several build/prove/verify
// calls within one run without threading a *serialization.ConstantStore
// argument through every function, while still giving each open handle an
// opaque, loggable id rather than a bare pointer. Nothing here is
// persisted; it does not survive process exit.
type Sessions struct {
	mu      sync.Mutex
	handles map[uuid.UUID]*serialization.ConstantStore
}

// NewSessions returns an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{handles: make(map[uuid.UUID]*serialization.ConstantStore)}
}

// Open registers a fresh ConstantStore and returns its handle id.
func (s *Sessions) Open() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.handles[id] = serialization.NewConstantStore()
	return id
}

// Get returns the ConstantStore behind id, if the handle is still open.
func (s *Sessions) Get(id uuid.UUID) (*serialization.ConstantStore, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.handles[id]
	return cs, ok
}

// Close discards the handle. Closing an id that is not open is an error,
// since it usually means a double-close bug in the caller.
func (s *Sessions) Close(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handles[id]; !ok {
		return fmt.Errorf("store: session %s not open", id)
	}
	delete(s.handles, id)
	return nil
}

// Len reports the number of currently open handles.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}
