package server

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/ladderquiz/internal/session"
)

// ErrSessionNotFound is returned for ids the registry does not hold.
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	mu    sync.Mutex
	state session.State
}

// Registry holds live sessions in memory. Operations on one session are
// serialized by that session's lock; different sessions proceed in parallel.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*entry)}
}

// NewID returns a fresh opaque session id.
func NewID() string {
	return uuid.NewString()
}

// Put stores s under id, replacing any existing session.
func (r *Registry) Put(id string, s session.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &entry{state: s}
}

// Get returns a snapshot of the session.
func (r *Registry) Get(id string) (session.State, error) {
	e, ok := r.lookup(id)
	if !ok {
		return session.State{}, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, nil
}

// Update runs fn with exclusive access to the session and stores the state
// it returns. When fn fails the stored state is left as it was.
func (r *Registry) Update(id string, fn func(session.State) (session.State, error)) error {
	e, ok := r.lookup(id)
	if !ok {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.state)
	if err != nil {
		return err
	}
	e.state = next
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) lookup(id string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	return e, ok
}
