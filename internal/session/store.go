package session

import (
	"sync"
	"time"
)

// Store is the in-memory registry of live sessions. Each session carries its
// own mutex, so mutations to one session are strictly serialized while
// unrelated sessions proceed in parallel; the registry lock only guards the
// map itself.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	// onCommit, when set, is invoked with the post-mutation snapshot while
	// the session lock is still held. Commit order therefore equals hook
	// order, which is what lets the broadcast layer emit updates in commit
	// order without extra synchronization. The hook must not block and must
	// not call back into the Store.
	onCommit func(snap *GameInstance)
}

type entry struct {
	mu   sync.Mutex
	inst *GameInstance
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// SetCommitHook registers the commit observer. Set once at wiring time,
// before any traffic.
func (s *Store) SetCommitHook(fn func(snap *GameInstance)) {
	s.onCommit = fn
}

// Put registers a freshly created instance. The id must be unused.
func (s *Store) Put(inst *GameInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[inst.ID] = &entry{inst: inst}
}

// Get returns a snapshot of the session, or ErrSessionNotFound.
func (s *Store) Get(id string) (*GameInstance, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inst.Snapshot(), nil
}

// Mutate runs fn against the live instance under the session's lock. This is
// the only sanctioned write path. If fn returns an error the instance must be
// left untouched and nothing is committed or observed; on success the commit
// hook fires and the new snapshot is returned.
func (s *Store) Mutate(id string, fn func(inst *GameInstance) error) (*GameInstance, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(e.inst); err != nil {
		return nil, err
	}
	e.inst.UpdatedAt = time.Now()

	snap := e.inst.Snapshot()
	if s.onCommit != nil {
		s.onCommit(snap)
	}
	return snap, nil
}

// List returns snapshots of every live session. The listing is taken session
// by session, so it may interleave with in-flight mutations; that staleness
// is fine for directory display.
func (s *Store) List() []*GameInstance {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*GameInstance, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.inst.Snapshot())
		e.mu.Unlock()
	}
	return out
}

// Delete evicts a session from the registry. In-flight Mutate calls that
// already resolved the entry still complete against it; new lookups miss.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
