package board

import "sync"

// Store holds the current board snapshot. Commands run one at a time under
// the store's lock and each replaces the whole snapshot, so readers only ever
// see complete states. The store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	current  Board
	revision uint64
}

// NewStore creates a store holding initial.
func NewStore(initial Board) *Store {
	if initial.ExpandedCards == nil {
		initial.ExpandedCards = map[ID]bool{}
	}
	return &Store{current: initial}
}

// Current returns the latest snapshot.
func (s *Store) Current() Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Revision counts the snapshots committed since the store was created.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Snapshot returns the latest board together with its revision.
func (s *Store) Snapshot() (Board, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.revision
}

// Apply runs cmd against the current board and commits its result.
// The committed board is returned.
func (s *Store) Apply(cmd func(Board) Board) Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = cmd(s.current)
	s.revision++
	return s.current
}

// Replace swaps the whole board, as done by load and import.
func (s *Store) Replace(b Board) {
	if b.ExpandedCards == nil {
		b.ExpandedCards = map[ID]bool{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = b
	s.revision++
}
