package cart

import "sync"

// Store keeps one cart per user for the lifetime of the session. It is an
// explicit state container constructed at service start; Drop tears a user's
// cart down at logout.
type Store struct {
	mu    sync.Mutex
	carts map[int64]*Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[int64]*Cart)}
}

// With runs fn while holding the store lock, so handler read-modify-write
// sequences on a cart are atomic with respect to each other.
func (s *Store) With(userID int64, fn func(*Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		c = &Cart{}
		s.carts[userID] = c
	}
	fn(c)
}

// Snapshot returns a copy of the user's cart safe to use outside the lock.
func (s *Store) Snapshot(userID int64) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return Cart{}
	}
	snap := *c
	snap.Lines = append([]Line(nil), c.Lines...)
	return snap
}

// Drop discards the user's cart entirely.
func (s *Store) Drop(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}
