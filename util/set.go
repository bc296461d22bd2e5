package util

import "sync"

// Set is a concurrency-safe membership set.
type Set[T comparable] struct {
	mu      sync.RWMutex
	members map[T]struct{}
}

// NewSet creates an empty set.
func NewSet[T comparable]() *Set[T] {
	return &Set[T]{members: make(map[T]struct{})}
}

// Add inserts a member.
func (s *Set[T]) Add(member T) {
	s.mu.Lock()
	s.members[member] = struct{}{}
	s.mu.Unlock()
}

// Remove drops a member.
func (s *Set[T]) Remove(member T) {
	s.mu.Lock()
	delete(s.members, member)
	s.mu.Unlock()
}

// Has reports membership.
func (s *Set[T]) Has(member T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[member]
	return ok
}

// Len returns the member count.
func (s *Set[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}
