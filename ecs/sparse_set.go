package ecs

// SparseSet is a cache-friendly storage for components keyed by Entity id.
// Iteration order is insertion order until a removal swaps the last element
// into the freed slot.
type SparseSet[T any] struct {
	denseEntities []Entity
	denseValues   []T
	sparse        []int
}

// NewSparseSet creates an empty set.
func NewSparseSet[T any]() *SparseSet[T] {
	return &SparseSet[T]{}
}

// Has returns true if the entity exists in the set. A stale handle to a
// recycled slot is not present.
func (s *SparseSet[T]) Has(e Entity) bool {
	if s == nil || !e.Valid() || int(e.id())-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[e.id()-1]
	return idx >= 0 && idx < len(s.denseEntities) && s.denseEntities[idx] == e
}

// Get returns the component for e.
func (s *SparseSet[T]) Get(e Entity) (T, bool) {
	var zero T
	if !s.Has(e) {
		return zero, false
	}
	return s.denseValues[s.sparse[e.id()-1]], true
}

// Ref returns a pointer to the stored component, valid until the next Set
// or Remove.
func (s *SparseSet[T]) Ref(e Entity) *T {
	if !s.Has(e) {
		return nil
	}
	return &s.denseValues[s.sparse[e.id()-1]]
}

// Set inserts or updates a component for e.
func (s *SparseSet[T]) Set(e Entity, v T) {
	if s == nil || !e.Valid() {
		return
	}
	id := int(e.id())
	for id-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.Has(e) {
		s.denseValues[s.sparse[id-1]] = v
		return
	}
	if idx := s.sparse[id-1]; idx >= 0 && idx < len(s.denseEntities) && s.denseEntities[idx].id() == e.id() {
		// older generation still stored in this slot
		s.denseEntities[idx] = e
		s.denseValues[idx] = v
		return
	}
	s.denseEntities = append(s.denseEntities, e)
	s.denseValues = append(s.denseValues, v)
	s.sparse[id-1] = len(s.denseEntities) - 1
}

// Remove deletes the component for e if present.
func (s *SparseSet[T]) Remove(e Entity) bool {
	if s == nil || !s.Has(e) {
		return false
	}
	idx := s.sparse[e.id()-1]
	last := len(s.denseEntities) - 1
	lastEnt := s.denseEntities[last]

	s.denseEntities[idx] = lastEnt
	s.denseValues[idx] = s.denseValues[last]
	s.sparse[lastEnt.id()-1] = idx

	var zero T
	s.denseValues[last] = zero
	s.denseEntities = s.denseEntities[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[e.id()-1] = -1
	return true
}

// Len returns the number of stored components.
func (s *SparseSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.denseEntities)
}

// Entities returns the dense entity list. Callers must not modify it.
func (s *SparseSet[T]) Entities() []Entity {
	if s == nil {
		return nil
	}
	return s.denseEntities
}

// Each calls fn for every component in dense order. fn must not add or
// remove entries.
func (s *SparseSet[T]) Each(fn func(e Entity, v *T)) {
	if s == nil || fn == nil {
		return
	}
	for i := range s.denseEntities {
		fn(s.denseEntities[i], &s.denseValues[i])
	}
}
