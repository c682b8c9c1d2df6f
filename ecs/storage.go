package ecs

// Store tracks entity generations and free ids.
type Store struct {
	gen  []generation
	free []entityID
	live int
}

// NewStore creates an empty entity store.
func NewStore() *Store {
	return &Store{}
}

// Create allocates a new entity, reusing freed slots with a bumped generation.
func (s *Store) Create() Entity {
	if s == nil {
		return Null
	}
	var id entityID
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.gen = append(s.gen, 0)
		id = entityID(len(s.gen))
	}
	s.live++
	return makeEntity(id, s.gen[id-1])
}

// Destroy invalidates e. It returns false for stale or unknown handles.
func (s *Store) Destroy(e Entity) bool {
	if !s.IsAlive(e) {
		return false
	}
	idx := e.id() - 1
	s.gen[idx]++
	s.free = append(s.free, e.id())
	s.live--
	return true
}

// IsAlive reports whether an entity handle is valid.
func (s *Store) IsAlive(e Entity) bool {
	if s == nil || !e.Valid() || int(e.id()) > len(s.gen) {
		return false
	}
	return s.gen[e.id()-1] == e.generation()
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return s.live
}
