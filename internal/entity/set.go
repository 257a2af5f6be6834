package entity

import "sort"

// Set owns the live entity collection and the id counter. Removal is
// deferred to the tick boundary so every system within a tick observes a
// consistent entity population.
type Set struct {
	byID   map[ID]*Entity
	nextID ID
}

// NewSet returns an empty entity set.
func NewSet() *Set {
	return &Set{byID: make(map[ID]*Entity)}
}

// NextID allocates a fresh identifier. IDs are never reused.
func (s *Set) NextID() ID {
	s.nextID++
	return s.nextID
}

// Insert registers an entity. The entity must have been constructed through
// New so its fields are already validated.
func (s *Set) Insert(e *Entity) {
	if e == nil {
		return
	}
	s.byID[e.ID] = e
}

// Get returns the entity with the given id, or nil.
func (s *Set) Get(id ID) *Entity {
	return s.byID[id]
}

// Len returns the number of tracked entities.
func (s *Set) Len() int {
	return len(s.byID)
}

// Ordered returns the live entities sorted by id. Iteration order over a map
// is randomized, so every per-tick pass that mutates state walks this slice
// to keep the simulation reproducible.
func (s *Set) Ordered() []*Entity {
	ordered := make([]*Entity, 0, len(s.byID))
	for _, e := range s.byID {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	return ordered
}

// CountKind returns how many live entities of the given kind exist.
func (s *Set) CountKind(kind Kind) int {
	count := 0
	for _, e := range s.byID {
		if e.Alive && e.Kind == kind {
			count++
		}
	}
	return count
}

// Prune removes dead entities and returns them, in id order. Called exactly
// once per tick, at the boundary.
func (s *Set) Prune() []*Entity {
	var removed []*Entity
	for id, e := range s.byID {
		if !e.Alive {
			removed = append(removed, e)
			delete(s.byID, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].ID < removed[j].ID })
	return removed
}
