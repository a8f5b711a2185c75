package chunk

import "github.com/brentp/intintmap"

// DirtySet is the per-tick "chunk_cache" set: the set of chunk coordinates
// touched by re-meshing or re-lighting during a single OnUpdate call.
// Membership is backed by intintmap, an open-addressing int64->int64 map
// keyed by the packed chunk Pos; insertion order is kept separately so the
// set can be snapshotted without depending on map iteration helpers.
type DirtySet struct {
	seen  *intintmap.Map
	order []Pos
}

// NewDirtySet creates an empty DirtySet with room for roughly sizeHint
// entries before it needs to grow.
func NewDirtySet(sizeHint int) *DirtySet {
	if sizeHint <= 0 {
		sizeHint = 16
	}
	return &DirtySet{
		seen:  intintmap.New(sizeHint, 0.6),
		order: make([]Pos, 0, sizeHint),
	}
}

// Insert adds pos to the set if it is not already present.
func (s *DirtySet) Insert(pos Pos) {
	key := pos.Pack()
	if _, ok := s.seen.Get(key); ok {
		return
	}
	s.seen.Put(key, 1)
	s.order = append(s.order, pos)
}

// Snapshot returns every Pos currently in the set, in insertion order.
func (s *DirtySet) Snapshot() []Pos {
	out := make([]Pos, len(s.order))
	copy(out, s.order)
	return out
}

// Clear empties the set in place, ready for reuse on the next OnUpdate
// call.
func (s *DirtySet) Clear() {
	s.seen = intintmap.New(16, 0.6)
	s.order = s.order[:0]
}
