// Package store is the mutable core of the world: a map from touched cell
// coordinates to their decided token content. A coordinate absent from the map
// is "undecided" and will be generated deterministically on first access;
// once present it is never regenerated and never evicted. Memory is bounded by
// the number of cells the player has ever observed or changed, not by world
// size.
package store

import (
	"sort"

	"cachecraft.gg/internal/sim/grid/gen"
)

// Key identifies a cell relative to the session origin.
type Key struct {
	I int
	J int
}

// Empty is the token value of a cell with no token.
const Empty uint16 = 0

type CellStore struct {
	Gen   gen.Gen
	Cells map[Key]uint16
}

func New(g gen.Gen) *CellStore {
	return &CellStore{
		Gen:   g,
		Cells: map[Key]uint16{},
	}
}

// Read returns the cell's token, deciding it via the generator on first
// access. After Read the key is always present in the map.
func (s *CellStore) Read(k Key) uint16 {
	if v, ok := s.Cells[k]; ok {
		return v
	}
	v := s.Gen.TokenAt(k.I, k.J)
	s.Cells[k] = v
	return v
}

// Write unconditionally decides the cell. Pickup and craft write Empty; place
// writes the held value.
func (s *CellStore) Write(k Key, v uint16) {
	s.Cells[k] = v
}

// Decided reports whether the cell has been touched, without deciding it.
func (s *CellStore) Decided(k Key) bool {
	_, ok := s.Cells[k]
	return ok
}

func (s *CellStore) Len() int { return len(s.Cells) }

// Clear drops every decided cell. Only the restart path calls this; it is the
// one operation allowed to forget player changes.
func (s *CellStore) Clear() {
	s.Cells = map[Key]uint16{}
}

// DecidedKeys returns touched coordinates in deterministic order, for
// snapshot export and state digests.
func (s *CellStore) DecidedKeys() []Key {
	keys := make([]Key, 0, len(s.Cells))
	for k := range s.Cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].I != keys[b].I {
			return keys[a].I < keys[b].I
		}
		return keys[a].J < keys[b].J
	})
	return keys
}
