// Package window tracks the set of cells that should be materialized for
// rendering around the player. The visible set is derived state: it is
// recomputed on every movement event and never persisted. Leaving the window
// releases rendering resources only; it never touches the cell store.
package window

import (
	"sort"

	"cachecraft.gg/internal/sim/grid/mathx"
	"cachecraft.gg/internal/sim/grid/store"
)

// Compute returns the square window of cells within Chebyshev distance
// radius of center: exactly (2r+1)^2 keys.
func Compute(center store.Key, radius int) map[store.Key]struct{} {
	if radius < 0 {
		radius = 0
	}
	out := make(map[store.Key]struct{}, (2*radius+1)*(2*radius+1))
	for di := -radius; di <= radius; di++ {
		for dj := -radius; dj <= radius; dj++ {
			out[store.Key{I: center.I + di, J: center.J + dj}] = struct{}{}
		}
	}
	return out
}

// Manager diffs successive windows so the rendering surface only hears about
// cells that actually entered or left.
type Manager struct {
	Radius  int
	visible map[store.Key]struct{}
}

func NewManager(radius int) *Manager {
	return &Manager{
		Radius:  radius,
		visible: map[store.Key]struct{}{},
	}
}

// Recenter recomputes the window around center and returns the keys that
// entered and left, each in deterministic order.
func (m *Manager) Recenter(center store.Key) (entered, left []store.Key) {
	next := Compute(center, m.Radius)
	for k := range next {
		if _, ok := m.visible[k]; !ok {
			entered = append(entered, k)
		}
	}
	for k := range m.visible {
		if _, ok := next[k]; !ok {
			left = append(left, k)
		}
	}
	m.visible = next
	sortKeys(entered)
	sortKeys(left)
	return entered, left
}

// Drop empties the window, returning every previously visible key in
// deterministic order. Used on restart before re-centering on the new origin.
func (m *Manager) Drop() []store.Key {
	left := make([]store.Key, 0, len(m.visible))
	for k := range m.visible {
		left = append(left, k)
	}
	m.visible = map[store.Key]struct{}{}
	sortKeys(left)
	return left
}

func (m *Manager) Contains(k store.Key) bool {
	_, ok := m.visible[k]
	return ok
}

func (m *Manager) Size() int { return len(m.visible) }

// CanInteract applies the (smaller) interact range: Chebyshev distance from
// the player's cell must not exceed interactRadius.
func CanInteract(k, playerCell store.Key, interactRadius int) bool {
	return mathx.Chebyshev(k.I, k.J, playerCell.I, playerCell.J) <= interactRadius
}

func sortKeys(keys []store.Key) {
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].I != keys[b].I {
			return keys[a].I < keys[b].I
		}
		return keys[a].J < keys[b].J
	})
}
