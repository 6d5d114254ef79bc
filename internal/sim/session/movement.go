package session

import (
	"cachecraft.gg/internal/sim/geo"
	"cachecraft.gg/internal/sim/grid/store"
)

// HandleStep applies a discrete movement vector in cell units. The player
// lands on the center of the target cell rather than accumulating raw deltas,
// so a long walk can never drift across a cell boundary through float error.
func (s *Session) HandleStep(di, dj int) {
	if s.won {
		return
	}
	cur := s.PlayerCell()
	next := store.Key{I: cur.I + di, J: cur.J + dj}
	s.pos = geo.Center(next, s.origin, s.cfg.CellSizeDeg)
	s.refreshWindow()
}

// HandlePosition applies a continuous real-world fix from the movement
// source.
func (s *Session) HandlePosition(p geo.LatLng) {
	if s.won {
		return
	}
	s.pos = p
	s.refreshWindow()
}

// refreshWindow recomputes the visible window around the player's cell and
// notifies the surface about the diff. Cells entering the window are read
// (and therefore decided) by the store; cells leaving only release rendering
// resources, the store keeps them.
func (s *Session) refreshWindow() {
	entered, left := s.win.Recenter(s.PlayerCell())
	for _, k := range left {
		s.emitReleased(k)
	}
	for _, k := range entered {
		s.emitMaterialized(k, s.cells.Read(k))
	}
	s.emitPlayer()
}
