package session

import (
	"cachecraft.gg/internal/protocol"
	"cachecraft.gg/internal/sim/grid/store"
	"cachecraft.gg/internal/sim/window"
)

// HandleInteract runs the pickup/place/craft transition for a cell. Rejected
// interactions change no state and surface as feedback, never as errors.
func (s *Session) HandleInteract(k store.Key) {
	if s.won {
		s.emitRejected(k, protocol.ErrSessionWon)
		return
	}
	if !window.CanInteract(k, s.PlayerCell(), s.cfg.InteractRadius) {
		s.emitRejected(k, protocol.ErrOutOfRange)
		return
	}

	cell := s.cells.Read(k)
	switch {
	case s.held == store.Empty && cell == store.Empty:
		// Nothing in hand, nothing in cell.
		return

	case s.held == store.Empty:
		// Pick up.
		s.held = cell
		s.cells.Write(k, store.Empty)
		s.score += s.cfg.PickupScore
		s.emitChanged(k, store.Empty)
		s.journalEntry("PICKUP", k, cell)

	case cell == store.Empty:
		// Place.
		s.cells.Write(k, s.held)
		placed := s.held
		s.held = store.Empty
		s.emitChanged(k, placed)
		s.journalEntry("PLACE", k, placed)

	case s.held == cell:
		// Craft: the merged token goes to the hand, not the cell.
		s.cells.Write(k, store.Empty)
		s.held = 2 * s.held
		s.score += s.cfg.CraftScore
		s.emitChanged(k, store.Empty)
		s.journalEntry("CRAFT", k, s.held)

	default:
		s.emitRejected(k, protocol.ErrMismatch)
		return
	}

	if int(s.held) >= s.cfg.VictoryThreshold {
		s.won = true
	}
	s.emitPlayer()
}
