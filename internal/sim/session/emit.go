package session

import (
	"encoding/json"

	"cachecraft.gg/internal/protocol"
	"cachecraft.gg/internal/sim/geo"
	"cachecraft.gg/internal/sim/grid/store"
)

// The emit helpers are the single choke point between the core and its
// observers: the injected Surface hears every notification, and every
// attached client gets the equivalent protocol message.

func (s *Session) emitMaterialized(k store.Key, token uint16) {
	sw, ne := geo.Bounds(k, s.origin, s.cfg.CellSizeDeg)
	s.surface.OnCellMaterialized(k, token, sw, ne)
	s.broadcast(protocol.CellMsg{
		Type: protocol.TypeCell,
		I:    k.I, J: k.J,
		Token: token,
		SWLat: sw.Lat, SWLng: sw.Lng,
		NELat: ne.Lat, NELng: ne.Lng,
	})
}

func (s *Session) emitChanged(k store.Key, token uint16) {
	s.surface.OnCellContentChanged(k, token)
	s.broadcast(protocol.CellMsg{
		Type: protocol.TypeCell,
		I:    k.I, J: k.J,
		Token: token,
	})
}

func (s *Session) emitReleased(k store.Key) {
	s.surface.OnCellReleased(k)
	s.broadcast(protocol.CellMsg{
		Type: protocol.TypeCell,
		I:    k.I, J: k.J,
		Released: true,
	})
}

func (s *Session) emitRejected(k store.Key, code string) {
	s.surface.OnInteractionRejected(k, code)
	s.broadcast(protocol.RejectMsg{
		Type: protocol.TypeReject,
		I:    k.I, J: k.J,
		Code: code,
	})
}

func (s *Session) emitPlayer() {
	s.broadcast(s.PlayerMsg())
}

// PlayerMsg builds the full player state message.
func (s *Session) PlayerMsg() protocol.PlayerMsg {
	cell := s.PlayerCell()
	return protocol.PlayerMsg{
		Type:  protocol.TypePlayer,
		Lat:   s.pos.Lat,
		Lng:   s.pos.Lng,
		CellI: cell.I,
		CellJ: cell.J,
		Held:  s.held,
		Score: s.score,
		Won:   s.won,
	}
}

func (s *Session) broadcast(v any) {
	if len(s.clients) == 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	for _, out := range s.clients {
		sendLatest(out, b)
	}
}

// sendLatest drops the oldest queued message when a client's channel is
// full, so a slow client degrades instead of stalling the session.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
