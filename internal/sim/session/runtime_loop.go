package session

import (
	"context"
	"fmt"
	"time"

	"cachecraft.gg/internal/protocol"
	"cachecraft.gg/internal/sim/geo"
	"cachecraft.gg/internal/sim/grid/gen"
	"cachecraft.gg/internal/sim/grid/store"
)

// ActEnvelope carries one client action into the session goroutine.
type ActEnvelope struct {
	ClientID string
	Act      protocol.ActMsg
}

// AttachRequest registers a client output channel. The response carries
// everything the transport writes before it starts pumping the channel: the
// welcome, the current window, and the player state.
type AttachRequest struct {
	Name string
	Out  chan []byte
	Resp chan AttachResponse
}

type AttachResponse struct {
	ClientID string
	Welcome  protocol.WelcomeMsg
	Cells    []protocol.CellMsg
	Player   protocol.PlayerMsg
}

type saveReq struct {
	resp chan saveResp
}

type saveResp struct {
	tick uint64
	err  error
}

func (s *Session) Acts() chan<- ActEnvelope { return s.acts }
func (s *Session) Attach() chan<- AttachRequest { return s.attach }
func (s *Session) Detach() chan<- string { return s.detach }

// RequestSave asks the session goroutine to emit a snapshot to the sink and
// waits for it to be taken.
func (s *Session) RequestSave(ctx context.Context) (uint64, error) {
	req := saveReq{resp: make(chan saveResp, 1)}
	select {
	case s.saveReq <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case r := <-req.resp:
		return r.tick, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Run drives the session: acts are queued as they arrive and applied in
// order on the next tick, so every operation runs to completion before the
// next one starts.
func (s *Session) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(s.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []ActEnvelope

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.attach:
			s.handleAttach(req)
		case id := <-s.detach:
			delete(s.clients, id)
		case req := <-s.saveReq:
			req.resp <- saveResp{tick: s.tick.Load(), err: s.emitSnapshot()}
		case env := <-s.acts:
			pending = append(pending, env)
		case <-ticker.C:
			s.step(pending)
			pending = pending[:0]
		}
	}
}

func (s *Session) Stop() { close(s.stop) }

func (s *Session) step(pending []ActEnvelope) {
	started := time.Now()
	tick := s.tick.Add(1)

	for _, env := range pending {
		s.applyAct(env.Act)
	}

	if s.cfg.AutosaveEveryTicks > 0 && tick%uint64(s.cfg.AutosaveEveryTicks) == 0 {
		_ = s.emitSnapshot()
	}

	s.publishMetrics(tick, len(pending), time.Since(started))
}

func (s *Session) applyAct(act protocol.ActMsg) {
	switch act.Kind {
	case protocol.ActStep:
		s.HandleStep(act.DI, act.DJ)
	case protocol.ActPosition:
		s.HandlePosition(geo.LatLng{Lat: act.Lat, Lng: act.Lng})
	case protocol.ActInteract:
		s.HandleInteract(store.Key{I: act.I, J: act.J})
	case protocol.ActRestart:
		s.HandleRestart()
	default:
		s.emitRejected(store.Key{I: act.I, J: act.J}, protocol.ErrBadRequest)
	}
}

func (s *Session) handleAttach(req AttachRequest) {
	id := fmt.Sprintf("C%06d", len(s.clients)+1)
	for {
		if _, taken := s.clients[id]; !taken {
			break
		}
		id = id + "x"
	}
	s.clients[id] = req.Out

	resp := AttachResponse{
		ClientID: id,
		Welcome: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			ClientID:        id,
			SessionParams:   s.SessionParams(),
			Player:          s.PlayerMsg(),
		},
		Cells:  s.visibleCellMsgs(),
		Player: s.PlayerMsg(),
	}
	req.Resp <- resp
}

// visibleCellMsgs dumps the current window for a newly attached client.
func (s *Session) visibleCellMsgs() []protocol.CellMsg {
	center := s.PlayerCell()
	r := s.cfg.RenderRadius
	out := make([]protocol.CellMsg, 0, (2*r+1)*(2*r+1))
	for di := -r; di <= r; di++ {
		for dj := -r; dj <= r; dj++ {
			k := store.Key{I: center.I + di, J: center.J + dj}
			sw, ne := geo.Bounds(k, s.origin, s.cfg.CellSizeDeg)
			out = append(out, protocol.CellMsg{
				Type: protocol.TypeCell,
				I:    k.I, J: k.J,
				Token: s.cells.Read(k),
				SWLat: sw.Lat, SWLng: sw.Lng,
				NELat: ne.Lat, NELng: ne.Lng,
			})
		}
	}
	return out
}

func (s *Session) SessionParams() protocol.SessionParams {
	return protocol.SessionParams{
		Seed:             s.cfg.Seed,
		CellSizeDeg:      s.cfg.CellSizeDeg,
		RenderRadius:     s.cfg.RenderRadius,
		InteractRadius:   s.cfg.InteractRadius,
		SpawnPermille:    s.cfg.SpawnPermille,
		TokenSpreadK:     gen.TokenSpreadK,
		VictoryThreshold: s.cfg.VictoryThreshold,
		OriginLat:        s.origin.Lat,
		OriginLng:        s.origin.Lng,
	}
}

func (s *Session) emitSnapshot() error {
	if s.snapSink == nil {
		return nil
	}
	env := SnapshotEnvelope{Tick: s.tick.Load(), Snap: s.ExportSnapshot()}
	select {
	case s.snapSink <- env:
		return nil
	default:
		return fmt.Errorf("snapshot sink full")
	}
}
