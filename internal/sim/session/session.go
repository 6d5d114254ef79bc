// Package session owns the whole game state: the cell store, the visible
// window, the player (position, held token, score), and the won flag. All
// mutation happens on one goroutine; movement and interaction events are
// applied strictly in arrival order, and each one runs to completion before
// the next is looked at.
package session

import (
	"sync/atomic"

	"cachecraft.gg/internal/sim/geo"
	"cachecraft.gg/internal/sim/grid/gen"
	"cachecraft.gg/internal/sim/grid/store"
	"cachecraft.gg/internal/sim/window"
)

type Session struct {
	cfg Config

	cells *store.CellStore
	win   *window.Manager

	origin geo.LatLng
	pos    geo.LatLng
	held   uint16
	score  int
	won    bool

	tick    atomic.Uint64
	metrics atomic.Pointer[Metrics]

	surface Surface
	journal Journal

	clients map[string]chan []byte

	acts    chan ActEnvelope
	attach  chan AttachRequest
	detach  chan string
	saveReq chan saveReq
	stop    chan struct{}

	snapSink chan<- SnapshotEnvelope
}

// New starts a fresh session anchored at origin: empty hand, zero score,
// untouched world. The initial window is centered on the origin cell.
func New(cfg Config) *Session {
	cfg.applyDefaults()
	s := &Session{
		cfg: cfg,
		cells: store.New(gen.Gen{
			Seed:          cfg.Seed,
			SpawnPermille: cfg.SpawnPermille,
		}),
		win:     window.NewManager(cfg.RenderRadius),
		origin:  cfg.Origin,
		pos:     cfg.Origin,
		surface: nopSurface{},
		clients: map[string]chan []byte{},
		acts:    make(chan ActEnvelope, 256),
		attach:  make(chan AttachRequest, 8),
		detach:  make(chan string, 8),
		saveReq: make(chan saveReq, 2),
		stop:    make(chan struct{}),
	}
	s.metrics.Store(&Metrics{})
	s.refreshWindow()
	return s
}

// SetSurface replaces the rendering surface. Call before Run.
func (s *Session) SetSurface(sf Surface) {
	if sf == nil {
		sf = nopSurface{}
	}
	s.surface = sf
}

// SetJournal attaches the interaction journal. Call before Run.
func (s *Session) SetJournal(j Journal) { s.journal = j }

// SetSnapshotSink attaches the autosave channel. Call before Run.
func (s *Session) SetSnapshotSink(ch chan<- SnapshotEnvelope) { s.snapSink = ch }

func (s *Session) CurrentTick() uint64 { return s.tick.Load() }

// PlayerCell is the cell under the player's current position.
func (s *Session) PlayerCell() store.Key {
	return geo.CellAt(s.pos, s.origin, s.cfg.CellSizeDeg)
}

func (s *Session) Origin() geo.LatLng   { return s.origin }
func (s *Session) Position() geo.LatLng { return s.pos }
func (s *Session) Held() uint16         { return s.held }
func (s *Session) Score() int           { return s.score }
func (s *Session) Won() bool            { return s.won }
func (s *Session) Config() Config       { return s.cfg }

// ReadCell exposes store reads for the transport layer's initial window dump.
// Like any read it decides the cell.
func (s *Session) ReadCell(k store.Key) uint16 { return s.cells.Read(k) }

func (s *Session) DecidedCells() int { return s.cells.Len() }

func (s *Session) journalEntry(kind string, k store.Key, token uint16) {
	if s.journal == nil {
		return
	}
	_ = s.journal.WriteEntry(JournalEntry{
		Tick:  s.tick.Load(),
		Kind:  kind,
		I:     k.I,
		J:     k.J,
		Token: token,
		Held:  s.held,
		Score: s.score,
	})
}
