package session

import (
	"testing"

	"cachecraft.gg/internal/protocol"
	"cachecraft.gg/internal/sim/geo"
	"cachecraft.gg/internal/sim/grid/store"
)

// recordingSurface captures notifications for assertions.
type recordingSurface struct {
	materialized map[store.Key]uint16
	changed      map[store.Key]uint16
	released     map[store.Key]int
	rejected     []string
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{
		materialized: map[store.Key]uint16{},
		changed:      map[store.Key]uint16{},
		released:     map[store.Key]int{},
	}
}

func (r *recordingSurface) OnCellMaterialized(k store.Key, token uint16, _, _ geo.LatLng) {
	r.materialized[k] = token
}
func (r *recordingSurface) OnCellContentChanged(k store.Key, token uint16) { r.changed[k] = token }
func (r *recordingSurface) OnCellReleased(k store.Key)                     { r.released[k]++ }
func (r *recordingSurface) OnInteractionRejected(_ store.Key, code string) {
	r.rejected = append(r.rejected, code)
}

func barrenConfig() Config {
	return Config{
		Seed:          1337,
		CellSizeDeg:   1e-4,
		SpawnPermille: -1, // applyDefaults clamps to 0: no natural tokens
		Origin:        geo.LatLng{Lat: 36.9895, Lng: -122.0628},
	}
}

func TestPickupTransition(t *testing.T) {
	s := New(barrenConfig())
	k := store.Key{I: 1, J: 1}
	s.cells.Write(k, 8)

	s.HandleInteract(k)

	if s.held != 8 {
		t.Fatalf("held = %d, want 8", s.held)
	}
	if got := s.cells.Read(k); got != store.Empty {
		t.Fatalf("cell = %d after pickup, want empty", got)
	}
	if s.score != 1 {
		t.Fatalf("score = %d, want 1", s.score)
	}
}

func TestPlaceKeepsScore(t *testing.T) {
	s := New(barrenConfig())
	s.held = 4
	k := store.Key{I: 0, J: 2}

	s.HandleInteract(k)

	if s.held != store.Empty {
		t.Fatalf("held = %d after place, want empty", s.held)
	}
	if got := s.cells.Read(k); got != 4 {
		t.Fatalf("cell = %d, want 4", got)
	}
	if s.score != 0 {
		t.Fatalf("score = %d, want unchanged 0", s.score)
	}
}

func TestCraftDoublesHeldAndScores(t *testing.T) {
	s := New(barrenConfig())
	s.held = 8
	k := store.Key{I: -1, J: 0}
	s.cells.Write(k, 8)

	s.HandleInteract(k)

	if s.held != 16 {
		t.Fatalf("held = %d after craft, want 16", s.held)
	}
	if got := s.cells.Read(k); got != store.Empty {
		t.Fatalf("cell = %d after craft, want empty", got)
	}
	if s.score != 2 {
		t.Fatalf("score = %d, want 2", s.score)
	}
}

func TestMismatchRejectedWithoutStateChange(t *testing.T) {
	sf := newRecordingSurface()
	s := New(barrenConfig())
	s.SetSurface(sf)
	s.held = 16
	k := store.Key{I: 2, J: -2}
	s.cells.Write(k, 4)

	s.HandleInteract(k)

	if s.held != 16 {
		t.Fatalf("held = %d, want unchanged 16", s.held)
	}
	if got := s.cells.Read(k); got != 4 {
		t.Fatalf("cell = %d, want unchanged 4", got)
	}
	if s.score != 0 {
		t.Fatalf("score = %d, want unchanged 0", s.score)
	}
	if len(sf.rejected) != 1 || sf.rejected[0] != protocol.ErrMismatch {
		t.Fatalf("rejections = %v, want [%s]", sf.rejected, protocol.ErrMismatch)
	}
}

func TestEmptyHandEmptyCellIsNoop(t *testing.T) {
	sf := newRecordingSurface()
	s := New(barrenConfig())
	s.SetSurface(sf)
	k := store.Key{I: 0, J: 1}

	s.HandleInteract(k)

	if s.held != store.Empty || s.score != 0 {
		t.Fatalf("no-op interaction changed state: held=%d score=%d", s.held, s.score)
	}
	if len(sf.rejected) != 0 {
		t.Fatalf("no-op interaction rejected: %v", sf.rejected)
	}
}

func TestOutOfRangeRejectedAndUndecided(t *testing.T) {
	sf := newRecordingSurface()
	s := New(barrenConfig())
	s.SetSurface(sf)
	far := store.Key{I: 10, J: 10}

	s.HandleInteract(far)

	if len(sf.rejected) != 1 || sf.rejected[0] != protocol.ErrOutOfRange {
		t.Fatalf("rejections = %v, want [%s]", sf.rejected, protocol.ErrOutOfRange)
	}
	// The range check fires before any store access, so the far cell must
	// still be undecided.
	if s.cells.Decided(far) {
		t.Fatalf("out-of-range interaction decided the cell")
	}
}

func TestPlacedTokenSurvivesWindowRoundTrip(t *testing.T) {
	sf := newRecordingSurface()
	s := New(barrenConfig())
	s.SetSurface(sf)

	// Place a 4 at (2,3), inside the default interact radius.
	k := store.Key{I: 2, J: 3}
	s.held = 4
	s.HandleInteract(k)
	if got := s.cells.Read(k); got != 4 {
		t.Fatalf("cell = %d after place, want 4", got)
	}

	// Walk far enough that (2,3) leaves the window, then come back.
	s.HandleStep(40, 0)
	if sf.released[k] == 0 {
		t.Fatalf("cell never released after leaving the window")
	}
	s.HandleStep(-40, 0)

	if got := sf.materialized[k]; got != 4 {
		t.Fatalf("re-materialized cell shows %d, want the placed 4", got)
	}
	if got := s.cells.Read(k); got != 4 {
		t.Fatalf("store shows %d after round trip, want 4", got)
	}
}

func TestVictoryThenRestart(t *testing.T) {
	s := New(barrenConfig())
	s.held = 16
	k := store.Key{I: 1, J: 0}
	s.cells.Write(k, 16)

	s.HandleInteract(k)
	if !s.won || s.held != 32 {
		t.Fatalf("won=%v held=%d after reaching threshold, want won with 32", s.won, s.held)
	}

	// Movement and interaction are suppressed while won.
	before := s.PlayerCell()
	s.HandleStep(1, 1)
	if s.PlayerCell() != before {
		t.Fatalf("movement applied while won")
	}
	sf := newRecordingSurface()
	s.SetSurface(sf)
	s.HandleInteract(k)
	if len(sf.rejected) != 1 || sf.rejected[0] != protocol.ErrSessionWon {
		t.Fatalf("rejections = %v, want [%s]", sf.rejected, protocol.ErrSessionWon)
	}

	// Restart resets everything and re-anchors the origin.
	s.HandleRestart()
	if s.won || s.held != store.Empty || s.score != 0 {
		t.Fatalf("restart left won=%v held=%d score=%d", s.won, s.held, s.score)
	}
	if s.origin != s.pos {
		t.Fatalf("restart did not re-anchor origin to player position")
	}
	if s.PlayerCell() != (store.Key{}) {
		t.Fatalf("player cell = %+v after restart, want (0,0)", s.PlayerCell())
	}
}

func TestRestartForgetsPlacedTokens(t *testing.T) {
	s := New(barrenConfig())
	s.held = 8
	k := store.Key{I: 0, J: 1}
	s.HandleInteract(k)

	s.HandleRestart()

	// Same key, fresh world: barren generator means the cell is empty again.
	if got := s.cells.Read(k); got != store.Empty {
		t.Fatalf("cell = %d after restart, want regenerated empty", got)
	}
}

func TestOversizedVictoryThresholdClamped(t *testing.T) {
	cfg := barrenConfig()
	cfg.VictoryThreshold = 1 << 16
	s := New(cfg)
	if got := s.Config().VictoryThreshold; got != 32768 {
		t.Fatalf("threshold = %d, want clamped 32768", got)
	}

	// A plain pickup must not win against an oversized threshold.
	k := store.Key{I: 1, J: 0}
	s.cells.Write(k, 8)
	s.HandleInteract(k)
	if s.won {
		t.Fatalf("pickup of 8 won against threshold %d", s.Config().VictoryThreshold)
	}

	// The largest hand a uint16 token can hold still reaches it.
	s.held = 16384
	k2 := store.Key{I: 0, J: 1}
	s.cells.Write(k2, 16384)
	s.HandleInteract(k2)
	if s.held != 32768 || !s.won {
		t.Fatalf("held=%d won=%v after top craft, want 32768 and won", s.held, s.won)
	}
}

func TestStepsNormalizeLikePositions(t *testing.T) {
	s := New(barrenConfig())
	for n := 0; n < 250; n++ {
		s.HandleStep(0, 1)
	}
	if got := s.PlayerCell(); got != (store.Key{I: 0, J: 250}) {
		t.Fatalf("player cell = %+v after 250 east steps, want (0,250)", got)
	}

	// A continuous fix at the same spot agrees.
	p := s.Position()
	s.HandlePosition(p)
	if got := s.PlayerCell(); got != (store.Key{I: 0, J: 250}) {
		t.Fatalf("player cell = %+v after continuous fix, want (0,250)", got)
	}
}
