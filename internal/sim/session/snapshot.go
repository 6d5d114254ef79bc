package session

import (
	"fmt"

	snapv1 "cachecraft.gg/internal/persistence/snapshot"
	"cachecraft.gg/internal/sim/geo"
	"cachecraft.gg/internal/sim/grid/gen"
	"cachecraft.gg/internal/sim/grid/store"
	"cachecraft.gg/internal/sim/window"
)

// SnapshotEnvelope pairs a snapshot with the tick it was taken at, for the
// autosave sink.
type SnapshotEnvelope struct {
	Tick uint64
	Snap snapv1.SnapshotV1
}

// ExportSnapshot captures everything a resume needs: the world-determining
// constants, the origin, the player, and every decided cell.
func (s *Session) ExportSnapshot() snapv1.SnapshotV1 {
	return snapv1.SnapshotV1{
		Header: snapv1.Header{
			Version: snapv1.CurrentVersion,
			Tick:    s.tick.Load(),
		},
		Seed:             s.cfg.Seed,
		CellSizeDeg:      s.cfg.CellSizeDeg,
		RenderRadius:     s.cfg.RenderRadius,
		InteractRadius:   s.cfg.InteractRadius,
		SpawnPermille:    s.cfg.SpawnPermille,
		VictoryThreshold: s.cfg.VictoryThreshold,
		Origin:           snapv1.LatLngV1{Lat: s.origin.Lat, Lng: s.origin.Lng},
		Player: snapv1.PlayerV1{
			Pos:   snapv1.LatLngV1{Lat: s.pos.Lat, Lng: s.pos.Lng},
			Held:  s.held,
			Score: s.score,
			Won:   s.won,
		},
		Cells: store.ExportCells(s.cells),
	}
}

// Resume rebuilds a session from a snapshot. World-determining constants
// (seed, cell size, spawn odds, victory threshold) come from the snapshot,
// since they define what the stored cell keys mean; operational knobs
// (radii, tick rate, score deltas) follow current tuning.
func Resume(cfg Config, snap snapv1.SnapshotV1) (*Session, error) {
	if snap.Header.Version != snapv1.CurrentVersion {
		return nil, fmt.Errorf("snapshot version %d not supported", snap.Header.Version)
	}
	if snap.CellSizeDeg <= 0 {
		return nil, fmt.Errorf("snapshot cell size %v invalid", snap.CellSizeDeg)
	}
	if snap.Player.Score < 0 {
		return nil, fmt.Errorf("snapshot score %d invalid", snap.Player.Score)
	}

	cfg.Seed = snap.Seed
	cfg.CellSizeDeg = snap.CellSizeDeg
	cfg.SpawnPermille = snap.SpawnPermille
	cfg.VictoryThreshold = snap.VictoryThreshold
	cfg.Origin = geo.LatLng{Lat: snap.Origin.Lat, Lng: snap.Origin.Lng}
	cfg.applyDefaults()

	g := gen.Gen{Seed: cfg.Seed, SpawnPermille: cfg.SpawnPermille}
	s := &Session{
		cfg:     cfg,
		cells:   store.ImportCells(g, snap.Cells),
		win:     window.NewManager(cfg.RenderRadius),
		origin:  cfg.Origin,
		pos:     geo.LatLng{Lat: snap.Player.Pos.Lat, Lng: snap.Player.Pos.Lng},
		held:    snap.Player.Held,
		score:   snap.Player.Score,
		won:     snap.Player.Won,
		surface: nopSurface{},
		clients: map[string]chan []byte{},
		acts:    make(chan ActEnvelope, 256),
		attach:  make(chan AttachRequest, 8),
		detach:  make(chan string, 8),
		saveReq: make(chan saveReq, 2),
		stop:    make(chan struct{}),
	}
	s.tick.Store(snap.Header.Tick)
	s.metrics.Store(&Metrics{})
	s.refreshWindow()
	return s, nil
}
