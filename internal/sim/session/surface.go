package session

import (
	"cachecraft.gg/internal/sim/geo"
	"cachecraft.gg/internal/sim/grid/store"
)

// Surface is what the core needs from a rendering layer. Calls arrive on the
// session goroutine, already ordered; implementations must not call back into
// the session.
type Surface interface {
	OnCellMaterialized(k store.Key, token uint16, sw, ne geo.LatLng)
	OnCellContentChanged(k store.Key, token uint16)
	OnCellReleased(k store.Key)
	OnInteractionRejected(k store.Key, code string)
}

type nopSurface struct{}

func (nopSurface) OnCellMaterialized(store.Key, uint16, geo.LatLng, geo.LatLng) {}
func (nopSurface) OnCellContentChanged(store.Key, uint16)                       {}
func (nopSurface) OnCellReleased(store.Key)                                     {}
func (nopSurface) OnInteractionRejected(store.Key, string)                      {}

// JournalEntry records one accepted interaction (or restart) for the
// append-only journal.
type JournalEntry struct {
	Tick  uint64 `json:"tick"`
	Kind  string `json:"kind"` // PICKUP, PLACE, CRAFT, RESTART
	I     int    `json:"i"`
	J     int    `json:"j"`
	Token uint16 `json:"token,omitempty"`
	Held  uint16 `json:"held"`
	Score int    `json:"score"`
}

type Journal interface {
	WriteEntry(JournalEntry) error
}
