package session

import (
	"cachecraft.gg/internal/sim/geo"
	"cachecraft.gg/internal/sim/tuning"
)

type Config struct {
	Seed int64

	TickRateHz         int
	AutosaveEveryTicks int

	CellSizeDeg    float64
	RenderRadius   int
	InteractRadius int

	SpawnPermille    int
	VictoryThreshold int
	PickupScore      int
	CraftScore       int

	// Origin is anchored once per session; it only moves on restart.
	Origin geo.LatLng
}

// FromTuning binds session constants to an origin. The origin comes from the
// movement source when available, else the tuning fallback.
func FromTuning(t tuning.Tuning, origin geo.LatLng) Config {
	return Config{
		TickRateHz:         t.TickRateHz,
		AutosaveEveryTicks: t.AutosaveEveryTicks,
		CellSizeDeg:        t.CellSizeDeg,
		RenderRadius:       t.RenderRadius,
		InteractRadius:     t.InteractRadius,
		SpawnPermille:      t.SpawnPermille,
		VictoryThreshold:   t.VictoryThreshold,
		PickupScore:        t.PickupScore,
		CraftScore:         t.CraftScore,
		Origin:             origin,
	}
}

func (c *Config) applyDefaults() {
	if c.TickRateHz <= 0 {
		c.TickRateHz = 5
	}
	if c.AutosaveEveryTicks <= 0 {
		c.AutosaveEveryTicks = 300
	}
	if c.CellSizeDeg <= 0 {
		c.CellSizeDeg = 1e-4
	}
	if c.RenderRadius <= 0 {
		c.RenderRadius = 8
	}
	if c.InteractRadius <= 0 {
		c.InteractRadius = 3
	}
	if c.InteractRadius > c.RenderRadius {
		c.InteractRadius = c.RenderRadius
	}
	if c.SpawnPermille < 0 {
		c.SpawnPermille = 0
	}
	if c.SpawnPermille > 1000 {
		c.SpawnPermille = 1000
	}
	if c.VictoryThreshold <= 0 {
		c.VictoryThreshold = 32
	}
	// Tokens are uint16 powers of two; 32768 is the largest value a hand can
	// hold, so any threshold above it could never be reached.
	if c.VictoryThreshold > 32768 {
		c.VictoryThreshold = 32768
	}
	if c.PickupScore <= 0 {
		c.PickupScore = 1
	}
	if c.CraftScore <= 0 {
		c.CraftScore = 2
	}
}
