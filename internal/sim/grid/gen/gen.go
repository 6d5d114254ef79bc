// Package gen decides the default content of a cell that has never been
// touched. It is a pure function of (seed, cell coordinate, constants): no
// wall-clock, no call-order dependence, no process-wide random state. That is
// what lets the world be infinite without storing untouched cells: any cell
// regenerates to exactly what it would have contained the first time.
package gen

import "cachecraft.gg/internal/sim/grid/mathx"

// Purpose tags keep the spawn roll and the value roll independent. They are
// seed offsets into the same pinned hash, same scheme as a layered worldgen
// pass (ore layer vs sprinkle layer).
const (
	tagSpawn = 711
	tagValue = 712
)

// TokenSpreadK fixes how many doublings a natural spawn can carry:
// values are 2^(1+roll) with roll in [0, TokenSpreadK), i.e. {2,4,8,16,32}.
// With a victory threshold of 32 this makes the target reachable both from a
// lucky spawn and from a pickup-free craft chain starting at 2.
const TokenSpreadK = 5

type Gen struct {
	Seed          int64
	SpawnPermille int // 0..1000; 0 means no cell ever spawns a token
}

// TokenAt returns the default token value for a cell, 0 meaning empty.
func (g Gen) TokenAt(i, j int) uint16 {
	if g.SpawnPermille <= 0 {
		return 0
	}
	if mathx.Hash2(g.Seed+tagSpawn, i, j)%1000 >= uint64(g.SpawnPermille) {
		return 0
	}
	roll := mathx.Hash2(g.Seed+tagValue, i, j) % TokenSpreadK
	return uint16(2) << roll
}
