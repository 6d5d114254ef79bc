package store

import (
	snapv1 "cachecraft.gg/internal/persistence/snapshot"
	"cachecraft.gg/internal/sim/grid/gen"
)

// ExportCells converts the decided cells into snapshot records, ordered by
// key so encodes are reproducible.
func ExportCells(s *CellStore) []snapv1.CellV1 {
	keys := s.DecidedKeys()
	out := make([]snapv1.CellV1, 0, len(keys))
	for _, k := range keys {
		out = append(out, snapv1.CellV1{I: k.I, J: k.J, Token: s.Cells[k]})
	}
	return out
}

// ImportCells rebuilds a cell store from snapshot records. Every imported
// cell is Decided; the generator is only consulted for cells the save never
// touched.
func ImportCells(g gen.Gen, cells []snapv1.CellV1) *CellStore {
	s := New(g)
	for _, c := range cells {
		s.Cells[Key{I: c.I, J: c.J}] = c.Token
	}
	return s
}
