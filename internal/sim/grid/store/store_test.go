package store

import (
	"testing"

	"cachecraft.gg/internal/sim/grid/gen"
)

func TestReadDecidesOnFirstAccess(t *testing.T) {
	s := New(gen.Gen{Seed: 7, SpawnPermille: 1000})
	k := Key{I: 3, J: -4}
	if s.Decided(k) {
		t.Fatalf("cell decided before first access")
	}
	v := s.Read(k)
	if !s.Decided(k) {
		t.Fatalf("cell undecided after read")
	}
	if v == 0 {
		t.Fatalf("certain-spawn generator produced empty cell")
	}
	if got := s.Read(k); got != v {
		t.Fatalf("second read = %d, want %d", got, v)
	}
}

func TestWriteSurvivesReads(t *testing.T) {
	s := New(gen.Gen{Seed: 7, SpawnPermille: 1000})
	k := Key{I: 0, J: 0}
	s.Write(k, Empty)
	for n := 0; n < 10; n++ {
		if got := s.Read(k); got != Empty {
			t.Fatalf("read %d = %d, want stored Empty", n, got)
		}
	}
	s.Write(k, 16)
	if got := s.Read(k); got != 16 {
		t.Fatalf("read after overwrite = %d, want 16", got)
	}
}

func TestStoreBoundedByTouchedCells(t *testing.T) {
	s := New(gen.Gen{Seed: 1, SpawnPermille: 120})
	n := 0
	for i := -5; i <= 5; i++ {
		for j := -5; j <= 5; j++ {
			s.Read(Key{I: i, J: j})
			n++
		}
	}
	// Re-observe everything several times; size must not move.
	for round := 0; round < 3; round++ {
		for i := -5; i <= 5; i++ {
			for j := -5; j <= 5; j++ {
				s.Read(Key{I: i, J: j})
			}
		}
	}
	if s.Len() != n {
		t.Fatalf("store size = %d after %d distinct touches", s.Len(), n)
	}
}

func TestClearForgetsEverything(t *testing.T) {
	s := New(gen.Gen{Seed: 1, SpawnPermille: 0})
	s.Write(Key{I: 1, J: 1}, 8)
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("store size = %d after clear", s.Len())
	}
	if got := s.Read(Key{I: 1, J: 1}); got != Empty {
		t.Fatalf("cleared cell regenerated to %d, want Empty", got)
	}
}

func TestExportImportCellsRoundTrip(t *testing.T) {
	g := gen.Gen{Seed: 9, SpawnPermille: 0}
	s := New(g)
	s.Write(Key{I: 2, J: 3}, 4)
	s.Write(Key{I: -7, J: 0}, 32)
	s.Write(Key{I: 0, J: 0}, Empty)

	cells := ExportCells(s)
	if len(cells) != 3 {
		t.Fatalf("exported %d cells, want 3", len(cells))
	}

	restored := ImportCells(g, cells)
	if restored.Len() != 3 {
		t.Fatalf("imported %d cells, want 3", restored.Len())
	}
	if got := restored.Read(Key{I: 2, J: 3}); got != 4 {
		t.Fatalf("imported cell (2,3) = %d, want 4", got)
	}
	if !restored.Decided(Key{I: 0, J: 0}) {
		t.Fatalf("explicitly empty cell lost its decided state")
	}
}
