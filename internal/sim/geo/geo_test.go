package geo

import (
	"testing"

	"cachecraft.gg/internal/sim/grid/store"
)

const size = 1e-4

func TestCellAtOrigin(t *testing.T) {
	origin := LatLng{Lat: 36.99, Lng: -122.06}
	if got := CellAt(origin, origin, size); got != (store.Key{}) {
		t.Fatalf("cell at origin = %+v, want (0,0)", got)
	}
}

func TestCellAtNegativeDelta(t *testing.T) {
	origin := LatLng{Lat: 10, Lng: 20}
	p := LatLng{Lat: 10 - size/2, Lng: 20 - 3.5*size}
	got := CellAt(p, origin, size)
	want := store.Key{I: -1, J: -4}
	if got != want {
		t.Fatalf("cell = %+v, want %+v", got, want)
	}
}

func TestBoundsTileHalfOpen(t *testing.T) {
	// Power-of-two size keeps the arithmetic exact, so the half-open edge
	// behavior is observable without float noise.
	const exact = 0.25
	origin := LatLng{Lat: 1, Lng: 2}
	_, ne := Bounds(store.Key{I: 0, J: 0}, origin, exact)
	sw, _ := Bounds(store.Key{I: 1, J: 1}, origin, exact)
	if ne != sw {
		t.Fatalf("ne of (0,0) = %+v, sw of (1,1) = %+v; cells must tile", ne, sw)
	}

	// The shared corner belongs to the cell on the positive side.
	if got := CellAt(ne, origin, exact); got != (store.Key{I: 1, J: 1}) {
		t.Fatalf("corner maps to %+v, want (1,1)", got)
	}
}

func TestBoundsContainCenter(t *testing.T) {
	origin := LatLng{Lat: -5, Lng: 33}
	k := store.Key{I: -12, J: 7}
	c := Center(k, origin, size)
	if got := CellAt(c, origin, size); got != k {
		t.Fatalf("center of %+v maps back to %+v", k, got)
	}
	sw, ne := Bounds(k, origin, size)
	if c.Lat < sw.Lat || c.Lat >= ne.Lat || c.Lng < sw.Lng || c.Lng >= ne.Lng {
		t.Fatalf("center %+v outside bounds [%+v, %+v)", c, sw, ne)
	}
}
