// Package geo converts between real-world positions and grid cells. All
// conversions are relative to the session origin; changing the origin changes
// the meaning of every cell key, which is why the origin travels with the
// snapshot instead of being recomputed.
package geo

import (
	"math"

	"cachecraft.gg/internal/sim/grid/store"
)

type LatLng struct {
	Lat float64
	Lng float64
}

// CellAt floor-divides the delta from origin by the cell size on each axis.
// Total over all finite inputs; positions exactly on a cell edge belong to the
// cell on the positive side (half-open intervals).
func CellAt(p, origin LatLng, sizeDeg float64) store.Key {
	return store.Key{
		I: int(math.Floor((p.Lat - origin.Lat) / sizeDeg)),
		J: int(math.Floor((p.Lng - origin.Lng) / sizeDeg)),
	}
}

// Bounds returns the southwest and northeast corners of a cell. Cell (i,j)
// covers [origin + i*size, origin + (i+1)*size) on each axis, so adjacent
// cells tile without gaps or overlaps.
func Bounds(k store.Key, origin LatLng, sizeDeg float64) (sw, ne LatLng) {
	sw = LatLng{
		Lat: origin.Lat + float64(k.I)*sizeDeg,
		Lng: origin.Lng + float64(k.J)*sizeDeg,
	}
	ne = LatLng{
		Lat: sw.Lat + sizeDeg,
		Lng: sw.Lng + sizeDeg,
	}
	return sw, ne
}

// Center is a convenience for placing the player marker when restoring a
// session from a discrete step trail.
func Center(k store.Key, origin LatLng, sizeDeg float64) LatLng {
	sw, ne := Bounds(k, origin, sizeDeg)
	return LatLng{
		Lat: (sw.Lat + ne.Lat) / 2,
		Lng: (sw.Lng + ne.Lng) / 2,
	}
}
