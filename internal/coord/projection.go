// Package coord provides the projection implementations consumed by the
// reprojection bundles and the tile traversal: Web Mercator, Swiss LV95 and
// a WGS84 identity, plus helpers for mapping Web-Mercator meters into the
// canonical common space used for culling.
package coord

import (
	"math"

	"github.com/paulmach/orb"
)

// Projection converts between a source CRS and WGS84.
type Projection interface {
	// ToWGS84 converts source CRS coordinates to WGS84 longitude/latitude (degrees).
	ToWGS84(x, y float64) (lon, lat float64)

	// FromWGS84 converts WGS84 longitude/latitude (degrees) to source CRS coordinates.
	FromWGS84(lon, lat float64) (x, y float64)

	// EPSG returns the EPSG code for this projection.
	EPSG() int
}

// ForEPSG returns a Projection for the given EPSG code.
// Returns nil if the EPSG code is not supported.
func ForEPSG(epsg int) Projection {
	switch epsg {
	case 2056:
		return &SwissLV95{}
	case 4326:
		return &WGS84Identity{}
	case 3857:
		return &WebMercatorProj{}
	default:
		return nil
	}
}

// WGS84Identity is a no-op projection for data already in EPSG:4326.
type WGS84Identity struct{}

func (w *WGS84Identity) ToWGS84(x, y float64) (lon, lat float64)   { return x, y }
func (w *WGS84Identity) FromWGS84(lon, lat float64) (x, y float64) { return lon, lat }
func (w *WGS84Identity) EPSG() int                                 { return 4326 }

// InferEPSG guesses the EPSG code of a raster from its coordinate ranges.
// Falls back to EPSG:4326 when the extent looks like geographic lon/lat.
func InferEPSG(minX, minY, maxX, maxY float64) int {
	if minX >= -180 && maxX <= 360 && minY >= -90 && maxY <= 90 {
		return 4326
	}

	if math.Abs(minX) > 100000 || math.Abs(maxY) > 100000 {
		if minX >= 2400000 && minX <= 2900000 &&
			minY >= 1000000 && minY <= 1400000 {
			return 2056
		}
		if math.Abs(minX) <= 20037508.34 && math.Abs(maxY) <= 20048966.10 {
			return 3857
		}
	}

	return 4326
}

// DensifyBound projects the outline of a source-CRS box into WGS84 and
// returns the enclosing lon/lat bound. Each edge is sampled at n points so
// that projections which curve straight lines do not get clipped by a
// corners-only projection.
func DensifyBound(minX, minY, maxX, maxY float64, toWGS84 func(x, y float64) (float64, float64), n int) orb.Bound {
	if n < 2 {
		n = 2
	}
	b := orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
	extend := func(x, y float64) {
		lon, lat := toWGS84(x, y)
		b = b.Extend(orb.Point{lon, lat})
	}
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		x := minX + f*(maxX-minX)
		y := minY + f*(maxY-minY)
		extend(x, minY)
		extend(x, maxY)
		extend(minX, y)
		extend(maxX, y)
	}
	return b
}
