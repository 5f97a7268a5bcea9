// Package traverse selects the tiles of a pyramid that a viewport needs:
// a coarse-to-fine walk that frustum-culls each tile's oriented bounding box
// and stops subdividing once a tile's scale denominator matches the screen.
package traverse

import (
	"fmt"

	"github.com/pspoerri/rasterwarp/internal/coord"
	"github.com/pspoerri/rasterwarp/internal/cull"
	"github.com/pspoerri/rasterwarp/internal/tms"
)

// maxShortcutTiles bounds the level scan of the near-top-down shortcut; a
// matrix larger than this falls back to the pyramid walk so the shortcut
// never degrades into a full-matrix sweep.
const maxShortcutTiles = 64 * 64

// DistanceScales carries the viewport's unit conversions into common space.
type DistanceScales struct {
	// UnitsPerMeterZ converts meters of elevation into common-space units.
	UnitsPerMeterZ float64
}

// Viewport describes the camera against which tiles are selected. Positions
// are in the canonical common space ([0, 512]^2 at zoom 0, z up in common
// units).
type Viewport struct {
	Camera         [3]float64
	Frustum        cull.Volume
	Width          float64 // screen pixels
	Height         float64 // screen pixels
	Zoom           float64
	Scale          float64 // world scale, 2^Zoom
	Pitch          float64 // degrees from top-down
	DistanceScales DistanceScales
}

// Params tunes one traversal pass.
type Params struct {
	// ElevationMin/Max span the raster's elevation range in meters. Equal
	// values collapse the bounding volumes to a single layer.
	ElevationMin float64
	ElevationMax float64
	// MinLevel forces subdivision below it: tiles coarser than MinLevel are
	// never selected, only walked through.
	MinLevel int
	// MaxLevel caps subdivision; negative means the finest level.
	MaxLevel int
}

type traversal struct {
	set      *tms.TileMatrixSet
	vp       Viewport
	params   Params
	minLevel int
	maxLevel int
	selected []tms.TileIndex
}

// GetTileIndices walks the pyramid and returns the minimal non-overlapping
// set of tiles whose bounding volumes intersect the frustum at an appropriate
// level of detail. It borrows the set and is a pure function of its inputs.
func GetTileIndices(set *tms.TileMatrixSet, vp Viewport, params Params) ([]tms.TileIndex, error) {
	if set.Levels() == 0 {
		return nil, fmt.Errorf("empty tile matrix set")
	}
	maxLevel := params.MaxLevel
	if maxLevel < 0 || maxLevel >= set.Levels() {
		maxLevel = set.Levels() - 1
	}
	minLevel := params.MinLevel
	if minLevel < 0 {
		minLevel = 0
	}
	if minLevel > maxLevel {
		minLevel = maxLevel
	}

	tr := &traversal{set: set, vp: vp, params: params, minLevel: minLevel, maxLevel: maxLevel}

	// Near-top-down Web-Mercator viewports don't need the pyramid: every
	// selected tile would end up at the same level anyway.
	if vp.Pitch <= 60 && set.EPSG == 3857 {
		m := set.Matrices[maxLevel]
		if m.MatrixWidth*m.MatrixHeight <= maxShortcutTiles {
			for y := 0; y < m.MatrixHeight; y++ {
				for x := 0; x < m.MatrixWidth; x++ {
					idx := tms.TileIndex{X: x, Y: y, Z: maxLevel}
					if tr.vp.Frustum.Visibility(tr.boundingVolume(idx)) != cull.Outside {
						tr.selected = append(tr.selected, idx)
					}
				}
			}
			return tr.selected, nil
		}
	}

	root := set.Matrices[0]
	for y := 0; y < root.MatrixHeight; y++ {
		for x := 0; x < root.MatrixWidth; x++ {
			tr.visit(tms.TileIndex{X: x, Y: y, Z: 0})
		}
	}
	return tr.selected, nil
}

// visit tests one node and either discards it, selects it, or recurses into
// its children. Selected tiles are collected post-order, so descendants of a
// subdivided tile land before their cousins.
func (tr *traversal) visit(idx tms.TileIndex) {
	obb := tr.boundingVolume(idx)
	if tr.vp.Frustum.Visibility(obb) == cull.Outside {
		return
	}

	if idx.Z >= tr.maxLevel || (idx.Z >= tr.minLevel && tr.detailedEnough(idx, obb)) {
		tr.selected = append(tr.selected, idx)
		return
	}

	k := tr.set.Decimation(idx.Z)
	child := tr.set.Matrices[idx.Z+1]
	for y := idx.Y * k; y < (idx.Y+1)*k && y < child.MatrixHeight; y++ {
		for x := idx.X * k; x < (idx.X+1)*k && x < child.MatrixWidth; x++ {
			tr.visit(tms.TileIndex{X: x, Y: y, Z: idx.Z + 1})
		}
	}
}

// detailedEnough compares the tile's scale denominator against the screen's:
// the distance-scaled denominator of one display pixel at the OGC reference
// pixel size.
func (tr *traversal) detailedEnough(idx tms.TileIndex, obb cull.OBB) bool {
	dist := obb.DistanceTo(tr.vp.Camera)
	screenDenominator := dist * tr.vp.Scale / (tr.vp.Height * coord.ScreenPixelSizeMeters)
	return tr.set.Matrices[idx.Z].ScaleDenominator <= screenDenominator
}

// boundingVolume fits an OBB to 9 reference points across the tile (corners,
// edge midpoints, center), projected through the tile affine, the set's
// Web-Mercator projection and the common-space rescale. A non-degenerate
// elevation range doubles the points at both elevation layers.
func (tr *traversal) boundingVolume(idx tms.TileIndex) cull.OBB {
	m := tr.set.Matrices[idx.Z]
	ta := tr.set.TileAffine(idx)

	elevations := []float64{tr.params.ElevationMin}
	if tr.params.ElevationMax != tr.params.ElevationMin {
		elevations = append(elevations, tr.params.ElevationMax)
	}

	points := make([][3]float64, 0, 9*len(elevations))
	for i := 0; i <= 2; i++ {
		for j := 0; j <= 2; j++ {
			px := float64(i) / 2 * float64(m.TileWidth)
			py := float64(j) / 2 * float64(m.TileHeight)
			sx, sy := ta.Apply(px, py)
			mx, my := tr.set.ProjectTo3857(sx, sy)
			cx, cy := coord.MercatorToCommon(mx, my)
			for _, elev := range elevations {
				points = append(points, [3]float64{cx, cy, elev * tr.vp.DistanceScales.UnitsPerMeterZ})
			}
		}
	}
	return cull.FromPoints(points)
}
