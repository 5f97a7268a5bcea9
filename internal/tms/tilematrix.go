// Package tms models OGC-style tile matrix sets: the pyramid geometry that
// the tile traversal walks and from which per-tile geotransforms are derived.
package tms

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/pspoerri/rasterwarp/internal/affine"
	"github.com/pspoerri/rasterwarp/internal/coord"
)

// ErrUnsupportedTileMatrix is returned for rotated/skewed level geotransforms
// and non-integer decimation between adjacent levels.
var ErrUnsupportedTileMatrix = errors.New("unsupported tile matrix")

// ErrInvalidArgument is returned for structurally invalid set definitions.
var ErrInvalidArgument = errors.New("invalid argument")

// densifySamples is the per-edge sample count used when projecting the
// source bbox to WGS84.
const densifySamples = 21

// TileMatrix describes one pyramid level.
type TileMatrix struct {
	ID               string
	CellSize         float64 // CRS units per pixel at this level
	ScaleDenominator float64 // 0 = derive as CellSize / 0.00028
	PointOfOrigin    [2]float64
	TileWidth        int
	TileHeight       int
	MatrixWidth      int
	MatrixHeight     int
	// Geotransform maps a level pixel to source CRS coordinates. The zero
	// value is derived from PointOfOrigin and CellSize (north-up).
	Geotransform affine.Affine
}

// TileIndex addresses one tile; Z indexes into the set's matrices, X/Y the
// column and row within that level.
type TileIndex struct {
	X, Y, Z int
}

// TileMatrixSet is an ordered pyramid, index 0 coarsest, last index full
// resolution. It carries the source-CRS bounding box, the WGS84 bound derived
// from it, and the projection functions the traversal composes with.
type TileMatrixSet struct {
	EPSG        int
	Matrices    []TileMatrix
	BoundingBox [4]float64 // source CRS: minX, minY, maxX, maxY
	BoundsWGS84 orb.Bound

	ProjectTo4326 func(x, y float64) (float64, float64)
	ProjectTo3857 func(x, y float64) (float64, float64)
}

// New validates the matrices and assembles a set. Geotransforms must be
// orthogonal (no rotation/skew) and adjacent levels must decimate by an
// integer factor. Missing scale denominators and geotransforms are derived.
func New(epsg int, matrices []TileMatrix, bbox [4]float64) (*TileMatrixSet, error) {
	if len(matrices) == 0 {
		return nil, fmt.Errorf("tile matrix set needs at least one level: %w", ErrInvalidArgument)
	}

	proj := coord.ForEPSG(epsg)
	if proj == nil {
		return nil, fmt.Errorf("no projection for EPSG:%d: %w", epsg, ErrInvalidArgument)
	}

	// Defaults are derived in place; work on a copy so the caller's slice
	// stays untouched.
	matrices = append([]TileMatrix(nil), matrices...)

	for i := range matrices {
		m := &matrices[i]
		if m.CellSize <= 0 {
			return nil, fmt.Errorf("level %d: cell size %g must be positive: %w", i, m.CellSize, ErrInvalidArgument)
		}
		if m.TileWidth <= 0 || m.TileHeight <= 0 || m.MatrixWidth <= 0 || m.MatrixHeight <= 0 {
			return nil, fmt.Errorf("level %d: tile/matrix dimensions must be positive: %w", i, ErrInvalidArgument)
		}
		if m.Geotransform == (affine.Affine{}) {
			m.Geotransform = affine.Affine{
				m.CellSize, 0, m.PointOfOrigin[0],
				0, -m.CellSize, m.PointOfOrigin[1],
			}
		}
		if !m.Geotransform.IsOrthogonal() {
			return nil, fmt.Errorf("level %d: rotated or skewed geotransform: %w", i, ErrUnsupportedTileMatrix)
		}
		if m.ScaleDenominator == 0 {
			m.ScaleDenominator = m.CellSize / coord.ScreenPixelSizeMeters
		}
		if i > 0 {
			prev := matrices[i-1]
			if prev.CellSize <= m.CellSize {
				return nil, fmt.Errorf("level %d: cell size %g not finer than parent %g: %w",
					i, m.CellSize, prev.CellSize, ErrUnsupportedTileMatrix)
			}
			ratio := prev.CellSize / m.CellSize
			if math.Abs(ratio-math.Round(ratio)) > 1e-6 {
				return nil, fmt.Errorf("level %d: non-integer decimation %g between levels: %w",
					i, ratio, ErrUnsupportedTileMatrix)
			}
		}
	}

	webMercator := &coord.WebMercatorProj{}
	s := &TileMatrixSet{
		EPSG:        epsg,
		Matrices:    matrices,
		BoundingBox: bbox,
		ProjectTo4326: func(x, y float64) (float64, float64) {
			return proj.ToWGS84(x, y)
		},
		ProjectTo3857: func(x, y float64) (float64, float64) {
			return webMercator.FromWGS84(proj.ToWGS84(x, y))
		},
	}
	s.BoundsWGS84 = coord.DensifyBound(bbox[0], bbox[1], bbox[2], bbox[3], s.ProjectTo4326, densifySamples)
	return s, nil
}

// FromGeotransform builds a power-of-two pyramid over a width x height raster
// with the given full-resolution pixel-to-CRS geotransform. levels <= 0
// auto-sizes the pyramid so the coarsest level fits in a single tile.
func FromGeotransform(epsg int, gt affine.Affine, width, height, tileSize, levels int) (*TileMatrixSet, error) {
	if width <= 0 || height <= 0 || tileSize <= 0 {
		return nil, fmt.Errorf("raster %dx%d with tile size %d: %w", width, height, tileSize, ErrInvalidArgument)
	}
	if !gt.IsOrthogonal() {
		return nil, fmt.Errorf("rotated or skewed geotransform: %w", ErrUnsupportedTileMatrix)
	}

	if levels <= 0 {
		levels = 1
		for size := max(width, height); size > tileSize; size = (size + 1) / 2 {
			levels++
		}
	}

	cell := math.Abs(gt[0])
	matrices := make([]TileMatrix, levels)
	for i := 0; i < levels; i++ {
		factor := 1 << (levels - 1 - i)
		fw := float64(factor)
		levelWidth := (width + factor - 1) / factor
		levelHeight := (height + factor - 1) / factor
		matrices[i] = TileMatrix{
			ID:            fmt.Sprintf("%d", i),
			CellSize:      cell * fw,
			PointOfOrigin: [2]float64{gt[2], gt[5]},
			TileWidth:     tileSize,
			TileHeight:    tileSize,
			MatrixWidth:   (levelWidth + tileSize - 1) / tileSize,
			MatrixHeight:  (levelHeight + tileSize - 1) / tileSize,
			Geotransform:  affine.Compose(gt, affine.Scale(fw, fw)),
		}
	}

	// Source bbox from the full-resolution corners.
	x0, y0 := gt.Apply(0, 0)
	x1, y1 := gt.Apply(float64(width), float64(height))
	bbox := [4]float64{
		math.Min(x0, x1), math.Min(y0, y1),
		math.Max(x0, x1), math.Max(y0, y1),
	}
	return New(epsg, matrices, bbox)
}

// Levels returns the number of pyramid levels.
func (s *TileMatrixSet) Levels() int {
	return len(s.Matrices)
}

// Decimation returns the integer factor between level z and level z+1.
func (s *TileMatrixSet) Decimation(z int) int {
	return int(math.Round(s.Matrices[z].CellSize / s.Matrices[z+1].CellSize))
}

// TileAffine derives the pixel-to-CRS transform of one tile by composing the
// level geotransform with the tile's pixel offset.
func (s *TileMatrixSet) TileAffine(idx TileIndex) affine.Affine {
	m := s.Matrices[idx.Z]
	return affine.Compose(m.Geotransform,
		affine.Translation(float64(idx.X*m.TileWidth), float64(idx.Y*m.TileHeight)))
}

// Contains reports whether the index addresses a tile inside its level's
// matrix bounds.
func (s *TileMatrixSet) Contains(idx TileIndex) bool {
	if idx.Z < 0 || idx.Z >= len(s.Matrices) {
		return false
	}
	m := s.Matrices[idx.Z]
	return idx.X >= 0 && idx.X < m.MatrixWidth && idx.Y >= 0 && idx.Y < m.MatrixHeight
}

// TileBounds returns the source-CRS extent of one tile.
func (s *TileMatrixSet) TileBounds(idx TileIndex) (minX, minY, maxX, maxY float64) {
	m := s.Matrices[idx.Z]
	ta := s.TileAffine(idx)
	x0, y0 := ta.Apply(0, 0)
	x1, y1 := ta.Apply(float64(m.TileWidth), float64(m.TileHeight))
	return math.Min(x0, x1), math.Min(y0, y1), math.Max(x0, x1), math.Max(y0, y1)
}
