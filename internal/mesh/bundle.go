// Package mesh implements the adaptive Delaunay mesh refiner that warps a
// source tile onto a display projection. Starting from two triangles spanning
// the tile's UV square, it inserts vertices where linear interpolation of the
// composed "pixel -> source CRS -> target CRS" mapping deviates from the
// exact mapping by more than a caller-chosen pixel budget, restoring the
// Delaunay property after every insert.
package mesh

import (
	"fmt"

	"github.com/pspoerri/rasterwarp/internal/affine"
	"github.com/pspoerri/rasterwarp/internal/coord"
)

// TransformFn maps one 2-D point to another. All four legs of a reprojection
// bundle have this shape.
type TransformFn func(x, y float64) (float64, float64)

// ReprojectionFns bundles the four pure functions the refiner samples:
//
//	ForwardTransform  pixel (col, row)    -> source CRS (x, y)
//	InverseTransform  source CRS (x, y)   -> pixel (col, row)
//	ForwardReproject  source CRS (x, y)   -> target CRS (x, y)
//	InverseReproject  target CRS (x, y)   -> source CRS (x, y)
//
// The composed forward path is ForwardReproject after ForwardTransform; the
// refiner relies on both directions being numerically consistent to within
// display-pixel precision.
type ReprojectionFns struct {
	ForwardTransform TransformFn
	InverseTransform TransformFn
	ForwardReproject TransformFn
	InverseReproject TransformFn
}

func (f ReprojectionFns) complete() bool {
	return f.ForwardTransform != nil && f.InverseTransform != nil &&
		f.ForwardReproject != nil && f.InverseReproject != nil
}

// IdentityBundle returns a bundle whose four legs are all the identity.
func IdentityBundle() ReprojectionFns {
	id := func(x, y float64) (float64, float64) { return x, y }
	return ReprojectionFns{
		ForwardTransform: id,
		InverseTransform: id,
		ForwardReproject: id,
		InverseReproject: id,
	}
}

// NewBundle builds a reprojection bundle from a pixel-to-CRS geotransform and
// a pair of projections. The reprojection legs route src -> WGS84 -> dst.
// The geotransform inverse is computed here, so a degenerate transform fails
// at construction rather than mid-refinement.
func NewBundle(gt affine.Affine, src, dst coord.Projection) (ReprojectionFns, error) {
	inv, err := gt.Invert()
	if err != nil {
		return ReprojectionFns{}, fmt.Errorf("building reprojection bundle: %w", err)
	}
	return ReprojectionFns{
		ForwardTransform: gt.Apply,
		InverseTransform: inv.Apply,
		ForwardReproject: func(x, y float64) (float64, float64) {
			return dst.FromWGS84(src.ToWGS84(x, y))
		},
		InverseReproject: func(x, y float64) (float64, float64) {
			return src.FromWGS84(dst.ToWGS84(x, y))
		},
	}, nil
}
