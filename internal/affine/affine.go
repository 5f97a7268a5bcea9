// Package affine implements the 6-parameter 2-D affine transforms used to map
// pixel coordinates to CRS coordinates (geotransforms) and to compose
// per-tile offsets onto pyramid-level transforms.
package affine

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateTransform is returned when a zero-determinant affine is inverted.
var ErrDegenerateTransform = errors.New("degenerate transform")

// Affine holds the six parameters [a, b, c, d, e, f] of the transform
//
//	x = a*col + b*row + c
//	y = d*col + e*row + f
//
// which is the GDAL-style geotransform layout with the translation folded
// into the third column. The zero value is NOT the identity; use Identity.
type Affine [6]float64

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{1, 0, 0, 0, 1, 0}
}

// Translation returns a transform that offsets by (xoff, yoff).
func Translation(xoff, yoff float64) Affine {
	return Affine{1, 0, xoff, 0, 1, yoff}
}

// Scale returns a transform that scales by (sx, sy).
func Scale(sx, sy float64) Affine {
	return Affine{sx, 0, 0, 0, sy, 0}
}

// Apply transforms the point (x, y).
func (t Affine) Apply(x, y float64) (float64, float64) {
	return t[0]*x + t[1]*y + t[2], t[3]*x + t[4]*y + t[5]
}

// Determinant returns the determinant of the linear part.
func (t Affine) Determinant() float64 {
	return t[0]*t[4] - t[1]*t[3]
}

// IsOrthogonal reports whether the transform has no rotation or skew terms.
func (t Affine) IsOrthogonal() bool {
	return t[1] == 0 && t[3] == 0
}

// Compose returns the transform equivalent to applying b first, then a.
// It is the 3x3 matrix product of the two affine embeddings.
func Compose(a, b Affine) Affine {
	return Affine{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// Invert returns the inverse transform. Returns ErrDegenerateTransform when
// the determinant is zero or not finite.
func (t Affine) Invert() (Affine, error) {
	det := t.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Affine{}, fmt.Errorf("inverting [%g %g %g %g %g %g]: %w",
			t[0], t[1], t[2], t[3], t[4], t[5], ErrDegenerateTransform)
	}
	return Affine{
		t[4] / det,
		-t[1] / det,
		(t[1]*t[5] - t[2]*t[4]) / det,
		-t[3] / det,
		t[0] / det,
		(t[2]*t[3] - t[0]*t[5]) / det,
	}, nil
}
