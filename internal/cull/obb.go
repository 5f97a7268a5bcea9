// Package cull provides the small 3-D culling toolkit the tile traversal
// needs: oriented bounding boxes fitted to reference-point clouds and
// frustum visibility tests against a set of planes.
package cull

import "math"

// OBB is an oriented bounding box: an orthonormal axis frame around a center
// with a half extent per axis.
type OBB struct {
	Center    [3]float64
	Axes      [3][3]float64 // orthonormal rows
	HalfSizes [3]float64
}

// FromPoints fits an OBB to a point cloud by principal component analysis:
// the box axes are the eigenvectors of the covariance matrix, the extents the
// min/max projections of the points onto them. The cloud must be non-empty.
func FromPoints(points [][3]float64) OBB {
	n := float64(len(points))

	var mean [3]float64
	for _, p := range points {
		mean[0] += p[0]
		mean[1] += p[1]
		mean[2] += p[2]
	}
	mean[0] /= n
	mean[1] /= n
	mean[2] /= n

	var cov [3][3]float64
	for _, p := range points {
		d := [3]float64{p[0] - mean[0], p[1] - mean[1], p[2] - mean[2]}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				cov[i][j] += d[i] * d[j] / n
			}
		}
	}

	axes := eigenvectors(cov)

	// Extents: min/max projections onto each axis.
	var lo, hi [3]float64
	for i := range lo {
		lo[i] = math.Inf(1)
		hi[i] = math.Inf(-1)
	}
	for _, p := range points {
		d := [3]float64{p[0] - mean[0], p[1] - mean[1], p[2] - mean[2]}
		for i := 0; i < 3; i++ {
			t := dot(d, axes[i])
			lo[i] = math.Min(lo[i], t)
			hi[i] = math.Max(hi[i], t)
		}
	}

	var b OBB
	b.Axes = axes
	for i := 0; i < 3; i++ {
		mid := (lo[i] + hi[i]) / 2
		b.HalfSizes[i] = (hi[i] - lo[i]) / 2
		b.Center[0] += mid * axes[i][0]
		b.Center[1] += mid * axes[i][1]
		b.Center[2] += mid * axes[i][2]
	}
	b.Center[0] += mean[0]
	b.Center[1] += mean[1]
	b.Center[2] += mean[2]
	return b
}

// DistanceTo returns the distance from p to the closest point of the box,
// 0 when p is inside.
func (b OBB) DistanceTo(p [3]float64) float64 {
	d := [3]float64{p[0] - b.Center[0], p[1] - b.Center[1], p[2] - b.Center[2]}
	var sum float64
	for i := 0; i < 3; i++ {
		t := dot(d, b.Axes[i])
		excess := math.Abs(t) - b.HalfSizes[i]
		if excess > 0 {
			sum += excess * excess
		}
	}
	return math.Sqrt(sum)
}

// effectiveRadius returns the projection radius of the box onto a direction.
func (b OBB) effectiveRadius(dir [3]float64) float64 {
	return b.HalfSizes[0]*math.Abs(dot(dir, b.Axes[0])) +
		b.HalfSizes[1]*math.Abs(dot(dir, b.Axes[1])) +
		b.HalfSizes[2]*math.Abs(dot(dir, b.Axes[2]))
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// eigenvectors computes an orthonormal eigenbasis of a symmetric 3x3 matrix
// by cyclic Jacobi rotations. Convergence for 3x3 input is a handful of
// sweeps; 16 is far beyond what float64 needs.
func eigenvectors(m [3][3]float64) [3][3]float64 {
	v := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	a := m

	for sweep := 0; sweep < 16; sweep++ {
		off := a[0][1]*a[0][1] + a[0][2]*a[0][2] + a[1][2]*a[1][2]
		if off < 1e-30 {
			break
		}
		for p := 0; p < 2; p++ {
			for q := p + 1; q < 3; q++ {
				if a[p][q] == 0 {
					continue
				}
				theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
				t := 1 / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				if theta < 0 {
					t = -t
				}
				c := 1 / math.Sqrt(t*t+1)
				s := t * c

				rotate := func(mat *[3][3]float64, i, j, k, l int) {
					g := mat[i][j]
					h := mat[k][l]
					mat[i][j] = c*g - s*h
					mat[k][l] = s*g + c*h
				}

				app := a[p][p]
				aqq := a[q][q]
				apq := a[p][q]
				a[p][p] = c*c*app - 2*s*c*apq + s*s*aqq
				a[q][q] = s*s*app + 2*s*c*apq + c*c*aqq
				a[p][q] = 0
				a[q][p] = 0
				for k := 0; k < 3; k++ {
					if k != p && k != q {
						rotate(&a, p, k, q, k)
						a[k][p] = a[p][k]
						a[k][q] = a[q][k]
					}
				}
				for k := 0; k < 3; k++ {
					rotate(&v, p, k, q, k)
				}
			}
		}
	}
	return v
}
