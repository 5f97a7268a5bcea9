package cull

import (
	"math"
	"math/rand"
	"testing"
)

func axisAlignedBoxPoints(minX, minY, minZ, maxX, maxY, maxZ float64) [][3]float64 {
	return [][3]float64{
		{minX, minY, minZ}, {maxX, minY, minZ}, {minX, maxY, minZ}, {maxX, maxY, minZ},
		{minX, minY, maxZ}, {maxX, minY, maxZ}, {minX, maxY, maxZ}, {maxX, maxY, maxZ},
	}
}

// boxVolume is an axis-aligned culling volume with inward normals.
func boxVolume(minX, minY, minZ, maxX, maxY, maxZ float64) Volume {
	return Volume{Planes: []Plane{
		{Normal: [3]float64{1, 0, 0}, Distance: -minX},
		{Normal: [3]float64{-1, 0, 0}, Distance: maxX},
		{Normal: [3]float64{0, 1, 0}, Distance: -minY},
		{Normal: [3]float64{0, -1, 0}, Distance: maxY},
		{Normal: [3]float64{0, 0, 1}, Distance: -minZ},
		{Normal: [3]float64{0, 0, -1}, Distance: maxZ},
	}}
}

func TestFromPointsContainsCloud(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 20; trial++ {
		points := make([][3]float64, 30)
		for i := range points {
			points[i] = [3]float64{
				rng.Float64()*100 - 50,
				rng.Float64()*20 + 5,
				rng.Float64() * 3,
			}
		}
		obb := FromPoints(points)
		for _, p := range points {
			if d := obb.DistanceTo(p); d > 1e-9 {
				t.Fatalf("trial %d: point %v outside its own OBB by %g", trial, p, d)
			}
		}
	}
}

func TestFromPointsTightOnRotatedLine(t *testing.T) {
	// Points along a diagonal line: the PCA box must align with it instead
	// of bounding the axis-aligned extent.
	var points [][3]float64
	for i := 0; i <= 10; i++ {
		f := float64(i)
		points = append(points, [3]float64{f, f, 0})
	}
	obb := FromPoints(points)

	// Half sizes in any axis order: the longest must be ~half the diagonal
	// length, the others ~0.
	hs := []float64{obb.HalfSizes[0], obb.HalfSizes[1], obb.HalfSizes[2]}
	longest := math.Max(hs[0], math.Max(hs[1], hs[2]))
	if want := 10 * math.Sqrt2 / 2; math.Abs(longest-want) > 1e-6 {
		t.Errorf("longest half size = %g, want %g", longest, want)
	}
	if sum := hs[0] + hs[1] + hs[2]; sum-longest > 1e-6 {
		t.Errorf("off-axis extent = %g, want ~0", sum-longest)
	}
}

func TestDistanceTo(t *testing.T) {
	obb := FromPoints(axisAlignedBoxPoints(0, 0, 0, 10, 10, 10))

	tests := []struct {
		p    [3]float64
		want float64
	}{
		{[3]float64{5, 5, 5}, 0},
		{[3]float64{0, 0, 0}, 0},
		{[3]float64{15, 5, 5}, 5},
		{[3]float64{5, 5, -3}, 3},
		{[3]float64{13, 14, 10}, 5}, // 3-4-5 in the xy plane
	}
	for _, tt := range tests {
		if got := obb.DistanceTo(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("DistanceTo(%v) = %g, want %g", tt.p, got, tt.want)
		}
	}
}

func TestVisibility(t *testing.T) {
	frustum := boxVolume(0, 0, 0, 100, 100, 100)

	tests := []struct {
		name string
		box  [][3]float64
		want Visibility
	}{
		{"inside", axisAlignedBoxPoints(40, 40, 40, 60, 60, 60), Inside},
		{"straddles face", axisAlignedBoxPoints(-10, 40, 40, 10, 60, 60), Intersecting},
		{"outside", axisAlignedBoxPoints(150, 150, 150, 160, 160, 160), Outside},
		{"surrounds frustum", axisAlignedBoxPoints(-50, -50, -50, 150, 150, 150), Intersecting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obb := FromPoints(tt.box)
			if got := frustum.Visibility(obb); got != tt.want {
				t.Errorf("Visibility = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignedDistance(t *testing.T) {
	pl := Plane{Normal: [3]float64{0, 0, 1}, Distance: -5}
	if got := pl.SignedDistanceTo([3]float64{0, 0, 8}); got != 3 {
		t.Errorf("signed distance = %g, want 3", got)
	}
	if got := pl.SignedDistanceTo([3]float64{0, 0, 2}); got != -3 {
		t.Errorf("signed distance = %g, want -3", got)
	}
}
