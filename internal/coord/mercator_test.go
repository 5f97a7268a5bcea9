package coord

import (
	"math"
	"testing"
)

func TestWebMercatorKnownValues(t *testing.T) {
	w := &WebMercatorProj{}

	// Null island maps to the mercator origin.
	x, y := w.FromWGS84(0, 0)
	if math.Abs(x) > 1e-6 || math.Abs(y) > 1e-6 {
		t.Errorf("FromWGS84(0,0) = (%f, %f), want (0, 0)", x, y)
	}

	// The antimeridian maps to the origin shift.
	x, _ = w.FromWGS84(180, 0)
	if math.Abs(x-OriginShift) > 1e-3 {
		t.Errorf("FromWGS84(180,0).x = %f, want %f", x, OriginShift)
	}

	// Zurich. x is linear in longitude; y only needs to land in the band a
	// mid-latitude city occupies.
	x, y = w.FromWGS84(8.5417, 47.3769)
	if want := 8.5417 * OriginShift / 180; math.Abs(x-want) > 1e-6 {
		t.Errorf("Zurich x = %f, want %f", x, want)
	}
	if y < 5.9e6 || y > 6.1e6 {
		t.Errorf("Zurich y = %f, want within [5.9e6, 6.1e6]", y)
	}
}

func TestMercatorToCommonRoundTrip(t *testing.T) {
	pts := [][2]float64{
		{0, 0},
		{950906.90, 6002550.65},
		{-OriginShift, -OriginShift},
		{OriginShift, OriginShift},
	}
	for _, p := range pts {
		cx, cy := MercatorToCommon(p[0], p[1])
		x, y := CommonToMercator(cx, cy)
		if math.Abs(x-p[0]) > 1e-6 || math.Abs(y-p[1]) > 1e-6 {
			t.Errorf("round trip of (%f, %f) = (%f, %f)", p[0], p[1], x, y)
		}
	}
}

func TestMercatorToCommonCorners(t *testing.T) {
	// The mercator world corners map to the common-space corners, with the
	// north-west corner at the origin.
	cx, cy := MercatorToCommon(-OriginShift, OriginShift)
	if math.Abs(cx) > 1e-9 || math.Abs(cy) > 1e-9 {
		t.Errorf("north-west corner = (%f, %f), want (0, 0)", cx, cy)
	}
	cx, cy = MercatorToCommon(OriginShift, -OriginShift)
	if math.Abs(cx-CommonSpaceSize) > 1e-9 || math.Abs(cy-CommonSpaceSize) > 1e-9 {
		t.Errorf("south-east corner = (%f, %f), want (512, 512)", cx, cy)
	}
}

func TestResolutionAtLat(t *testing.T) {
	// At the equator, zoom 0, 256px tiles: one pixel is ~156543m.
	res := ResolutionAtLat(0, 0, 256)
	if math.Abs(res-156543.03392804097) > 1e-3 {
		t.Errorf("ResolutionAtLat(0, 0, 256) = %f", res)
	}

	// Each zoom level halves the resolution.
	if r1 := ResolutionAtLat(0, 1, 256); math.Abs(r1-res/2) > 1e-6 {
		t.Errorf("zoom 1 resolution = %f, want %f", r1, res/2)
	}
}

func TestMaxZoomForResolution(t *testing.T) {
	// A 0.5m source around lat 47 should land in the 17-18 range.
	z := MaxZoomForResolution(0.5, 47, 256)
	if z < 16 || z > 19 {
		t.Errorf("MaxZoomForResolution(0.5, 47) = %d, want 16..19", z)
	}

	// Coarser pixels mean lower zoom.
	if z10 := MaxZoomForResolution(100, 47, 256); z10 >= z {
		t.Errorf("coarser source got zoom %d >= %d", z10, z)
	}
}
