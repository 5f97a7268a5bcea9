package coord

import (
	"math"
	"testing"
)

func TestForEPSG(t *testing.T) {
	tests := []struct {
		epsg     int
		wantNil  bool
		wantEPSG int
	}{
		{2056, false, 2056},
		{4326, false, 4326},
		{3857, false, 3857},
		{32632, true, 0}, // UTM 32N — unsupported
		{0, true, 0},
	}
	for _, tt := range tests {
		p := ForEPSG(tt.epsg)
		if tt.wantNil {
			if p != nil {
				t.Errorf("ForEPSG(%d) = %v, want nil", tt.epsg, p)
			}
			continue
		}
		if p == nil {
			t.Fatalf("ForEPSG(%d) = nil, want non-nil", tt.epsg)
		}
		if got := p.EPSG(); got != tt.wantEPSG {
			t.Errorf("ForEPSG(%d).EPSG() = %d, want %d", tt.epsg, got, tt.wantEPSG)
		}
	}
}

// TestProjectionRoundTrip verifies ToWGS84(FromWGS84(lon, lat)) for all
// projections at points inside Switzerland (valid for LV95 and the others).
func TestProjectionRoundTrip(t *testing.T) {
	points := [][2]float64{
		{8.5417, 47.3769}, // Zurich
		{6.6323, 46.5197}, // Lausanne
		{7.4474, 46.9480}, // Bern
		{9.3767, 47.4245}, // St. Gallen
		{8.9511, 46.0037}, // Lugano
	}

	projections := []Projection{
		&WGS84Identity{},
		&WebMercatorProj{},
		&SwissLV95{},
	}

	for _, proj := range projections {
		for _, pt := range points {
			lon, lat := pt[0], pt[1]
			x, y := proj.FromWGS84(lon, lat)
			gotLon, gotLat := proj.ToWGS84(x, y)

			// SwissLV95 uses a polynomial approximation; allow 1e-4 deg (~10m).
			tol := 1e-4
			if d := math.Abs(gotLon - lon); d > tol {
				t.Errorf("EPSG:%d roundtrip lon for (%.4f, %.4f): got %.6f (delta=%.2e)",
					proj.EPSG(), lon, lat, gotLon, d)
			}
			if d := math.Abs(gotLat - lat); d > tol {
				t.Errorf("EPSG:%d roundtrip lat for (%.4f, %.4f): got %.6f (delta=%.2e)",
					proj.EPSG(), lon, lat, gotLat, d)
			}
		}
	}
}

func TestInferEPSG(t *testing.T) {
	tests := []struct {
		name                   string
		minX, minY, maxX, maxY float64
		want                   int
	}{
		{"geographic", 5.9, 45.8, 10.5, 47.8, 4326},
		{"lv95", 2600000, 1180000, 2680000, 1250000, 2056},
		{"web mercator", -1200000, 5700000, -1100000, 5800000, 3857},
		{"default", 500000, 5200000, 510000, 5210000, 4326},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferEPSG(tt.minX, tt.minY, tt.maxX, tt.maxY); got != tt.want {
				t.Errorf("InferEPSG = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDensifyBound(t *testing.T) {
	proj := &SwissLV95{}
	b := DensifyBound(2485000, 1075000, 2834000, 1296000, proj.ToWGS84, 21)

	// Switzerland roughly spans lon [5.9, 10.5], lat [45.8, 47.8].
	if b.Min[0] < 5.5 || b.Min[0] > 6.5 {
		t.Errorf("min lon = %f, want ~5.9", b.Min[0])
	}
	if b.Max[0] < 10.0 || b.Max[0] > 11.0 {
		t.Errorf("max lon = %f, want ~10.5", b.Max[0])
	}
	if b.Min[1] < 45.0 || b.Min[1] > 46.2 {
		t.Errorf("min lat = %f, want ~45.8", b.Min[1])
	}
	if b.Max[1] < 47.5 || b.Max[1] > 48.5 {
		t.Errorf("max lat = %f, want ~47.8", b.Max[1])
	}
}
