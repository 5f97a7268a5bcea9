package render

import (
	"image/color"
	"testing"

	"github.com/pspoerri/rasterwarp/internal/tms"
)

func countNonBackground(t *testing.T, img interface {
	RGBAAt(x, y int) color.RGBA
}, size int) int {
	t.Helper()
	n := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if img.RGBAAt(x, y) != background {
				n++
			}
		}
	}
	return n
}

func TestWireframe(t *testing.T) {
	// One right triangle with 100-unit legs.
	positions := []float64{0, 0, 100, 0, 0, 100}
	triangles := []uint32{0, 1, 2}

	img := Wireframe(positions, triangles, 128)
	if got := img.Bounds().Dx(); got != 128 {
		t.Fatalf("image width = %d, want 128", got)
	}
	if n := countNonBackground(t, img, 128); n < 100 {
		t.Errorf("wireframe drew %d pixels, want at least the triangle outline", n)
	}
}

func TestWireframeEmpty(t *testing.T) {
	img := Wireframe(nil, nil, 64)
	if n := countNonBackground(t, img, 64); n != 0 {
		t.Errorf("empty mesh drew %d pixels", n)
	}
}

func TestCoverage(t *testing.T) {
	matrices := []tms.TileMatrix{
		{ID: "0", CellSize: 10, PointOfOrigin: [2]float64{2600000, 1200000},
			TileWidth: 256, TileHeight: 256, MatrixWidth: 1, MatrixHeight: 1},
		{ID: "1", CellSize: 5, PointOfOrigin: [2]float64{2600000, 1200000},
			TileWidth: 256, TileHeight: 256, MatrixWidth: 2, MatrixHeight: 2},
	}
	set, err := tms.New(2056, matrices, [4]float64{2600000, 1197440, 2602560, 1200000})
	if err != nil {
		t.Fatal(err)
	}

	tiles := []tms.TileIndex{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}}
	img := Coverage(set, tiles, 256)
	if n := countNonBackground(t, img, 256); n < 1000 {
		t.Errorf("coverage drew %d pixels, want filled tile footprints", n)
	}
}
