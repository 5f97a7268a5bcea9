// Package render rasterizes debug previews of refinement meshes and tile
// selections into plain RGBA images for the encode package.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/pspoerri/rasterwarp/internal/tms"
)

var (
	background = color.RGBA{255, 255, 255, 255}
	edgeColor  = color.RGBA{40, 40, 40, 255}
	vertColor  = color.RGBA{200, 30, 30, 255}
	fillColor  = color.RGBA{70, 130, 180, 90}
)

// Wireframe draws the triangle edges of a refined mesh. Positions are the
// interleaved target-CRS vertex coordinates; the drawing is scaled to fit the
// image with a small margin. Vertices are marked with dots.
func Wireframe(positions []float64, triangles []uint32, size int) *image.RGBA {
	img := newCanvas(size)
	if len(positions) < 4 {
		return img
	}

	toPx := fitTransform(positions, size)

	for t := 0; t < len(triangles); t += 3 {
		x0, y0 := toPx(positions[2*triangles[t]], positions[2*triangles[t]+1])
		x1, y1 := toPx(positions[2*triangles[t+1]], positions[2*triangles[t+1]+1])
		x2, y2 := toPx(positions[2*triangles[t+2]], positions[2*triangles[t+2]+1])
		drawLine(img, x0, y0, x1, y1, edgeColor)
		drawLine(img, x1, y1, x2, y2, edgeColor)
		drawLine(img, x2, y2, x0, y0, edgeColor)
	}

	for i := 0; i+1 < len(positions); i += 2 {
		x, y := toPx(positions[i], positions[i+1])
		img.SetRGBA(x, y, vertColor)
	}
	return img
}

// Coverage draws the source-CRS footprints of selected tiles over the set's
// bounding box.
func Coverage(set *tms.TileMatrixSet, tiles []tms.TileIndex, size int) *image.RGBA {
	img := newCanvas(size)
	bbox := set.BoundingBox
	spanX := bbox[2] - bbox[0]
	spanY := bbox[3] - bbox[1]
	if spanX <= 0 || spanY <= 0 {
		return img
	}

	margin := float64(size) * 0.05
	scale := math.Min((float64(size)-2*margin)/spanX, (float64(size)-2*margin)/spanY)

	toPx := func(x, y float64) (int, int) {
		// North up: CRS y grows upward, image y downward.
		return int(margin + (x-bbox[0])*scale), int(margin + (bbox[3]-y)*scale)
	}

	for _, idx := range tiles {
		minX, minY, maxX, maxY := set.TileBounds(idx)
		x0, y0 := toPx(minX, maxY)
		x1, y1 := toPx(maxX, minY)
		fillRect(img, x0, y0, x1, y1, fillColor)
		drawLine(img, x0, y0, x1, y0, edgeColor)
		drawLine(img, x1, y0, x1, y1, edgeColor)
		drawLine(img, x1, y1, x0, y1, edgeColor)
		drawLine(img, x0, y1, x0, y0, edgeColor)
	}
	return img
}

func newCanvas(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = background.R
		pix[i+1] = background.G
		pix[i+2] = background.B
		pix[i+3] = background.A
	}
	return img
}

// fitTransform maps the bounding box of the interleaved positions onto the
// image with a 5% margin, preserving aspect ratio and flipping y so north
// stays up.
func fitTransform(positions []float64, size int) func(x, y float64) (int, int) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i+1 < len(positions); i += 2 {
		minX = math.Min(minX, positions[i])
		maxX = math.Max(maxX, positions[i])
		minY = math.Min(minY, positions[i+1])
		maxY = math.Max(maxY, positions[i+1])
	}

	margin := float64(size) * 0.05
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}
	scale := math.Min((float64(size)-2*margin)/spanX, (float64(size)-2*margin)/spanY)

	return func(x, y float64) (int, int) {
		return int(margin + (x-minX)*scale), int(margin + (maxY-y)*scale)
	}
}

// drawLine rasterizes a segment with the integer Bresenham walk.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		setClipped(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			blend(img, x, y, c)
		}
	}
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// blend does a cheap source-over of a translucent color.
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return
	}
	dst := img.RGBAAt(x, y)
	a := uint32(c.A)
	ia := 255 - a
	img.SetRGBA(x, y, color.RGBA{
		uint8((uint32(c.R)*a + uint32(dst.R)*ia) / 255),
		uint8((uint32(c.G)*a + uint32(dst.G)*ia) / 255),
		uint8((uint32(c.B)*a + uint32(dst.B)*ia) / 255),
		255,
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
