package affine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseWorldFile reads a 6-line ESRI world file (.tfw/.wld) and returns the
// pixel-to-CRS geotransform.
//
// Line 1: x-component of pixel width
// Line 2: rotation about the y-axis
// Line 3: rotation about the x-axis
// Line 4: y-component of pixel height (negative for north-up)
// Line 5: x-coordinate of the center of the upper-left pixel
// Line 6: y-coordinate of the center of the upper-left pixel
//
// Rotated world files are rejected. The world-file origin refers to the
// center of the upper-left pixel; the returned transform is shifted so that
// pixel (0, 0) maps to the upper-left corner, which is what the rest of the
// pipeline expects.
func ParseWorldFile(path string) (Affine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Affine{}, fmt.Errorf("reading world file %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 6 {
		return Affine{}, fmt.Errorf("world file %s: expected 6 lines, got %d", path, len(lines))
	}

	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(lines[i]), 64)
		if err != nil {
			return Affine{}, fmt.Errorf("world file %s line %d: %w", path, i+1, err)
		}
		vals[i] = v
	}

	if vals[1] != 0 || vals[2] != 0 {
		return Affine{}, fmt.Errorf("world file %s: rotated world files are not supported (rotation: %f, %f)",
			path, vals[1], vals[2])
	}

	// Shift center-of-pixel origin to the pixel corner.
	return Affine{
		vals[0], 0, vals[4] - vals[0]/2,
		0, vals[3], vals[5] - vals[3]/2,
	}, nil
}

// FindWorldFile looks for a world-file sidecar alongside the given raster
// path. Checks extensions: .tfw, .TFW, .wld, .WLD. Returns "" when none exists.
func FindWorldFile(rasterPath string) string {
	ext := filepath.Ext(rasterPath)
	base := rasterPath[:len(rasterPath)-len(ext)]

	candidates := []string{".tfw", ".TFW", ".wld", ".WLD"}
	for _, c := range candidates {
		p := base + c
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
