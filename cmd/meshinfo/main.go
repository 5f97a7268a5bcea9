// Command meshinfo inspects the warped meshes the refinement engine produces
// for a raster. It refines either the whole image or every tile of one
// pyramid level, prints mesh statistics, and can write wireframe or coverage
// previews as PNG or WebP.
//
// Usage:
//
//	meshinfo -width 4096 -height 4096 -epsg 2056 -origin-x 2600000 -origin-y 1200000 -pixel-size 0.5 -o mesh.webp
//	meshinfo -tfw swissalti.tfw -width 21000 -height 14000 -grid -level 3 -coverage tiles.png
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/pspoerri/rasterwarp/internal/affine"
	"github.com/pspoerri/rasterwarp/internal/coord"
	"github.com/pspoerri/rasterwarp/internal/encode"
	"github.com/pspoerri/rasterwarp/internal/mesh"
	"github.com/pspoerri/rasterwarp/internal/render"
	"github.com/pspoerri/rasterwarp/internal/tms"
)

func main() {
	var (
		width       = flag.Int("width", 4096, "raster width in pixels")
		height      = flag.Int("height", 4096, "raster height in pixels")
		epsg        = flag.Int("epsg", 2056, "source EPSG code (2056, 3857 or 4326)")
		tfwPath     = flag.String("tfw", "", "world file to read the geotransform from")
		originX     = flag.Float64("origin-x", 2600000, "x of the upper-left corner in CRS units")
		originY     = flag.Float64("origin-y", 1200000, "y of the upper-left corner in CRS units")
		pixelSize   = flag.Float64("pixel-size", 0.5, "pixel size in CRS units")
		maxError    = flag.Float64("max-error", 0.125, "refinement error budget in source pixels")
		tileSize    = flag.Int("tile-size", 256, "tile size for the pyramid")
		levels      = flag.Int("levels", 0, "pyramid levels (0 = auto)")
		grid        = flag.Bool("grid", false, "refine every tile of one level instead of the whole image")
		level       = flag.Int("level", -1, "pyramid level for -grid (-1 = finest)")
		concurrency = flag.Int("concurrency", runtime.NumCPU(), "parallel workers for -grid")
		output      = flag.String("o", "", "wireframe preview output (.png or .webp)")
		coverage    = flag.String("coverage", "", "tile coverage preview output for -grid (.png or .webp)")
		previewSize = flag.Int("preview-size", 1024, "preview image size in pixels")
		verbose     = flag.Bool("v", false, "verbose output")
	)
	flag.Parse()

	src := coord.ForEPSG(*epsg)
	if src == nil {
		fmt.Fprintf(os.Stderr, "Error: unsupported EPSG code %d\n", *epsg)
		os.Exit(1)
	}

	gt := affine.Affine{*pixelSize, 0, *originX, 0, -*pixelSize, *originY}
	if *tfwPath != "" {
		var err error
		gt, err = affine.ParseWorldFile(*tfwPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	set, err := tms.FromGeotransform(*epsg, gt, *width, *height, *tileSize, *levels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Raster: %dx%d, EPSG:%d, pixel size %g\n", *width, *height, *epsg, gt[0])
	fmt.Printf("Pyramid: %d levels, tile size %d\n", set.Levels(), *tileSize)
	if *verbose {
		b := set.BoundsWGS84
		fmt.Printf("WGS84 bounds: [%f, %f, %f, %f]\n", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
		for i, m := range set.Matrices {
			fmt.Printf("  Level %d: cell size %g, %dx%d tiles, scale denominator %.0f\n",
				i, m.CellSize, m.MatrixWidth, m.MatrixHeight, m.ScaleDenominator)
		}
	}

	dst := &coord.WebMercatorProj{}
	if *grid {
		runGrid(set, src, dst, *level, *maxError, *concurrency, *coverage, *previewSize)
		return
	}

	bundle, err := mesh.NewBundle(gt, src, dst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	r, err := mesh.New(bundle, uint32(*width), uint32(*height))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := r.Run(*maxError); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Refined in %s: %d vertices, %d triangles, max error %g px\n",
		time.Since(start).Truncate(time.Microsecond), r.NumVertices(), r.NumTriangles(), r.MaxError())

	if *output != "" {
		img := render.Wireframe(r.Positions(), r.Triangles(), *previewSize)
		if err := writeImage(*output, img); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wireframe written to %s\n", *output)
	}
}

// runGrid refines every tile of one pyramid level with a bounded worker pool.
func runGrid(set *tms.TileMatrixSet, src coord.Projection, dst *coord.WebMercatorProj,
	level int, maxError float64, concurrency int, coveragePath string, previewSize int) {

	if level < 0 || level >= set.Levels() {
		level = set.Levels() - 1
	}
	m := set.Matrices[level]

	tiles := make([]tms.TileIndex, 0, m.MatrixWidth*m.MatrixHeight)
	for y := 0; y < m.MatrixHeight; y++ {
		for x := 0; x < m.MatrixWidth; x++ {
			tiles = append(tiles, tms.TileIndex{X: x, Y: y, Z: level})
		}
	}

	nWorkers := concurrency
	if nWorkers > len(tiles) {
		nWorkers = len(tiles)
	}
	if nWorkers < 1 {
		nWorkers = 1
	}

	pb := startMeshProgress(fmt.Sprintf("level %d", level), len(tiles))

	tileCh := make(chan tms.TileIndex, nWorkers*2)
	go func() {
		for _, t := range tiles {
			tileCh <- t
		}
		close(tileCh)
	}()

	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tileCh {
				bundle, err := mesh.NewBundle(set.TileAffine(idx), src, dst)
				if err != nil {
					log.Printf("tile %d/%d/%d: %v", idx.Z, idx.X, idx.Y, err)
					pb.TileFailed()
					continue
				}
				r, err := mesh.New(bundle, uint32(m.TileWidth), uint32(m.TileHeight))
				if err == nil {
					err = r.Run(maxError)
				}
				if err != nil {
					log.Printf("tile %d/%d/%d: %v", idx.Z, idx.X, idx.Y, err)
					pb.TileFailed()
					continue
				}
				pb.TileDone(r.NumVertices(), r.NumTriangles())
			}
		}()
	}
	wg.Wait()
	pb.Finish()

	fmt.Printf("Level %d: %d tiles, %d vertices, %d triangles, %d failed\n",
		level, len(tiles), pb.vertices.Load(), pb.triangles.Load(), pb.failed.Load())

	if coveragePath != "" {
		img := render.Coverage(set, tiles, previewSize)
		if err := writeImage(coveragePath, img); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Coverage written to %s\n", coveragePath)
	}
}

// writeImage encodes the image according to the output extension.
func writeImage(path string, img *image.RGBA) error {
	format := "png"
	if ext := filepath.Ext(path); ext == ".webp" {
		format = "webp"
	}
	enc, err := encode.NewEncoder(format, 90)
	if err != nil {
		return err
	}
	data, err := enc.Encode(img)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}
