package main

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// meshProgress reports a -grid run in place on stderr: how many tiles have
// been refined and how much mesh the workers have produced so far. Counter
// updates are safe from any worker goroutine; drawing stays on the ticker
// goroutine until Finish.
type meshProgress struct {
	label string
	total int64

	tiles     atomic.Int64
	failed    atomic.Int64
	vertices  atomic.Int64
	triangles atomic.Int64

	start  time.Time
	stop   chan struct{}
	closed chan struct{}
}

func startMeshProgress(label string, total int) *meshProgress {
	p := &meshProgress{
		label:  label,
		total:  int64(total),
		start:  time.Now(),
		stop:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go p.loop()
	return p
}

// TileDone records one refined tile and the mesh it emitted.
func (p *meshProgress) TileDone(vertices, triangles int) {
	p.vertices.Add(int64(vertices))
	p.triangles.Add(int64(triangles))
	p.tiles.Add(1)
}

// TileFailed records a tile whose refinement produced no mesh.
func (p *meshProgress) TileFailed() {
	p.failed.Add(1)
	p.tiles.Add(1)
}

// Finish stops the redraw loop and leaves the final state on its own line.
func (p *meshProgress) Finish() {
	close(p.stop)
	<-p.closed
	p.draw()
	fmt.Fprintln(os.Stderr)
}

func (p *meshProgress) loop() {
	defer close(p.closed)
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-tick.C:
			p.draw()
		}
	}
}

func (p *meshProgress) draw() {
	done := p.tiles.Load()
	frac := 0.0
	if p.total > 0 {
		frac = float64(done) / float64(p.total)
	}
	if frac > 1 {
		frac = 1
	}

	const width = 24
	filled := int(frac * width)
	bar := strings.Repeat("=", filled)
	if filled < width {
		bar += ">" + strings.Repeat(" ", width-filled-1)
	}

	line := fmt.Sprintf("\r%s |%s| %d/%d tiles  %s verts  %s tris",
		p.label, bar, done, p.total,
		compactCount(p.vertices.Load()), compactCount(p.triangles.Load()))
	if f := p.failed.Load(); f > 0 {
		line += fmt.Sprintf("  %d failed", f)
	}
	line += fmt.Sprintf("  %s\033[K", time.Since(p.start).Truncate(time.Second))
	fmt.Fprint(os.Stderr, line)
}

// compactCount renders large mesh counts as 12, 3.4k, 5.6M.
func compactCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1e6)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1e3)
	default:
		return fmt.Sprintf("%d", n)
	}
}
