package mesh

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned for zero image dimensions, an incomplete
// function bundle, or a non-positive/non-finite error budget.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrBrokenTriangulation reports an internal invariant violation: a triangle
// that should have been queued or pending was in neither structure. It
// indicates a bug, not a recoverable condition; the refiner refuses further
// work once it has been returned.
var ErrBrokenTriangulation = errors.New("broken triangulation")

// The four barycentric probe weights per triangle: centroid plus the three
// edge midpoints. These are where GPU-interpolated output diverges most from
// the exact reprojection in practice.
var sampleWeights = [4][3]float64{
	{1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0},
	{0.5, 0.5, 0},
	{0.5, 0, 0.5},
	{0, 0.5, 0.5},
}

// Refiner incrementally triangulates the UV square of a W x H source tile so
// that, at every sampled probe point, rendering the triangle by linear
// interpolation of its vertices' target-CRS positions lands within the error
// budget (measured in source pixels) of the exact reprojection.
//
// Triangle storage uses parallel arrays packed by the identity
// edge = triangle*3 + k; halfedges mirror triangles slot for slot, and
// per-triangle metadata (candidates, queue slots) is indexed by edge/3.
type Refiner struct {
	fns    ReprojectionFns
	width  uint32
	height uint32

	// sizeX/sizeY convert UV to source pixels: pixel = uv * (size-1).
	sizeX float64
	sizeY float64

	uvs        []float64 // interleaved u, v per vertex
	positions  []float64 // interleaved target-CRS x, y per vertex
	triangles  []uint32  // vertex indices, 3 per triangle
	halfedges  []int32   // twin half-edge per edge, -1 on the hull
	candidates []float64 // interleaved worst-error UV per triangle

	queue   triQueue
	pending []uint32

	broken bool
}

// New creates a refiner over a width x height source tile. The initial mesh
// is the two corner triangles of the UV square with exact output positions
// computed through the bundle's forward path.
func New(fns ReprojectionFns, width, height uint32) (*Refiner, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image size %dx%d must be positive: %w", width, height, ErrInvalidArgument)
	}
	if !fns.complete() {
		return nil, fmt.Errorf("reprojection bundle is missing a function: %w", ErrInvalidArgument)
	}

	r := &Refiner{
		fns:    fns,
		width:  width,
		height: height,
		sizeX:  float64(width - 1),
		sizeY:  float64(height - 1),
	}

	r.addPoint(0, 0)
	r.addPoint(1, 0)
	r.addPoint(0, 1)
	r.addPoint(1, 1)

	// Corner triangles (3,0,2) and (0,3,1) sharing the 0-3 diagonal.
	t0 := r.addTriangle(3, 0, 2, -1, -1, -1, -1)
	r.addTriangle(0, 3, 1, t0, -1, -1, -1)

	if err := r.flush(); err != nil {
		return nil, err
	}
	return r, nil
}

// Run refines until no sampled error exceeds maxError.
func (r *Refiner) Run(maxError float64) error {
	if maxError <= 0 || math.IsNaN(maxError) {
		return fmt.Errorf("max error %v must be positive: %w", maxError, ErrInvalidArgument)
	}
	for r.MaxError() > maxError {
		if err := r.Refine(); err != nil {
			return err
		}
	}
	return nil
}

// Refine performs one split-and-legalize step and re-estimates the error of
// every triangle created by it.
func (r *Refiner) Refine() error {
	if r.broken {
		return ErrBrokenTriangulation
	}
	if err := r.step(); err != nil {
		return err
	}
	return r.flush()
}

// MaxError returns the largest sampled error over all triangles, or 0 when
// the mesh is fully refined.
func (r *Refiner) MaxError() float64 {
	return r.queue.peekError()
}

// NumVertices returns the current vertex count.
func (r *Refiner) NumVertices() int {
	return len(r.uvs) / 2
}

// NumTriangles returns the current triangle count.
func (r *Refiner) NumTriangles() int {
	return len(r.triangles) / 3
}

// UVs returns a borrowed view of the interleaved vertex UVs in [0,1]^2.
func (r *Refiner) UVs() []float64 {
	return r.uvs
}

// Positions returns a borrowed view of the interleaved target-CRS positions,
// parallel to UVs.
func (r *Refiner) Positions() []float64 {
	return r.positions
}

// Triangles returns a borrowed view of the flat vertex-index list, 3 entries
// per triangle.
func (r *Refiner) Triangles() []uint32 {
	return r.triangles
}

// Halfedges returns a borrowed view of the twin half-edge table.
func (r *Refiner) Halfedges() []int32 {
	return r.halfedges
}

// addPoint appends a vertex at (u, v) and its exact output position through
// the composed forward path.
func (r *Refiner) addPoint(u, v float64) uint32 {
	sx, sy := r.fns.ForwardTransform(u*r.sizeX, v*r.sizeY)
	x, y := r.fns.ForwardReproject(sx, sy)
	r.uvs = append(r.uvs, u, v)
	r.positions = append(r.positions, x, y)
	return uint32(len(r.uvs)/2 - 1)
}

// addTriangle stores triangle (a, b, c) with twin half-edges (ab, bc, ca),
// links the twins back, and marks the triangle pending. e is the edge base
// slot to reuse, or -1 to append. Returns the triangle's edge base index.
func (r *Refiner) addTriangle(a, b, c uint32, ab, bc, ca, e int32) int32 {
	if e < 0 {
		e = int32(len(r.triangles))
		r.triangles = append(r.triangles, a, b, c)
		r.halfedges = append(r.halfedges, ab, bc, ca)
		r.candidates = append(r.candidates, 0, 0)
	} else {
		r.triangles[e] = a
		r.triangles[e+1] = b
		r.triangles[e+2] = c
		r.halfedges[e] = ab
		r.halfedges[e+1] = bc
		r.halfedges[e+2] = ca
	}

	if ab >= 0 {
		r.halfedges[ab] = e
	}
	if bc >= 0 {
		r.halfedges[bc] = e + 1
	}
	if ca >= 0 {
		r.halfedges[ca] = e + 2
	}

	r.pending = append(r.pending, uint32(e/3))
	return e
}

// estimate samples the triangle at the four barycentric probes and returns
// the worst round-trip pixel error together with its UV location. A candidate
// that coincides exactly with one of the triangle's vertices yields error 0:
// inserting it again could make no progress.
func (r *Refiner) estimate(t uint32) (worst, cu, cv float64) {
	e := t * 3
	i0 := r.triangles[e]
	i1 := r.triangles[e+1]
	i2 := r.triangles[e+2]

	u0, v0 := r.uvs[2*i0], r.uvs[2*i0+1]
	u1, v1 := r.uvs[2*i1], r.uvs[2*i1+1]
	u2, v2 := r.uvs[2*i2], r.uvs[2*i2+1]
	x0, y0 := r.positions[2*i0], r.positions[2*i0+1]
	x1, y1 := r.positions[2*i1], r.positions[2*i1+1]
	x2, y2 := r.positions[2*i2], r.positions[2*i2+1]

	worst = -1
	for _, w := range sampleWeights {
		u := w[0]*u0 + w[1]*u1 + w[2]*u2
		v := w[0]*v0 + w[1]*v1 + w[2]*v2

		// What the GPU would produce: the same barycentric mix of the
		// vertices' exact output positions.
		ix := w[0]*x0 + w[1]*x1 + w[2]*x2
		iy := w[0]*y0 + w[1]*y1 + w[2]*y2

		sx, sy := r.fns.InverseReproject(ix, iy)
		col, row := r.fns.InverseTransform(sx, sy)

		d := math.Hypot(col-u*r.sizeX, row-v*r.sizeY)
		if d > worst {
			worst = d
			cu, cv = u, v
		}
	}

	// Exact comparison on purpose: it terminates refinement when the sample
	// grid can no longer produce a new vertex.
	if (cu == u0 && cv == v0) || (cu == u1 && cv == v1) || (cu == u2 && cv == v2) {
		return 0, cu, cv
	}
	return worst, cu, cv
}

// flush estimates every pending triangle and pushes it onto the queue.
func (r *Refiner) flush() error {
	for _, t := range r.pending {
		worst, cu, cv := r.estimate(t)
		r.candidates[2*t] = cu
		r.candidates[2*t+1] = cv
		r.queue.push(t, worst)
	}
	r.pending = r.pending[:0]
	return nil
}

// step pops the worst triangle, inserts its candidate vertex and legalizes
// the affected edges.
func (r *Refiner) step() error {
	t, ok := r.queue.pop()
	if !ok {
		return nil
	}

	e0 := int32(t * 3)
	e1 := e0 + 1
	e2 := e0 + 2

	p0 := r.triangles[e0]
	p1 := r.triangles[e1]
	p2 := r.triangles[e2]

	ax, ay := r.uvs[2*p0], r.uvs[2*p0+1]
	bx, by := r.uvs[2*p1], r.uvs[2*p1+1]
	cx, cy := r.uvs[2*p2], r.uvs[2*p2+1]
	px, py := r.candidates[2*t], r.candidates[2*t+1]

	pn := r.addPoint(px, py)

	switch {
	case orient(ax, ay, bx, by, px, py) == 0:
		return r.splitEdge(pn, e0)
	case orient(bx, by, cx, cy, px, py) == 0:
		return r.splitEdge(pn, e1)
	case orient(cx, cy, ax, ay, px, py) == 0:
		return r.splitEdge(pn, e2)
	}

	// Interior insert: replace t with three triangles fanning around pn.
	h0 := r.halfedges[e0]
	h1 := r.halfedges[e1]
	h2 := r.halfedges[e2]

	t0 := r.addTriangle(p0, p1, pn, h0, -1, -1, e0)
	t1 := r.addTriangle(p1, p2, pn, h1, -1, t0+1, -1)
	t2 := r.addTriangle(p2, p0, pn, h2, t0+2, t1+1, -1)

	if err := r.legalize(t0); err != nil {
		return err
	}
	if err := r.legalize(t1); err != nil {
		return err
	}
	return r.legalize(t2)
}

// splitEdge handles a candidate landing exactly on edge a. The owning
// triangle is split in two; when the edge is interior the twin triangle is
// split as well, giving four triangles around the new vertex.
func (r *Refiner) splitEdge(pn uint32, a int32) error {
	a0 := a - a%3
	al := a0 + (a+1)%3
	ar := a0 + (a+2)%3

	p0 := r.triangles[ar]
	pr := r.triangles[a]
	pl := r.triangles[al]
	hal := r.halfedges[al]
	har := r.halfedges[ar]

	b := r.halfedges[a]
	if b < 0 {
		// Hull edge: 2-way split.
		t0 := r.addTriangle(pn, p0, pr, -1, har, -1, a0)
		t1 := r.addTriangle(p0, pn, pl, t0, -1, hal, -1)
		if err := r.legalize(t0 + 1); err != nil {
			return err
		}
		return r.legalize(t1 + 2)
	}

	b0 := b - b%3
	bl := b0 + (b+2)%3
	br := b0 + (b+1)%3
	q1 := r.triangles[bl]
	hbl := r.halfedges[bl]
	hbr := r.halfedges[br]

	if err := r.queueRemove(uint32(b0 / 3)); err != nil {
		return err
	}

	// Interior edge: 4-way split across both triangles.
	t0 := r.addTriangle(p0, pr, pn, har, -1, -1, a0)
	t1 := r.addTriangle(pr, q1, pn, hbr, -1, t0+1, b0)
	t2 := r.addTriangle(q1, pl, pn, hbl, -1, t1+1, -1)
	t3 := r.addTriangle(pl, p0, pn, hal, t0+2, t2+1, -1)

	if err := r.legalize(t0); err != nil {
		return err
	}
	if err := r.legalize(t1); err != nil {
		return err
	}
	if err := r.legalize(t2); err != nil {
		return err
	}
	return r.legalize(t3)
}

// legalize restores the local Delaunay condition across edge a, flipping the
// shared diagonal and recursing when the opposite vertex of the twin triangle
// lies strictly inside this triangle's circumcircle.
func (r *Refiner) legalize(a int32) error {
	b := r.halfedges[a]
	if b < 0 {
		return nil
	}

	a0 := a - a%3
	b0 := b - b%3
	al := a0 + (a+1)%3
	ar := a0 + (a+2)%3
	bl := b0 + (b+2)%3
	br := b0 + (b+1)%3

	p0 := r.triangles[ar]
	pr := r.triangles[a]
	pl := r.triangles[al]
	p1 := r.triangles[bl]

	if !inCircle(
		r.uvs[2*p0], r.uvs[2*p0+1],
		r.uvs[2*pr], r.uvs[2*pr+1],
		r.uvs[2*pl], r.uvs[2*pl+1],
		r.uvs[2*p1], r.uvs[2*p1+1]) {
		return nil
	}

	hal := r.halfedges[al]
	har := r.halfedges[ar]
	hbl := r.halfedges[bl]
	hbr := r.halfedges[br]

	if err := r.queueRemove(uint32(a0 / 3)); err != nil {
		return err
	}
	if err := r.queueRemove(uint32(b0 / 3)); err != nil {
		return err
	}

	t0 := r.addTriangle(p0, p1, pl, -1, hbl, hal, a0)
	t1 := r.addTriangle(p1, p0, pr, t0, har, hbr, b0)

	if err := r.legalize(t0 + 1); err != nil {
		return err
	}
	return r.legalize(t1 + 2)
}

// queueRemove drops triangle t from whichever structure holds it. A triangle
// in neither the heap nor the pending list means the bookkeeping is corrupt.
func (r *Refiner) queueRemove(t uint32) error {
	if r.queue.remove(t) {
		return nil
	}
	for i, p := range r.pending {
		if p == t {
			last := len(r.pending) - 1
			r.pending[i] = r.pending[last]
			r.pending = r.pending[:last]
			return nil
		}
	}
	r.broken = true
	return fmt.Errorf("triangle %d in neither queue nor pending: %w", t, ErrBrokenTriangulation)
}
