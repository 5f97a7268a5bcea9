// Package mosaic indexes collections of whole-image sources (client-side
// mosaics) for viewport queries. The index is a packed Hilbert R-tree: boxes
// are sorted along the Hilbert curve and grouped bottom-up into fixed-size
// nodes, so construction is O(N log N), queries O(log N + k), and the result
// is immutable and safely read-concurrent.
package mosaic

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// nodeSize is the packing fan-out. 16 keeps the tree shallow without making
// leaf scans expensive.
const nodeSize = 16

// Source is anything with a bounding box: a COG, a Zarr array, a STAC item.
type Source interface {
	Bounds() orb.Bound
}

// Index is a static spatial index over sources.
type Index struct {
	sources []Source

	// boxes holds minX, minY, maxX, maxY per tree node; leaves first, root
	// last. indices maps a leaf node to its source and an inner node to the
	// box offset of its first child.
	boxes       []float64
	indices     []uint32
	levelBounds []int
	numItems    int
}

// Build packs the sources into an index. The input slice is not retained in
// its original order; sources themselves are never mutated.
func Build(sources []Source) *Index {
	n := len(sources)
	ix := &Index{numItems: n}
	if n == 0 {
		return ix
	}

	// Level layout: leaves, then each parent level, root last.
	numNodes := n
	ix.levelBounds = []int{n * 4}
	for count := n; count != 1; {
		count = (count + nodeSize - 1) / nodeSize
		numNodes += count
		ix.levelBounds = append(ix.levelBounds, numNodes*4)
	}

	ix.boxes = make([]float64, numNodes*4)
	ix.indices = make([]uint32, numNodes)
	ix.sources = make([]Source, n)

	// Leaf boxes and the world extent.
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, s := range sources {
		b := s.Bounds()
		ix.boxes[i*4] = b.Min[0]
		ix.boxes[i*4+1] = b.Min[1]
		ix.boxes[i*4+2] = b.Max[0]
		ix.boxes[i*4+3] = b.Max[1]
		minX = math.Min(minX, b.Min[0])
		minY = math.Min(minY, b.Min[1])
		maxX = math.Max(maxX, b.Max[0])
		maxY = math.Max(maxY, b.Max[1])
	}

	// Sort leaves by the Hilbert index of their centers. A degenerate world
	// extent leaves the input order, which is still a valid packing.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	width := maxX - minX
	height := maxY - minY
	if width > 0 || height > 0 {
		side := uint64(1) << hilbertOrder
		scale := float64(side - 1)
		hilbert := make([]uint64, n)
		for i := 0; i < n; i++ {
			var hx, hy uint64
			if width > 0 {
				hx = uint64(scale * ((ix.boxes[i*4]+ix.boxes[i*4+2])/2 - minX) / width)
			}
			if height > 0 {
				hy = uint64(scale * ((ix.boxes[i*4+1]+ix.boxes[i*4+3])/2 - minY) / height)
			}
			hilbert[i] = xyToHilbert(hx, hy, side)
		}
		sort.Slice(order, func(a, b int) bool { return hilbert[order[a]] < hilbert[order[b]] })
	}

	sorted := make([]float64, n*4)
	for pos, i := range order {
		copy(sorted[pos*4:], ix.boxes[i*4:i*4+4])
		ix.indices[pos] = uint32(pos)
		ix.sources[pos] = sources[i]
	}
	copy(ix.boxes, sorted)

	// Pack parent levels bottom-up.
	pos := 0
	for level := 0; level < len(ix.levelBounds)-1; level++ {
		end := ix.levelBounds[level]
		writePos := end
		for pos < end {
			firstChild := pos
			nodeMinX, nodeMinY := math.Inf(1), math.Inf(1)
			nodeMaxX, nodeMaxY := math.Inf(-1), math.Inf(-1)
			for j := 0; j < nodeSize && pos < end; j++ {
				nodeMinX = math.Min(nodeMinX, ix.boxes[pos])
				nodeMinY = math.Min(nodeMinY, ix.boxes[pos+1])
				nodeMaxX = math.Max(nodeMaxX, ix.boxes[pos+2])
				nodeMaxY = math.Max(nodeMaxY, ix.boxes[pos+3])
				pos += 4
			}
			ix.indices[writePos>>2] = uint32(firstChild)
			ix.boxes[writePos] = nodeMinX
			ix.boxes[writePos+1] = nodeMinY
			ix.boxes[writePos+2] = nodeMaxX
			ix.boxes[writePos+3] = nodeMaxY
			writePos += 4
		}
	}

	return ix
}

// Len returns the number of indexed sources.
func (ix *Index) Len() int {
	return ix.numItems
}

// Search returns every source whose bounding box intersects the query bound.
// Boxes that merely touch count as intersecting.
func (ix *Index) Search(query orb.Bound) []Source {
	if ix.numItems == 0 {
		return nil
	}

	var results []Source
	var stack []int
	nodeIndex := len(ix.boxes) - 4

	for nodeIndex >= 0 {
		end := min(nodeIndex+nodeSize*4, ix.upperBound(nodeIndex))
		for pos := nodeIndex; pos < end; pos += 4 {
			if query.Max[0] < ix.boxes[pos] || query.Max[1] < ix.boxes[pos+1] ||
				query.Min[0] > ix.boxes[pos+2] || query.Min[1] > ix.boxes[pos+3] {
				continue
			}
			if nodeIndex < ix.numItems*4 {
				results = append(results, ix.sources[ix.indices[pos>>2]])
			} else {
				stack = append(stack, int(ix.indices[pos>>2]))
			}
		}

		if len(stack) == 0 {
			break
		}
		nodeIndex = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}

	return results
}

// upperBound returns the end of the level containing the node at the given
// box offset.
func (ix *Index) upperBound(nodeIndex int) int {
	for _, b := range ix.levelBounds {
		if nodeIndex < b {
			return b
		}
	}
	return ix.levelBounds[len(ix.levelBounds)-1]
}
