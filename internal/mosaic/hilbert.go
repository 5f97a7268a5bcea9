package mosaic

// hilbertOrder is the number of bits per axis of the grid box centers are
// quantized onto before computing curve indices; the grid side is
// 1 << hilbertOrder.
const hilbertOrder = 16

// xyToHilbert converts (x, y) to a Hilbert curve index for an n x n grid.
// n must be a power of two. Sorting boxes by this index preserves 2-D spatial
// locality, which is what keeps the packed tree's node overlap low.
func xyToHilbert(x, y, n uint64) uint64 {
	var d uint64
	for s := n >> 1; s > 0; s >>= 1 {
		var rx, ry uint64
		if x&s != 0 {
			rx = 1
		}
		if y&s != 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)

		// Rotate the quadrant so the curve keeps connecting end to end.
		if ry == 0 {
			if rx == 1 {
				x = s<<1 - 1 - x
				y = s<<1 - 1 - y
			}
			x, y = y, x
		}
	}
	return d
}
