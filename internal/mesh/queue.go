package mesh

// triQueue is a binary max-heap of (triangle, error) entries with a side
// table mapping triangle id to heap slot, so legalization can remove
// arbitrary triangles in O(log n).
type triQueue struct {
	tris  []uint32  // heap slots: triangle ids
	errs  []float64 // heap slots: error keyed on
	index []int32   // triangle id -> heap slot, -1 when absent
}

// ensure grows the index table to cover triangle id t.
func (q *triQueue) ensure(t uint32) {
	for uint32(len(q.index)) <= t {
		q.index = append(q.index, -1)
	}
}

// push inserts triangle t with the given error.
func (q *triQueue) push(t uint32, err float64) {
	q.ensure(t)
	i := len(q.tris)
	q.tris = append(q.tris, t)
	q.errs = append(q.errs, err)
	q.index[t] = int32(i)
	q.up(i)
}

// peekError returns the largest error in the queue, or 0 when empty.
func (q *triQueue) peekError() float64 {
	if len(q.errs) == 0 {
		return 0
	}
	return q.errs[0]
}

// pop removes and returns the triangle with the largest error.
func (q *triQueue) pop() (uint32, bool) {
	if len(q.tris) == 0 {
		return 0, false
	}
	t := q.tris[0]
	q.index[t] = -1
	q.removeSlot(0)
	return t, true
}

// remove deletes triangle t from the heap. Reports whether it was present.
func (q *triQueue) remove(t uint32) bool {
	if t >= uint32(len(q.index)) {
		return false
	}
	i := q.index[t]
	if i < 0 {
		return false
	}
	q.index[t] = -1
	q.removeSlot(int(i))
	return true
}

// removeSlot deletes heap slot i by swapping in the last element and sifting.
func (q *triQueue) removeSlot(i int) {
	last := len(q.tris) - 1
	if i != last {
		q.tris[i] = q.tris[last]
		q.errs[i] = q.errs[last]
		q.index[q.tris[i]] = int32(i)
	}
	q.tris = q.tris[:last]
	q.errs = q.errs[:last]
	if i < last {
		q.up(i)
		q.down(i)
	}
}

func (q *triQueue) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if q.errs[parent] >= q.errs[i] {
			break
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *triQueue) down(i int) {
	n := len(q.tris)
	for {
		largest := i
		if l := 2*i + 1; l < n && q.errs[l] > q.errs[largest] {
			largest = l
		}
		if r := 2*i + 2; r < n && q.errs[r] > q.errs[largest] {
			largest = r
		}
		if largest == i {
			return
		}
		q.swap(i, largest)
		i = largest
	}
}

func (q *triQueue) swap(i, j int) {
	q.tris[i], q.tris[j] = q.tris[j], q.tris[i]
	q.errs[i], q.errs[j] = q.errs[j], q.errs[i]
	q.index[q.tris[i]] = int32(i)
	q.index[q.tris[j]] = int32(j)
}
