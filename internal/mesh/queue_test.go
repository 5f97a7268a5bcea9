package mesh

import (
	"math/rand"
	"sort"
	"testing"
)

func TestQueuePopOrder(t *testing.T) {
	var q triQueue
	rng := rand.New(rand.NewSource(1))

	errs := make([]float64, 100)
	for i := range errs {
		errs[i] = rng.Float64() * 50
		q.push(uint32(i), errs[i])
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(errs)))
	for i, want := range errs {
		if got := q.peekError(); got != want {
			t.Fatalf("pop %d: peek = %g, want %g", i, got, want)
		}
		if _, ok := q.pop(); !ok {
			t.Fatalf("pop %d: queue empty early", i)
		}
	}
	if got := q.peekError(); got != 0 {
		t.Errorf("empty queue peek = %g, want 0", got)
	}
	if _, ok := q.pop(); ok {
		t.Error("pop on empty queue succeeded")
	}
}

func TestQueueRemoveArbitrary(t *testing.T) {
	var q triQueue
	for i := 0; i < 20; i++ {
		q.push(uint32(i), float64(i))
	}

	if !q.remove(10) {
		t.Fatal("remove(10) reported absent")
	}
	if q.remove(10) {
		t.Fatal("remove(10) succeeded twice")
	}
	if q.remove(999) {
		t.Fatal("remove of unknown triangle succeeded")
	}

	// Remaining entries still drain in order, without the removed one.
	want := 19.0
	for {
		tri, ok := q.pop()
		if !ok {
			break
		}
		if tri == 10 {
			t.Fatal("removed triangle came back out")
		}
		if float64(tri) > want {
			t.Fatalf("pop order violated: got %d after %g", tri, want)
		}
		want = float64(tri)
	}
}

func TestQueueRemoveThenReuse(t *testing.T) {
	var q triQueue
	for i := 0; i < 8; i++ {
		q.push(uint32(i), float64(i))
	}
	q.remove(3)
	q.push(3, 100)
	if got := q.peekError(); got != 100 {
		t.Errorf("peek = %g, want 100 after re-push", got)
	}
	tri, _ := q.pop()
	if tri != 3 {
		t.Errorf("pop = %d, want 3", tri)
	}
}
