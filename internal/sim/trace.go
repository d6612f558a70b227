package sim

// trace keeps the latest cap loads of a run.
type trace struct {
	cap   int
	from  int
	loads []int
}

// expected is a sizing hint only.
func newTrace(capacity, expected int) *trace {
	if capacity <= 0 {
		capacity = DefaultTraceCap
	}
	return &trace{cap: capacity, loads: make([]int, 0, max(min(expected, 2*capacity), 0))}
}

func (t *trace) add(load int) {
	// Compact once the buffer holds two windows so appends stay amortized O(1).
	if len(t.loads) == 2*t.cap {
		n := copy(t.loads, t.loads[t.cap:])
		t.loads = t.loads[:n]
		t.from += t.cap
	}
	t.loads = append(t.loads, load)
}

func (t *trace) result() (from int, loads []int) {
	if extra := len(t.loads) - t.cap; extra > 0 {
		return t.from + extra, append([]int(nil), t.loads[extra:]...)
	}
	return t.from, t.loads
}
