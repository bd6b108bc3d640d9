package domain

// DeltaWindowSize is the number of per-poll deltas kept for averaging.
const DeltaWindowSize = 3

// DeltaWindow keeps the most recent per-poll deltas, newest first.
// Push always allocates a fresh backing array, so copies of a window
// never observe each other's pushes.
type DeltaWindow struct {
	values []int64
}

func NewDeltaWindow(values ...int64) DeltaWindow {
	var w DeltaWindow
	for i := len(values) - 1; i >= 0; i-- {
		w.Push(values[i])
	}
	return w
}

// Push prepends delta and evicts the oldest entry past capacity.
func (w *DeltaWindow) Push(delta int64) {
	keep := len(w.values)
	if keep > DeltaWindowSize-1 {
		keep = DeltaWindowSize - 1
	}

	next := make([]int64, 0, DeltaWindowSize)
	next = append(next, delta)
	next = append(next, w.values[:keep]...)
	w.values = next
}

func (w *DeltaWindow) Reset() {
	w.values = nil
}

func (w DeltaWindow) Len() int {
	return len(w.values)
}

// Values returns a copy of the window, newest first. Never nil.
func (w DeltaWindow) Values() []int64 {
	out := make([]int64, len(w.values))
	copy(out, w.values)
	return out
}

// Average returns the floor of the arithmetic mean. ok is false for an
// empty window.
func (w DeltaWindow) Average() (avg int64, ok bool) {
	if len(w.values) == 0 {
		return 0, false
	}

	var sum int64
	for _, v := range w.values {
		sum += v
	}
	return floorDiv(sum, int64(len(w.values))), true
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
