package cycle

// Outcome is the result of an accelerated run.
type Outcome[T any] struct {
	Final  T
	Record Record[T]
	// Applications counts every call to f, detection included.
	Applications int
}

// Iterator repeatedly applies one transition function.
type Iterator[T State[T]] struct {
	f        func(T) T
	detector Detector[T]
}

// NewIterator returns an Iterator over f. A nil detector selects Floyd with
// the default step budget.
func NewIterator[T State[T]](f func(T) T, detector Detector[T]) *Iterator[T] {
	if detector == nil {
		detector = NewFloyd[T](0)
	}
	return &Iterator[T]{f: f, detector: detector}
}

// Run applies f n times directly.
func (it *Iterator[T]) Run(x0 T, n int) (T, error) {
	if n < 0 {
		return x0, ErrNegativeTarget
	}
	return Iterate(x0, it.f, n), nil
}

// RunAccelerated returns f applied n times to x0 in O(PreCycleLen+CycleLen)
// applications, independent of n.
func (it *Iterator[T]) RunAccelerated(x0 T, n int) (Outcome[T], error) {
	if n < 0 {
		return Outcome[T]{Final: x0}, ErrNegativeTarget
	}
	rec, err := it.detector.Detect(x0, it.f)
	if err != nil {
		return Outcome[T]{Final: x0}, err
	}
	final, used, err := Extrapolate(x0, it.f, rec, n)
	if err != nil {
		return Outcome[T]{Final: x0}, err
	}
	return Outcome[T]{Final: final, Record: rec, Applications: rec.Applications + used}, nil
}

// Detect exposes the underlying detector.
func (it *Iterator[T]) Detect(x0 T) (Record[T], error) {
	return it.detector.Detect(x0, it.f)
}
