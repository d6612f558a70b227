package cycle

// DefaultMaxSteps bounds how many applications a detector may spend.
const DefaultMaxSteps = 1_000_000

// State is anything that can be compared cheaply by fingerprint and exactly
// by Equal. Equal values must share a fingerprint.
type State[T any] interface {
	Fingerprint() uint64
	Equal(T) bool
}

// Record describes the loop reached from a starting state.
type Record[T any] struct {
	PreCycleLen    int
	CycleLen       int
	Representative T
	// Applications counts the calls to f spent finding the loop.
	Applications int
}

type Detector[T State[T]] interface {
	Name() string
	Detect(x0 T, f func(T) T) (Record[T], error)
}

func same[T State[T]](a, b T) bool {
	return a.Fingerprint() == b.Fingerprint() && a.Equal(b)
}

// budget counts applications of f and refuses to exceed max.
type budget[T any] struct {
	name string
	f    func(T) T
	used int
	max  int
}

func newBudget[T any](name string, f func(T) T, max int) *budget[T] {
	if max <= 0 {
		max = DefaultMaxSteps
	}
	return &budget[T]{name: name, f: f, max: max}
}

func (b *budget[T]) apply(x T) (T, error) {
	if b.used >= b.max {
		return x, &DetectionError{Detector: b.name, Steps: b.used, Wrapped: ErrNoCycle}
	}
	b.used++
	return b.f(x), nil
}

// Iterate applies f to x0 n times.
func Iterate[T any](x0 T, f func(T) T, n int) T {
	x := x0
	for i := 0; i < n; i++ {
		x = f(x)
	}
	return x
}

// Extrapolate returns f applied n times to x0 using rec, along with the
// number of applications it actually performed.
func Extrapolate[T any](x0 T, f func(T) T, rec Record[T], n int) (T, int, error) {
	if n < 0 {
		return x0, 0, ErrNegativeTarget
	}
	if n < rec.PreCycleLen {
		return Iterate(x0, f, n), n, nil
	}
	if rec.CycleLen < 1 {
		panic("cycle: record with non-positive cycle length")
	}
	offset := (n - rec.PreCycleLen) % rec.CycleLen
	return Iterate(rec.Representative, f, offset), offset, nil
}
