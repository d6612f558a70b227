package cycle

// Floyd finds the loop with a tortoise moving one step and a hare moving two.
type Floyd[T State[T]] struct {
	MaxSteps int
}

// NewFloyd returns a Floyd detector. A non-positive maxSteps selects
// DefaultMaxSteps.
func NewFloyd[T State[T]](maxSteps int) *Floyd[T] {
	return &Floyd[T]{MaxSteps: maxSteps}
}

func (d *Floyd[T]) Name() string { return "floyd" }

func (d *Floyd[T]) Detect(x0 T, f func(T) T) (Record[T], error) {
	b := newBudget(d.Name(), f, d.MaxSteps)

	tortoise, err := b.apply(x0)
	if err != nil {
		return Record[T]{}, err
	}
	hare, err := b.apply(tortoise)
	if err != nil {
		return Record[T]{}, err
	}
	for !same(tortoise, hare) {
		if tortoise, err = b.apply(tortoise); err != nil {
			return Record[T]{}, err
		}
		if hare, err = b.apply(hare); err != nil {
			return Record[T]{}, err
		}
		if hare, err = b.apply(hare); err != nil {
			return Record[T]{}, err
		}
	}

	// The hare is now a multiple of the period ahead; walking both at the
	// same speed from x0 and the meeting point lands on the loop entry.
	pre := 0
	tortoise = x0
	for !same(tortoise, hare) {
		if tortoise, err = b.apply(tortoise); err != nil {
			return Record[T]{}, err
		}
		if hare, err = b.apply(hare); err != nil {
			return Record[T]{}, err
		}
		pre++
	}

	period := 1
	if hare, err = b.apply(tortoise); err != nil {
		return Record[T]{}, err
	}
	for !same(tortoise, hare) {
		if hare, err = b.apply(hare); err != nil {
			return Record[T]{}, err
		}
		period++
	}

	return Record[T]{PreCycleLen: pre, CycleLen: period, Representative: tortoise, Applications: b.used}, nil
}

// Brent finds the period first by teleporting the tortoise to the hare at
// powers of two, then locates the loop entry.
type Brent[T State[T]] struct {
	MaxSteps int
}

func NewBrent[T State[T]](maxSteps int) *Brent[T] {
	return &Brent[T]{MaxSteps: maxSteps}
}

func (d *Brent[T]) Name() string { return "brent" }

func (d *Brent[T]) Detect(x0 T, f func(T) T) (Record[T], error) {
	b := newBudget(d.Name(), f, d.MaxSteps)

	power, period := 1, 1
	tortoise := x0
	hare, err := b.apply(x0)
	if err != nil {
		return Record[T]{}, err
	}
	for !same(tortoise, hare) {
		if power == period {
			tortoise = hare
			power *= 2
			period = 0
		}
		if hare, err = b.apply(hare); err != nil {
			return Record[T]{}, err
		}
		period++
	}

	tortoise, hare = x0, x0
	for i := 0; i < period; i++ {
		if hare, err = b.apply(hare); err != nil {
			return Record[T]{}, err
		}
	}

	pre := 0
	for !same(tortoise, hare) {
		if tortoise, err = b.apply(tortoise); err != nil {
			return Record[T]{}, err
		}
		if hare, err = b.apply(hare); err != nil {
			return Record[T]{}, err
		}
		pre++
	}

	return Record[T]{PreCycleLen: pre, CycleLen: period, Representative: tortoise, Applications: b.used}, nil
}

// Memo records every visited state keyed by fingerprint. It applies f only
// PreCycleLen+CycleLen times but holds that many states in memory. The table
// lives for one Detect call.
type Memo[T State[T]] struct {
	MaxSteps int
}

func NewMemo[T State[T]](maxSteps int) *Memo[T] {
	return &Memo[T]{MaxSteps: maxSteps}
}

func (d *Memo[T]) Name() string { return "memo" }

type visit[T any] struct {
	index int
	state T
}

func (d *Memo[T]) Detect(x0 T, f func(T) T) (Record[T], error) {
	b := newBudget(d.Name(), f, d.MaxSteps)
	seen := make(map[uint64][]visit[T])

	x := x0
	for i := 0; ; i++ {
		fp := x.Fingerprint()
		// Fingerprints may collide; the chain holds every state seen under fp.
		for _, v := range seen[fp] {
			if v.state.Equal(x) {
				return Record[T]{PreCycleLen: v.index, CycleLen: i - v.index, Representative: v.state, Applications: b.used}, nil
			}
		}
		seen[fp] = append(seen[fp], visit[T]{index: i, state: x})

		var err error
		if x, err = b.apply(x); err != nil {
			return Record[T]{}, err
		}
	}
}
