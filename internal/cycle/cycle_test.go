package cycle_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tiltsim/internal/cycle"
	"github.com/san-kum/tiltsim/internal/grid"
	"github.com/san-kum/tiltsim/internal/tilt"
)

// node is a toy state whose fingerprint can be forced to collide.
type node struct {
	id int
	fp uint64
}

func (n node) Fingerprint() uint64 { return n.fp }
func (n node) Equal(o node) bool   { return n.id == o.id }

func successor(collide bool, next ...int) func(node) node {
	return func(n node) node {
		id := next[n.id]
		if collide {
			return node{id: id, fp: 7}
		}
		return node{id: id, fp: uint64(id)}
	}
}

func start(collide bool) node {
	if collide {
		return node{id: 0, fp: 7}
	}
	return node{}
}

func tail(length, loopTo int) []int {
	next := make([]int, length+1)
	for i := 0; i < length; i++ {
		next[i] = i + 1
	}
	next[length] = loopTo
	return next
}

const reference = `
O....#....
O.OO#....#
.....##...
OO.#O....O
.O.....O#.
O.#..O.#.#
..O..#O..O
.......O..
#....###..
#OO..#....
`

type detectorCase struct {
	name  string
	nodes func(max int) cycle.Detector[node]
	grids func(max int) cycle.Detector[grid.Grid]
}

var detectors = []detectorCase{
	{
		name:  "floyd",
		nodes: func(max int) cycle.Detector[node] { return cycle.NewFloyd[node](max) },
		grids: func(max int) cycle.Detector[grid.Grid] { return cycle.NewFloyd[grid.Grid](max) },
	},
	{
		name:  "brent",
		nodes: func(max int) cycle.Detector[node] { return cycle.NewBrent[node](max) },
		grids: func(max int) cycle.Detector[grid.Grid] { return cycle.NewBrent[grid.Grid](max) },
	},
	{
		name:  "memo",
		nodes: func(max int) cycle.Detector[node] { return cycle.NewMemo[node](max) },
		grids: func(max int) cycle.Detector[grid.Grid] { return cycle.NewMemo[grid.Grid](max) },
	},
}

var _ = Describe("Detectors", func() {
	for _, dc := range detectors {
		dc := dc

		Describe(dc.name, func() {
			It("reports its name", func() {
				Expect(dc.nodes(0).Name()).To(Equal(dc.name))
			})

			DescribeTable("finds the loop of a successor table",
				func(collide bool, next []int, pre, period, rep int) {
					rec, err := dc.nodes(0).Detect(start(collide), successor(collide, next...))
					Expect(err).NotTo(HaveOccurred())
					Expect(rec.PreCycleLen).To(Equal(pre))
					Expect(rec.CycleLen).To(Equal(period))
					Expect(rec.Representative.id).To(Equal(rep))
					Expect(rec.Applications).To(BeNumerically(">=", pre+period))
				},
				Entry("fixed point", false, []int{0}, 0, 1, 0),
				Entry("pure loop", false, []int{1, 2, 0}, 0, 3, 0),
				Entry("rho", false, []int{1, 2, 3, 4, 5, 3}, 3, 3, 3),
				Entry("long tail", false, tail(50, 40), 40, 11, 40),
				Entry("self loop after tail", false, tail(9, 9), 9, 1, 9),
				Entry("rho with colliding fingerprints", true, []int{1, 2, 3, 4, 5, 3}, 3, 3, 3),
				Entry("long tail with colliding fingerprints", true, tail(50, 40), 40, 11, 40),
			)

			It("gives up once the step budget is spent", func() {
				climb := func(n node) node { return node{id: n.id + 1, fp: uint64(n.id + 1)} }
				_, err := dc.nodes(100).Detect(node{}, climb)
				Expect(errors.Is(err, cycle.ErrNoCycle)).To(BeTrue())

				var de *cycle.DetectionError
				Expect(errors.As(err, &de)).To(BeTrue())
				Expect(de.Detector).To(Equal(dc.name))
				Expect(de.Steps).To(Equal(100))
			})

			It("finds the reference loop", func() {
				rec, err := dc.grids(0).Detect(grid.MustParse(reference), tilt.Spin)
				Expect(err).NotTo(HaveOccurred())
				Expect(rec.PreCycleLen).To(Equal(3))
				Expect(rec.CycleLen).To(Equal(7))
				Expect(rec.Representative.Equal(cycle.Iterate(grid.MustParse(reference), tilt.Spin, 3))).To(BeTrue())
			})

			It("reports an immediate fixed point for a grid without movable cells", func() {
				g := grid.MustParse("#..\n.#.\n...\n")
				rec, err := dc.grids(0).Detect(g, tilt.Spin)
				Expect(err).NotTo(HaveOccurred())
				Expect(rec.PreCycleLen).To(Equal(0))
				Expect(rec.CycleLen).To(Equal(1))
			})
		})
	}
})

var _ = Describe("Extrapolate", func() {
	var (
		x0  grid.Grid
		rec cycle.Record[grid.Grid]
	)

	BeforeEach(func() {
		x0 = grid.MustParse(reference)
		var err error
		rec, err = cycle.NewFloyd[grid.Grid](0).Detect(x0, tilt.Spin)
		Expect(err).NotTo(HaveOccurred())
	})

	It("matches direct iteration for every target up to 200", func() {
		direct := x0
		for n := 0; n <= 200; n++ {
			got, _, err := cycle.Extrapolate(x0, tilt.Spin, rec, n)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Equal(direct)).To(BeTrue(), "target %d", n)
			direct = tilt.Spin(direct)
		}
	})

	It("agrees for targets congruent modulo the period", func() {
		a, _, err := cycle.Extrapolate(x0, tilt.Spin, rec, rec.PreCycleLen+5)
		Expect(err).NotTo(HaveOccurred())
		for k := 1; k <= 4; k++ {
			b, _, err := cycle.Extrapolate(x0, tilt.Spin, rec, rec.PreCycleLen+5+k*rec.CycleLen*1_000_003)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Equal(a)).To(BeTrue())
		}
	})

	It("applies fewer steps than the period once past the prefix", func() {
		_, used, err := cycle.Extrapolate(x0, tilt.Spin, rec, 1_000_000_000)
		Expect(err).NotTo(HaveOccurred())
		Expect(used).To(BeNumerically("<", rec.CycleLen))
	})

	It("rejects negative targets", func() {
		_, _, err := cycle.Extrapolate(x0, tilt.Spin, rec, -1)
		Expect(err).To(MatchError(cycle.ErrNegativeTarget))
	})
})

var _ = Describe("Iterator", func() {
	It("reaches the reference load after a billion spins", func() {
		it := cycle.NewIterator[grid.Grid](tilt.Spin, nil)
		out, err := it.RunAccelerated(grid.MustParse(reference), 1_000_000_000)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Final.Load()).To(Equal(64))
		Expect(out.Record.PreCycleLen).To(Equal(3))
		Expect(out.Record.CycleLen).To(Equal(7))
		Expect(out.Applications).To(BeNumerically("<", 100))
	})

	It("agrees with the direct path for small targets", func() {
		x0 := grid.MustParse(reference)
		it := cycle.NewIterator[grid.Grid](tilt.Spin, cycle.NewBrent[grid.Grid](0))
		for _, n := range []int{0, 1, 2, 3, 9, 10, 17, 64} {
			direct, err := it.Run(x0, n)
			Expect(err).NotTo(HaveOccurred())
			out, err := it.RunAccelerated(x0, n)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Final.Equal(direct)).To(BeTrue(), "target %d", n)
		}
	})

	It("keeps a zero load for grids without movable cells", func() {
		it := cycle.NewIterator[grid.Grid](tilt.Spin, cycle.NewMemo[grid.Grid](0))
		g := grid.MustParse("#.#\n...\n")
		for _, n := range []int{0, 1, 1_000_000_000} {
			out, err := it.RunAccelerated(g, n)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Final.Load()).To(Equal(0))
		}
	})

	It("surfaces detection failures", func() {
		climb := func(n node) node { return node{id: n.id + 1, fp: uint64(n.id + 1)} }
		it := cycle.NewIterator[node](climb, cycle.NewFloyd[node](10))
		_, err := it.RunAccelerated(node{}, 1_000)
		Expect(err).To(MatchError(cycle.ErrNoCycle))
	})

	It("rejects negative targets", func() {
		it := cycle.NewIterator[grid.Grid](tilt.Spin, nil)
		_, err := it.Run(grid.MustParse(reference), -3)
		Expect(err).To(MatchError(cycle.ErrNegativeTarget))
		_, err = it.RunAccelerated(grid.MustParse(reference), -3)
		Expect(err).To(MatchError(cycle.ErrNegativeTarget))
	})
})
