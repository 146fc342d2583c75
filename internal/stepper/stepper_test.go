package stepper

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dtgrowth/internal/funcs"
)

func tableParams(interpolate bool) Params {
	p := DefaultParams()
	p.TimeT = []float64{0, 1, 2}
	p.TimeDT = []float64{0.1, 0.2, 0.3}
	p.Interpolate = interpolate
	return p
}

func functionParams(f funcs.Func) Params {
	p := DefaultParams()
	p.Function = f
	return p
}

var _ = Describe("Stepper", func() {
	var clock *fakeClock

	BeforeEach(func() {
		clock = &fakeClock{converged: true}
	})

	Describe("construction", func() {
		It("rejects both a table and a function", func() {
			p := tableParams(true)
			p.Function = funcs.NewConstant(0.1)
			_, err := New(p, clock)
			Expect(err).To(MatchError(ErrConfiguration))
		})

		It("rejects neither a table nor a function", func() {
			_, err := New(DefaultParams(), clock)
			Expect(err).To(MatchError(ErrConfiguration))
		})

		It("rejects a table with mismatched lengths", func() {
			p := DefaultParams()
			p.TimeT = []float64{0, 1}
			p.TimeDT = []float64{0.1}
			_, err := New(p, clock)
			Expect(err).To(MatchError(ErrConfiguration))
		})

		DescribeTable("rejects malformed tables with a domain error",
			func(times, dts []float64) {
				p := DefaultParams()
				p.TimeT = times
				p.TimeDT = dts
				var err error
				Expect(func() { _, err = New(p, clock) }).NotTo(Panic())
				Expect(err).To(MatchError(ErrDomain))
			},
			Entry("decreasing times", []float64{0, 2, 1}, []float64{0.1, 0.2, 0.3}),
			Entry("repeated times", []float64{0, 1, 1}, []float64{0.1, 0.2, 0.3}),
			Entry("NaN time", []float64{0, math.NaN(), 2}, []float64{0.1, 0.2, 0.3}),
			Entry("NaN dt", []float64{0, 1, 2}, []float64{0.1, math.NaN(), 0.3}),
		)

		It("rejects non-positive growth factors and negative min_dt", func() {
			p := functionParams(funcs.NewConstant(0.1))
			p.GrowthFactor = 0
			_, err := New(p, clock)
			Expect(err).To(MatchError(ErrConfiguration))

			p = functionParams(funcs.NewConstant(0.1))
			p.MinDT = -1
			_, err = New(p, clock)
			Expect(err).To(MatchError(ErrConfiguration))
		})

		It("rejects a nil clock", func() {
			_, err := New(functionParams(funcs.NewConstant(0.1)), nil)
			Expect(err).To(MatchError(ErrConfiguration))
		})

		It("copies piecewise breakpoints into the knots", func() {
			f, err := funcs.NewPiecewiseConstant([]float64{0, 1, 2.5}, []float64{0.1, 0.2, 0.3}, funcs.Left, 0)
			Expect(err).NotTo(HaveOccurred())
			s, err := New(functionParams(f), clock)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Knots()).To(Equal([]float64{0, 1, 2.5}))
		})

		It("has no knots for a plain function", func() {
			s, err := New(functionParams(funcs.NewConstant(0.1)), clock)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Knots()).To(BeEmpty())
		})

		It("leaves table knots empty unless asked to sync them", func() {
			s, err := New(tableParams(true), clock)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Knots()).To(BeEmpty())

			p := tableParams(true)
			p.SyncTableKnots = true
			s, err = New(p, clock)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Knots()).To(Equal([]float64{0, 1, 2}))
		})
	})

	Describe("knot purging", func() {
		var s *Stepper

		BeforeEach(func() {
			f, err := funcs.NewPiecewiseLinear([]float64{0, 1, 2, 3}, []float64{0.1, 0.1, 0.1, 0.1}, 0)
			Expect(err).NotTo(HaveOccurred())
			s, err = New(functionParams(f), clock)
			Expect(err).NotTo(HaveOccurred())
		})

		It("drops knots at or before the current time on Init", func() {
			clock.t = 1
			s.Init()
			Expect(s.Knots()).To(Equal([]float64{2, 3}))
		})

		It("drops knots within the absolute tolerance", func() {
			clock.t = 2 - 1e-11
			s.Init()
			Expect(s.Knots()).To(Equal([]float64{3}))
		})

		It("keeps knots just beyond the tolerance", func() {
			clock.t = 2 - 1e-8
			s.Init()
			Expect(s.Knots()).To(Equal([]float64{2, 3}))
		})

		It("drops knots after an accepted step", func() {
			s.Init()
			clock.t = 2.5
			s.PostStep()
			k, ok := s.NextKnot()
			Expect(ok).To(BeTrue())
			Expect(k).To(Equal(3.0))

			clock.t = 3
			s.PostStep()
			_, ok = s.NextKnot()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("table source", func() {
		It("looks up the step stepwise", func() {
			s, err := New(tableParams(false), clock)
			Expect(err).NotTo(HaveOccurred())

			cases := map[float64]float64{
				-0.5: 0.1,
				0:    0.1,
				0.5:  0.1,
				1:    0.2,
				1.5:  0.2,
				2:    0.3,
				10:   0.3,
			}
			for t, want := range cases {
				clock.t = t
				Expect(s.ComputeDT()).To(Equal(want), "t=%g", t)
			}
		})

		It("treats round-off below a breakpoint as the breakpoint", func() {
			s, err := New(tableParams(false), clock)
			Expect(err).NotTo(HaveOccurred())
			clock.t = 1 - 1e-15
			Expect(s.ComputeDT()).To(Equal(0.2))
			clock.t = 2 - 1e-15
			Expect(s.ComputeDT()).To(Equal(0.3))
		})

		It("interpolates linearly", func() {
			s, err := New(tableParams(true), clock)
			Expect(err).NotTo(HaveOccurred())
			clock.t = 1.5
			Expect(s.ComputeDT()).To(BeNumerically("~", 0.25, 1e-12))
			clock.t = 3
			Expect(s.ComputeDT()).To(BeNumerically("~", 0.3, 1e-12))
		})
	})

	Describe("computing the step", func() {
		It("lands exactly on the next knot", func() {
			f, err := funcs.NewPiecewiseConstant([]float64{0, 2}, []float64{0.5, 0.5}, funcs.Left, 0)
			Expect(err).NotTo(HaveOccurred())
			s, err := New(functionParams(f), clock)
			Expect(err).NotTo(HaveOccurred())

			clock.t = 1.9
			s.Init()
			dt := s.ComputeDT()
			Expect(dt).To(BeNumerically("~", 0.1, 1e-12))
			Expect(clock.t + dt).To(BeNumerically("~", 2.0, 1e-12))
		})

		It("does not clamp when the knot is out of reach", func() {
			f, err := funcs.NewPiecewiseConstant([]float64{0, 2}, []float64{0.5, 0.5}, funcs.Left, 0)
			Expect(err).NotTo(HaveOccurred())
			s, err := New(functionParams(f), clock)
			Expect(err).NotTo(HaveOccurred())

			clock.t = 1.0
			s.Init()
			Expect(s.ComputeDT()).To(Equal(0.5))
		})

		It("honors the minimum step", func() {
			p := functionParams(funcs.NewConstant(1e-6))
			p.MinDT = 1e-3
			s, err := New(p, clock)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.ComputeInitialDT()).To(Equal(1e-3))
			Expect(s.ComputeDT()).To(Equal(1e-3))
		})

		It("caps growth after a failed solve", func() {
			p := functionParams(funcs.NewConstant(1.0))
			p.GrowthFactor = 1.5
			s, err := New(p, clock)
			Expect(err).NotTo(HaveOccurred())

			clock.dt = 0.1
			clock.converged = false
			Expect(s.ComputeDT()).To(BeNumerically("~", 0.15, 1e-12))
		})

		It("caps growth on regular steps too", func() {
			p := functionParams(funcs.NewConstant(1.0))
			p.GrowthFactor = 2
			s, err := New(p, clock)
			Expect(err).NotTo(HaveOccurred())

			clock.dt = 0.1
			Expect(s.ComputeDT()).To(BeNumerically("~", 0.2, 1e-12))
		})

		It("does not cap when the growth factor is infinite", func() {
			s, err := New(functionParams(funcs.NewConstant(1.0)), clock)
			Expect(err).NotTo(HaveOccurred())

			clock.dt = 1e-6
			clock.converged = false
			Expect(s.ComputeDT()).To(Equal(1.0))
		})

		It("does not cap a shrinking step", func() {
			p := functionParams(funcs.NewConstant(0.05))
			p.GrowthFactor = 1.1
			s, err := New(p, clock)
			Expect(err).NotTo(HaveOccurred())

			clock.dt = 0.1
			clock.converged = false
			Expect(s.ComputeDT()).To(Equal(0.05))
		})

		It("skips the growth cap without a previous step", func() {
			p := functionParams(funcs.NewConstant(0.3))
			p.GrowthFactor = 1.2
			s, err := New(p, clock)
			Expect(err).NotTo(HaveOccurred())

			clock.dt = 0
			clock.converged = false
			Expect(s.ComputeDT()).To(Equal(0.3))
			Expect(s.ComputeInitialDT()).To(Equal(0.3))
		})

		It("ignores growth bounds for the initial step", func() {
			p := functionParams(funcs.NewConstant(1.0))
			p.GrowthFactor = 1.5
			s, err := New(p, clock)
			Expect(err).NotTo(HaveOccurred())

			clock.dt = 0.1
			Expect(s.ComputeInitialDT()).To(Equal(1.0))
		})

		It("samples time-only functions", func() {
			f := funcs.TimeFunc(func(t float64) float64 { return 0.1 * (1 + t) })
			s, err := New(functionParams(f), clock)
			Expect(err).NotTo(HaveOccurred())
			clock.t = 4
			Expect(s.ComputeDT()).To(BeNumerically("~", 0.5, 1e-12))
		})
	})

	Describe("rejecting a step", func() {
		It("records the cutback until the next computation", func() {
			p := functionParams(funcs.NewConstant(1.0))
			p.GrowthFactor = 1.5
			s, err := New(p, clock)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.CutbackOccurred()).To(BeFalse())
			s.RejectStep()
			Expect(s.CutbackOccurred()).To(BeTrue())

			clock.dt = 0.1
			clock.converged = true
			Expect(s.ComputeDT()).To(BeNumerically("~", 0.15, 1e-12))
			Expect(s.CutbackOccurred()).To(BeFalse())
		})
	})

	Describe("invariants over a stepping sequence", func() {
		It("never oversteps a knot and never goes below min_dt", func() {
			f, err := funcs.NewPiecewiseLinear(
				[]float64{0, 0.35, 1.0, 1.7, 3.0},
				[]float64{0.05, 0.2, 0.4, 0.1, 0.6}, 0)
			Expect(err).NotTo(HaveOccurred())

			p := functionParams(f)
			p.MinDT = 0.01
			p.GrowthFactor = 1.3
			s, err := New(p, clock)
			Expect(err).NotTo(HaveOccurred())

			s.Init()
			clock.dt = s.ComputeInitialDT()
			for clock.t < 4 {
				dt := s.ComputeDT()
				Expect(dt).To(BeNumerically(">=", p.MinDT))
				if k, ok := s.NextKnot(); ok && k-clock.t >= p.MinDT {
					Expect(clock.t + dt).To(BeNumerically("<=", k+1e-12))
				}
				if clock.dt > 0 {
					Expect(dt).To(BeNumerically("<=", clock.dt*p.GrowthFactor+1e-12))
				}
				clock.t += dt
				clock.dt = dt
				s.PostStep()
				for _, k := range s.Knots() {
					Expect(k).To(BeNumerically(">", clock.t))
				}
			}
			Expect(s.Knots()).To(BeEmpty())
			Expect(math.IsNaN(clock.t)).To(BeFalse())
		})
	})
})
