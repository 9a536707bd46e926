package sim

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tiltbox/internal/capture"
	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/physics"
)

var (
	still   = dynamo.Input{}
	gravity = dynamo.Input{Force: dynamo.Vec2{X: 0, Y: 0.5}}
)

func place(e *Engine, i int, x, y float64) {
	e.state.Bodies[i].Position = dynamo.Vec2{X: x, Y: y}
	e.state.Bodies[i].Velocity = dynamo.Vec2{}
}

func pockets(e *Engine) {
	place(e, 0, 15, 15)
	place(e, 1, 585, 15)
	place(e, 2, 15, 585)
	place(e, 3, 585, 585)
}

func kinds(events []dynamo.Event) []dynamo.EventKind {
	out := make([]dynamo.EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

type recorder struct{ events []dynamo.Event }

func (r *recorder) OnEvent(ev dynamo.Event) { r.events = append(r.events, ev) }

var _ = Describe("Engine", func() {
	var eng *Engine

	BeforeEach(func() {
		var err error
		eng, err = New(dynamo.DefaultParams(), 600)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("starts every body at rest in its quadrant center", func() {
			st := eng.State()
			Expect(st.Bodies).To(HaveLen(4))
			Expect(st.Bodies[0].Position).To(Equal(dynamo.Vec2{X: 150, Y: 150}))
			Expect(st.Bodies[3].Position).To(Equal(dynamo.Vec2{X: 450, Y: 450}))
			for _, c := range st.Captures {
				Expect(c).To(Equal(capture.Initial()))
			}
			Expect(st.Zones).To(HaveLen(5))
		})

		It("rejects invalid parameters and sizes", func() {
			p := dynamo.DefaultParams()
			p.Friction = 1.5
			_, err := New(p, 600)
			Expect(errors.Is(err, dynamo.ErrInvalidParams)).To(BeTrue())

			_, err = New(dynamo.DefaultParams(), 0)
			Expect(errors.Is(err, dynamo.ErrInvalidArena)).To(BeTrue())
		})
	})

	Describe("falling under the default tilt", func() {
		It("bounces off the bottom inset edge at 90% speed", func() {
			bounds, err := eng.state.Arena.QuadrantBounds(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(bounds.MaxY).To(Equal(298.0))

			prev := 0.0
			for i := 0; i < 200; i++ {
				r := eng.Tick(gravity)
				vy := r.Bodies[0].Velocity.Y
				if vy < 0 {
					Expect(vy).To(Equal(-((prev + 0.5) * 0.99) * 0.9))
					Expect(r.Bodies[0].Position.Y).To(Equal(298.0 - 15))
					Expect(kinds(r.Events)).To(ContainElement(dynamo.EventBounce))
					return
				}
				Expect(vy).To(BeNumerically(">", prev))
				prev = vy
			}
			Fail("body never bounced")
		})
	})

	Describe("capture", func() {
		It("fires exactly one capture event for a resting body", func() {
			place(eng, 0, 15, 15)

			r := eng.Tick(still)
			Expect(r.Events).To(ContainElement(dynamo.Capture(0, 0)))
			Expect(r.Captures[0]).To(Equal(capture.State{Captured: true, ZoneID: 0}))
			Expect(r.Index[0]).To(BeTrue())

			r = eng.Tick(still)
			Expect(r.Events).NotTo(ContainElement(HaveField("Kind", dynamo.EventCapture)))
			Expect(r.Captures[0].Captured).To(BeTrue())
		})

		It("escapes once a strong push moves the body out", func() {
			place(eng, 0, 15, 15)
			eng.Tick(still)

			push := dynamo.Input{Force: dynamo.Vec2{X: 3, Y: 3}}
			r := eng.Tick(push)
			Expect(r.Events).To(ContainElement(dynamo.Escape(0, 0)))
			Expect(r.Captures[0]).To(Equal(capture.Initial()))
			Expect(r.Index[0]).To(BeFalse())
		})

		It("keeps the capture invariants over a long run", func() {
			inputs := []dynamo.Input{
				{Force: dynamo.Vec2{X: -0.6, Y: -0.6}},
				{Force: dynamo.Vec2{X: 0.6, Y: 0.6}},
				{Force: dynamo.Vec2{X: -0.6, Y: 0.6}},
				still,
			}
			for i := 0; i < 2000 && !eng.Won(); i++ {
				r := eng.Tick(inputs[(i/150)%len(inputs)])
				for _, c := range r.Captures {
					Expect(c.Captured).To(Equal(c.ZoneID != physics.NoZone))
				}
				Expect(r.Index).To(Equal(capture.BuildIndex(eng.state.Zones, r.Captures)))
			}
		})
	})

	Describe("winning", func() {
		It("latches when every body rests in a distinct corner", func() {
			pockets(eng)

			r := eng.Tick(still)
			Expect(r.Won).To(BeTrue())
			Expect(kinds(r.Events)).To(HaveLen(5))
			Expect(kinds(r.Events)[4]).To(Equal(dynamo.EventWin))

			before := r.Bodies
			r = eng.Tick(dynamo.Input{Force: dynamo.Vec2{X: 5, Y: 5}})
			Expect(r.Events).To(BeEmpty())
			Expect(r.Bodies).To(Equal(before))
			Expect(r.Tick).To(Equal(1))
		})

		It("does not count two bodies sharing the center zone", func() {
			place(eng, 0, 283, 283)
			place(eng, 1, 317, 283)
			place(eng, 2, 15, 585)
			place(eng, 3, 585, 585)

			r := eng.Tick(still)
			Expect(r.Captures[0].ZoneID).To(Equal(physics.CenterZoneID))
			Expect(r.Captures[1].ZoneID).To(Equal(physics.CenterZoneID))
			Expect(r.Won).To(BeFalse())
		})

		It("restarts after Reset", func() {
			pockets(eng)
			eng.Tick(still)
			Expect(eng.Won()).To(BeTrue())

			eng.Reset()
			Expect(eng.Won()).To(BeFalse())
			Expect(eng.State().Tick).To(Equal(0))
			r := eng.Tick(gravity)
			Expect(r.Tick).To(Equal(1))
		})
	})

	Describe("resize", func() {
		It("resets bodies and captures to the new arena", func() {
			place(eng, 0, 15, 15)
			eng.Tick(still)
			Expect(eng.State().Captures[0].Captured).To(BeTrue())

			Expect(eng.Resize(800)).To(Succeed())
			st := eng.State()
			Expect(st.Arena.Size).To(Equal(800.0))
			Expect(st.Bodies[0].Position).To(Equal(dynamo.Vec2{X: 200, Y: 200}))
			Expect(st.Bodies[3].Position).To(Equal(dynamo.Vec2{X: 600, Y: 600}))
			for i, b := range st.Bodies {
				Expect(b.Velocity).To(Equal(dynamo.Vec2{}))
				Expect(st.Captures[i]).To(Equal(capture.Initial()))
			}
			Expect(st.Index).NotTo(ContainElement(true))
			Expect(st.Zones[4].Position).To(Equal(dynamo.Vec2{X: 800, Y: 800}))
		})

		It("ignores sizes outside the arena domain", func() {
			Expect(errors.Is(eng.Resize(-1), dynamo.ErrInvalidArena)).To(BeTrue())
			Expect(eng.State().Arena.Size).To(Equal(600.0))
		})
	})

	Describe("observers", func() {
		It("receive every event in emission order", func() {
			rec := &recorder{}
			eng.AddObserver(rec)
			pockets(eng)

			r := eng.Tick(still)
			Expect(rec.events).To(Equal(r.Events))
		})
	})

	Describe("diagnostics", func() {
		It("logs and keeps ticking for an unknown quadrant", func() {
			var buf bytes.Buffer
			logged, err := New(dynamo.DefaultParams(), 600, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
			Expect(err).NotTo(HaveOccurred())
			logged.state.Bodies[1].QuadrantID = 9

			Expect(func() { logged.Tick(gravity) }).NotTo(Panic())
			Expect(buf.String()).To(ContainSubstring("quadrant=9"))
		})
	})

	Describe("Run", func() {
		It("stops on win", func() {
			pockets(eng)
			res, err := eng.Run(context.Background(), Constant(still), 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Won).To(BeTrue())
			Expect(res.WinTick).To(Equal(1))
			Expect(res.Stopped).To(Equal("won"))
		})

		It("stops when the source runs dry", func() {
			src := InputFunc(func(tick int) (dynamo.Input, bool) { return gravity, tick < 10 })
			res, err := eng.Run(context.Background(), src, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ticks).To(Equal(10))
			Expect(res.Samples).To(HaveLen(10))
			Expect(res.Stopped).To(Equal("exhausted"))
		})

		It("returns the partial result on cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := eng.Run(ctx, Constant(gravity), 100)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Ticks).To(BeZero())
		})

		It("rejects a non-positive tick budget", func() {
			_, err := eng.Run(context.Background(), Constant(gravity), 0)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("runs independent engines to the same outcome", func() {
		ens := NewEnsemble(dynamo.DefaultParams(), 600, 3, func(int) InputSource { return Constant(gravity) })
		results, err := ens.Run(context.Background(), 50)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for _, r := range results[1:] {
			Expect(r.Final.Bodies).To(Equal(results[0].Final.Bodies))
		}
	})
})
