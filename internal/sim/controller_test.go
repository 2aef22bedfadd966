package sim_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/corearena/internal/engine/enginetest"
	"github.com/san-kum/corearena/internal/player"
	"github.com/san-kum/corearena/internal/sim"
)

var _ = Describe("Controller", func() {
	var (
		factory   *enginetest.Factory
		clock     *sim.ManualClock
		queue     *sim.Queue
		c         *sim.Controller
		refreshes int
	)

	roster := []player.Ready{
		{ID: 3, ByteCode: []byte{3}},
		{ID: -8, ByteCode: []byte{8}},
		{ID: 2},
		{ID: 1, ByteCode: []byte{1}},
	}

	BeforeEach(func() {
		factory = &enginetest.Factory{}
		clock = sim.NewManualClock(time.Unix(0, 0))
		queue = sim.NewQueue(clock)

		var err error
		c, err = sim.New(factory, sim.WithScheduler(queue), sim.WithClock(clock))
		Expect(err).NotTo(HaveOccurred())

		refreshes = 0
		c.AddObserver(sim.ObserverFunc(func(*sim.Controller) { refreshes++ }))
	})

	It("starts paused on an empty engine", func() {
		Expect(factory.Finishes).To(Equal(1))
		Expect(c.Playing()).To(BeFalse())
		Expect(c.Speed()).To(Equal(1))
		Expect(c.Cycles()).To(Equal(0))
		Expect(c.Players()).To(BeEmpty())
	})

	It("rejects a non-positive rate", func() {
		_, err := sim.New(factory, sim.WithTargetUPS(0))
		Expect(err).To(MatchError(sim.ErrInvalidOption))
		_, err = sim.New(factory, sim.WithMaxSpeed(-1))
		Expect(err).To(MatchError(sim.ErrInvalidOption))
		_, err = sim.New(factory, sim.WithSpeed(3))
		Expect(err).To(MatchError(sim.ErrInvalidOption))
		_, err = sim.New(factory, sim.WithSpeed(128))
		Expect(err).To(MatchError(sim.ErrInvalidOption))
	})

	It("starts at the configured speed", func() {
		c, err := sim.New(factory, sim.WithSpeed(16))
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Speed()).To(Equal(16))
	})

	Describe("SetPlayers", func() {
		It("folds only ready players, by ascending id", func() {
			Expect(c.SetPlayers(roster)).To(Succeed())

			var ids []int32
			for _, p := range factory.Last().Players {
				ids = append(ids, p.ID)
			}
			Expect(ids).To(Equal([]int32{-8, 1, 3}))
			Expect(c.Engine()).To(BeIdenticalTo(factory.Last()))
			Expect(refreshes).To(Equal(1))
		})

		It("propagates build failures", func() {
			factory.FinishErr = errors.New("no arena")
			Expect(c.SetPlayers(roster)).To(MatchError(factory.FinishErr))
		})

		It("keeps the running roster when a build fails", func() {
			Expect(c.SetPlayers(roster[:1])).To(Succeed())
			running := factory.Last()
			Expect(c.Tick(4)).To(Succeed())

			factory.FinishErr = errors.New("too many players")
			Expect(c.SetPlayers(roster)).To(MatchError(factory.FinishErr))

			Expect(c.Engine()).To(BeIdenticalTo(running))
			Expect(c.Players()).To(HaveLen(len(running.Players)))
			Expect(c.Players()[0].ID).To(Equal(running.Players[0].ID))
			Expect(c.Cycles()).To(Equal(4))

			factory.FinishErr = nil
			Expect(c.Stop()).To(Succeed())
			Expect(factory.Last().Players).To(HaveLen(1))
			Expect(factory.Last().Players[0].ID).To(Equal(int32(3)))
		})
	})

	Describe("Tick", func() {
		BeforeEach(func() {
			Expect(c.SetPlayers(roster)).To(Succeed())
		})

		DescribeTable("adds up cycles",
			func(batches []int) {
				start, sum := c.Cycles(), 0
				for _, n := range batches {
					Expect(c.Tick(n)).To(Succeed())
					sum += n
				}
				Expect(c.Cycles()).To(Equal(start + sum))
				Expect(c.Cycles()).To(Equal(c.Engine().Cycles()))
			},
			Entry("nothing", []int{}),
			Entry("single batch", []int{10}),
			Entry("many batches", []int{1, 2, 3, 0, 64}),
		)

		It("leaves a fresh engine at its starting cycle", func() {
			factory.StartCycle = 7
			Expect(c.Compile()).To(Succeed())
			Expect(c.Tick(0)).To(Succeed())
			Expect(c.Cycles()).To(Equal(7))
		})

		It("refreshes the process count", func() {
			factory.Last().Processes = 42
			Expect(c.Tick(1)).To(Succeed())
			Expect(c.ProcessCount()).To(Equal(42))
		})

		It("notifies observers once per batch", func() {
			before := refreshes
			Expect(c.Tick(5)).To(Succeed())
			Expect(refreshes).To(Equal(before + 1))
		})

		It("propagates engine failures and still refreshes", func() {
			factory.Last().TickErr = errors.New("bad opcode")
			err := c.Tick(3)
			Expect(err).To(MatchError(factory.Last().TickErr))
			Expect(c.Cycles()).To(Equal(0))
		})
	})

	Describe("match end", func() {
		It("stops early, pauses and names the single leader", func() {
			factory.TerminalAt = 5
			factory.LastLive = map[int32]int{-8: 2, 1: 4, 3: 3}
			Expect(c.SetPlayers(roster)).To(Succeed())
			c.Play()

			Expect(c.Tick(100)).To(Succeed())
			Expect(c.Cycles()).To(Equal(5))
			Expect(c.Playing()).To(BeFalse())
			Expect(queue.Len()).To(Equal(0))
			Expect(c.Result()).NotTo(BeNil())
			Expect(c.Result().Winners).To(Equal([]int32{1}))
			Expect(c.Result().LastLive).To(Equal(4))
			Expect(c.Result().IsDraw()).To(BeFalse())
		})

		It("reports every tied player", func() {
			factory.TerminalAt = 5
			factory.LastLive = map[int32]int{-8: 4, 1: 2, 3: 4}
			Expect(c.SetPlayers(roster)).To(Succeed())

			Expect(c.Tick(10)).To(Succeed())
			Expect(c.Result().Winners).To(ConsistOf(int32(-8), int32(3)))
			Expect(c.Result().IsDraw()).To(BeTrue())
		})

		It("clears the result on recompile", func() {
			factory.TerminalAt = 1
			Expect(c.SetPlayers(roster)).To(Succeed())
			Expect(c.Tick(1)).To(Succeed())
			Expect(c.Result()).NotTo(BeNil())

			Expect(c.Stop()).To(Succeed())
			Expect(c.Result()).To(BeNil())
		})
	})

	Describe("SetCycle", func() {
		BeforeEach(func() {
			Expect(c.SetPlayers(roster)).To(Succeed())
		})

		It("ticks forward on the same engine", func() {
			builds := factory.Finishes
			Expect(c.SetCycle(10)).To(Succeed())
			Expect(c.Cycles()).To(Equal(10))
			Expect(factory.Finishes).To(Equal(builds))
		})

		It("replays from a fresh engine to go back", func() {
			Expect(c.SetCycle(10)).To(Succeed())
			builds := factory.Finishes

			Expect(c.SetCycle(4)).To(Succeed())
			Expect(c.Cycles()).To(Equal(4))
			Expect(factory.Finishes).To(Equal(builds + 1))
			Expect(factory.Last().Ticks).To(Equal(4))
		})

		It("pauses", func() {
			c.Play()
			Expect(c.SetCycle(3)).To(Succeed())
			Expect(c.Playing()).To(BeFalse())
			Expect(queue.Len()).To(Equal(0))
		})

		It("rejects cycles before the start", func() {
			Expect(c.SetCycle(-1)).To(MatchError(sim.ErrCycleOutOfRange))
		})
	})

	Describe("Step and Stop", func() {
		BeforeEach(func() {
			Expect(c.SetPlayers(roster)).To(Succeed())
		})

		It("steps one cycle while paused", func() {
			c.Play()
			Expect(c.Step()).To(Succeed())
			Expect(c.Playing()).To(BeFalse())
			Expect(c.Cycles()).To(Equal(1))
		})

		It("restarts with the same roster", func() {
			Expect(c.Tick(20)).To(Succeed())
			builds := factory.Finishes

			Expect(c.Stop()).To(Succeed())
			Expect(c.Cycles()).To(Equal(0))
			Expect(factory.Finishes).To(Equal(builds + 1))
			Expect(factory.Last().Players).To(HaveLen(3))
		})
	})

	It("doubles the speed and wraps past the maximum", func() {
		var speeds []int
		for range 8 {
			c.NextSpeed()
			speeds = append(speeds, c.Speed())
		}
		Expect(speeds).To(Equal([]int{2, 4, 8, 16, 32, 64, 1, 2}))
	})

	Describe("play loop", func() {
		const work = 10 * time.Millisecond

		BeforeEach(func() {
			factory.OnTick = func(*enginetest.Engine) { clock.Advance(work) }
			Expect(c.SetPlayers(roster)).To(Succeed())
		})

		It("arms one frame at a time", func() {
			c.Play()
			c.Play()
			Expect(queue.Len()).To(Equal(1))
			Expect(c.Playing()).To(BeTrue())

			Expect(queue.RunDue()).To(Equal(1))
			Expect(c.Cycles()).To(Equal(1))
			Expect(queue.Len()).To(Equal(1))
		})

		It("subtracts the frame's work from the next delay", func() {
			c.Play()
			queue.RunDue()

			next, ok := queue.Next()
			Expect(ok).To(BeTrue())
			Expect(next).To(Equal(c.FrameInterval() - work))
		})

		It("runs speed cycles per frame and never waits a negative delay", func() {
			for c.Speed() < 8 {
				c.NextSpeed()
			}
			c.Play()
			queue.RunDue()
			Expect(c.Cycles()).To(Equal(8))

			next, ok := queue.Next()
			Expect(ok).To(BeTrue())
			Expect(next).To(BeZero())
		})

		It("holds the target rate", func() {
			factory.OnTick = nil
			Expect(c.Compile()).To(Succeed())
			c.Play()

			for range 60 {
				next, ok := queue.Next()
				Expect(ok).To(BeTrue())
				clock.Advance(next)
				queue.RunDue()
			}
			Expect(c.Cycles()).To(Equal(60))
			// the first frame runs immediately
			Expect(clock.Now().Sub(time.Unix(0, 0))).To(Equal(59 * c.FrameInterval()))
		})

		It("cancels the pending frame on pause", func() {
			c.Play()
			c.Pause()
			Expect(queue.Len()).To(Equal(0))
			Expect(queue.RunDue()).To(Equal(0))
			Expect(c.Cycles()).To(Equal(0))
		})

		It("toggles", func() {
			c.TogglePlay()
			Expect(c.Playing()).To(BeTrue())
			c.TogglePlay()
			Expect(c.Playing()).To(BeFalse())
			Expect(queue.Len()).To(Equal(0))
		})

		It("stops at the end of the match", func() {
			factory.TerminalAt = 3
			Expect(c.Compile()).To(Succeed())
			c.Play()

			for i := 0; i < 10 && c.Playing(); i++ {
				next, _ := queue.Next()
				clock.Advance(next)
				queue.RunDue()
			}
			Expect(c.Playing()).To(BeFalse())
			Expect(c.Cycles()).To(Equal(3))
			Expect(c.Result()).NotTo(BeNil())
			Expect(queue.Len()).To(Equal(0))
		})

		It("pauses and keeps the error when a tick fails", func() {
			factory.TickErr = errors.New("bad opcode")
			Expect(c.Compile()).To(Succeed())
			c.Play()
			queue.RunDue()

			Expect(c.Playing()).To(BeFalse())
			Expect(c.Err()).To(MatchError(factory.TickErr))
			Expect(queue.Len()).To(Equal(0))

			Expect(c.Compile()).To(Succeed())
			Expect(c.Err()).To(BeNil())
		})
	})
})
