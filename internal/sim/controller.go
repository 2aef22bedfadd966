package sim

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/corearena/internal/engine"
	"github.com/san-kum/corearena/internal/player"
)

// Controller owns the engine and the play/pause/step/speed state machine.
// It is not safe for concurrent use; every call, including scheduled frames,
// must happen on the host's event loop.
type Controller struct {
	factory   engine.Factory
	sched     Scheduler
	clock     Clock
	logger    *log.Logger
	targetUPS int
	maxSpeed  int

	eng       engine.Engine
	players   []player.Ready
	cycles    int
	processes int
	speed     int
	playing   bool
	cancel    func()
	result    *MatchResult
	err       error
	observers []Observer
}

// New returns a paused controller running an engine without players.
func New(factory engine.Factory, opts ...Option) (*Controller, error) {
	c := &Controller{
		factory:   factory,
		clock:     SystemClock,
		logger:    log.New(io.Discard),
		targetUPS: DefaultTargetUPS,
		maxSpeed:  DefaultMaxSpeed,
		speed:     1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.targetUPS <= 0 {
		return nil, fmt.Errorf("%w: target ups %d", ErrInvalidOption, c.targetUPS)
	}
	if c.maxSpeed <= 0 {
		return nil, fmt.Errorf("%w: max speed %d", ErrInvalidOption, c.maxSpeed)
	}
	if c.speed <= 0 || c.speed > c.maxSpeed || c.speed&(c.speed-1) != 0 {
		return nil, fmt.Errorf("%w: speed %d is not a power of two up to %d", ErrInvalidOption, c.speed, c.maxSpeed)
	}
	if c.sched == nil {
		c.sched = NewQueue(c.clock)
	}
	if err := c.Compile(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) AddObserver(o Observer) { c.observers = append(c.observers, o) }

func (c *Controller) Engine() engine.Engine { return c.eng }
func (c *Controller) Cycles() int           { return c.cycles }
func (c *Controller) ProcessCount() int     { return c.processes }
func (c *Controller) Speed() int            { return c.speed }
func (c *Controller) Playing() bool         { return c.playing }

// Result is the outcome of the match, or nil while it is running.
func (c *Controller) Result() *MatchResult { return c.result }

// Err is the error that stopped the play loop, if any.
func (c *Controller) Err() error { return c.err }

// Players returns the roster loaded into the engine, by ascending id.
func (c *Controller) Players() []player.Ready { return slices.Clone(c.players) }

// FrameInterval is the time budget of one play loop frame.
func (c *Controller) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.targetUPS)
}

// Compile pauses and replaces the engine with a fresh one built from the
// roster.
func (c *Controller) Compile() error {
	c.Pause()

	eng, err := c.build(c.players)
	if err != nil {
		return err
	}
	c.install(eng)
	return nil
}

func (c *Controller) build(players []player.Ready) (engine.Engine, error) {
	b := c.factory.NewBuilder()
	for _, p := range players {
		b = b.WithPlayer(p.ID, p.ByteCode)
	}
	eng, err := b.Finish()
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return eng, nil
}

func (c *Controller) install(eng engine.Engine) {
	c.eng = eng
	c.result = nil
	c.err = nil
	c.refresh()
	c.logger.Info("engine built", "players", len(c.players), "cycles", c.cycles)
	c.notify()
}

// Tick advances up to n cycles. When the match ends the result is computed
// and the controller pauses.
func (c *Controller) Tick(n int) error {
	start := c.clock.Now()

	var err error
	for i := 0; i < n; i++ {
		terminal, terr := c.eng.Tick()
		if terr != nil {
			err = fmt.Errorf("tick at cycle %d: %w", c.eng.Cycles(), terr)
			break
		}
		if terminal {
			c.finish()
			break
		}
	}
	c.refresh()

	elapsed := c.clock.Now().Sub(start)
	if elapsed > SlowTick {
		c.logger.Warn("slow tick", "n", n, "elapsed", elapsed, "cycles", c.cycles, "processes", c.processes)
	} else {
		c.logger.Debug("tick", "n", n, "elapsed", elapsed)
	}

	c.notify()
	return err
}

func (c *Controller) finish() {
	r := computeResult(c.eng, c.players)
	c.result = &r
	c.Pause()
	c.logger.Info("match over", "cycles", c.eng.Cycles(), "winners", r.Winners, "last_live", r.LastLive)
}

func computeResult(eng engine.Engine, players []player.Ready) MatchResult {
	var r MatchResult
	for i, p := range players {
		last := eng.ChampionInfo(p.ID).LastLive
		switch {
		case i == 0 || last > r.LastLive:
			r.LastLive = last
			r.Winners = []int32{p.ID}
		case last == r.LastLive:
			r.Winners = append(r.Winners, p.ID)
		}
	}
	return r
}

func (c *Controller) Play() {
	if c.playing {
		return
	}
	c.playing = true
	c.arm(0)
}

func (c *Controller) Pause() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.playing = false
}

func (c *Controller) TogglePlay() {
	if c.playing {
		c.Pause()
	} else {
		c.Play()
	}
}

func (c *Controller) arm(d time.Duration) {
	c.cancel = c.sched.After(d, c.frame)
}

func (c *Controller) frame() {
	c.cancel = nil
	if !c.playing {
		return
	}

	start := c.clock.Now()
	if err := c.Tick(c.speed); err != nil {
		c.Pause()
		c.err = err
		c.logger.Error("play loop stopped", "err", err)
		return
	}
	if !c.playing {
		return
	}

	elapsed := c.clock.Now().Sub(start)
	c.arm(max(c.FrameInterval()-elapsed, 0))
}

// Step pauses and advances one cycle.
func (c *Controller) Step() error {
	c.Pause()
	return c.Tick(1)
}

// Stop pauses and restarts the match from its first cycle.
func (c *Controller) Stop() error {
	c.Pause()
	return c.Compile()
}

// SetCycle pauses and moves to target. Going back replays the match from a
// fresh engine. If the match ends first, the controller stays on its last
// cycle.
func (c *Controller) SetCycle(target int) error {
	c.Pause()
	if target >= c.cycles {
		return c.Tick(target - c.cycles)
	}
	if err := c.Compile(); err != nil {
		return err
	}
	if target < c.cycles {
		return fmt.Errorf("%w: %d is before the first cycle %d", ErrCycleOutOfRange, target, c.cycles)
	}
	return c.Tick(target - c.cycles)
}

// NextSpeed doubles the number of cycles per frame, wrapping to 1 past the
// maximum.
func (c *Controller) NextSpeed() {
	c.speed *= 2
	if c.speed > c.maxSpeed {
		c.speed = 1
	}
}

// SetPlayers replaces the roster with the ready players and recompiles.
// Players are loaded in ascending id order. A roster the engine rejects
// leaves the current roster and engine in place.
func (c *Controller) SetPlayers(players []player.Ready) error {
	roster := make([]player.Ready, 0, len(players))
	for _, p := range players {
		if p.ByteCode != nil {
			roster = append(roster, p)
		}
	}
	slices.SortFunc(roster, func(a, b player.Ready) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	c.Pause()
	eng, err := c.build(roster)
	if err != nil {
		return err
	}
	c.players = roster
	c.install(eng)
	return nil
}

func (c *Controller) refresh() {
	c.cycles = c.eng.Cycles()
	c.processes = c.eng.ProcessCount()
}

func (c *Controller) notify() {
	for _, o := range c.observers {
		o.OnRefresh(c)
	}
}
