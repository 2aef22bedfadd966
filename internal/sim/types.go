package sim

import (
	"time"

	"github.com/charmbracelet/log"
)

const (
	DefaultTargetUPS = 60
	DefaultMaxSpeed  = 64

	// SlowTick is the batch duration above which a warning is logged.
	SlowTick = 16 * time.Millisecond
)

// Observer is told after every change of the controller's engine state:
// a compile or a tick batch.
type Observer interface {
	OnRefresh(c *Controller)
}

type ObserverFunc func(c *Controller)

func (f ObserverFunc) OnRefresh(c *Controller) { f(c) }

// MatchResult lists the players whose last live is the latest one. More
// than one winner is a draw.
type MatchResult struct {
	Winners  []int32
	LastLive int
}

func (r MatchResult) IsDraw() bool { return len(r.Winners) > 1 }

type Option func(*Controller)

// WithScheduler sets where the play loop arms its frames. The default is a
// Queue nobody drives, which is fine for headless use.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithClock sets the clock used to measure frame time.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithTargetUPS sets how many frames per second the play loop aims for.
func WithTargetUPS(ups int) Option {
	return func(c *Controller) { c.targetUPS = ups }
}

// WithSpeed sets the initial number of cycles per frame, a power of two.
func WithSpeed(speed int) Option {
	return func(c *Controller) { c.speed = speed }
}

// WithMaxSpeed sets the speed past which NextSpeed wraps to 1.
func WithMaxSpeed(speed int) Option {
	return func(c *Controller) { c.maxSpeed = speed }
}
