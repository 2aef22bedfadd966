// Package arena wires a player registry, a simulation controller and a
// render pipeline into one interactive session.
//
// Roster changes flow from the registry to the controller through
// [player.Registry.OnReadyChange]; every controller refresh re-decodes the
// selections and updates the pipeline, which paints its surface once.
package arena

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/san-kum/corearena/internal/config"
	"github.com/san-kum/corearena/internal/engine"
	"github.com/san-kum/corearena/internal/player"
	"github.com/san-kum/corearena/internal/render"
	"github.com/san-kum/corearena/internal/sim"
)

// historyLen is how many process count samples History keeps.
const historyLen = 120

type Options struct {
	Config   *config.Config
	Factory  engine.Factory
	Compiler engine.Compiler
	Surface  render.Surface
	Geometry render.Geometry
	Clock    sim.Clock
	Random   io.Reader
	Logger   *log.Logger
}

// Contender is a player as the arena shows it.
type Contender struct {
	Player   *player.Player
	Coverage int
	Info     engine.ChampionInfo
}

type Arena struct {
	Registry   *player.Registry
	Controller *sim.Controller
	Pipeline   *render.Pipeline
	Queue      *sim.Queue

	logger     *log.Logger
	showValues bool
	history    []float64
	err        error
}

func New(opts Options) (*Arena, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if opts.Clock == nil {
		opts.Clock = sim.SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	a := &Arena{
		Queue:      sim.NewQueue(opts.Clock),
		logger:     opts.Logger,
		showValues: cfg.ShowValues,
	}

	regOpts := []player.Option{player.WithLogger(opts.Logger.WithPrefix("player"))}
	if opts.Random != nil {
		regOpts = append(regOpts, player.WithRandom(opts.Random))
	}
	a.Registry = player.NewRegistry(opts.Compiler, regOpts...)

	ctrl, err := sim.New(opts.Factory,
		sim.WithScheduler(a.Queue),
		sim.WithClock(opts.Clock),
		sim.WithLogger(opts.Logger.WithPrefix("sim")),
		sim.WithTargetUPS(cfg.UPS),
		sim.WithMaxSpeed(cfg.MaxSpeed),
		sim.WithSpeed(cfg.Speed),
	)
	if err != nil {
		return nil, err
	}
	a.Controller = ctrl

	a.Pipeline, err = render.New(opts.Geometry, opts.Surface)
	if err != nil {
		return nil, err
	}

	a.Registry.OnReadyChange(func(ready []player.Ready) {
		if err := a.Controller.SetPlayers(ready); err != nil {
			a.err = err
			a.logger.Error("roster rejected by engine", "err", err)
			return
		}
		a.err = nil
	})
	a.Controller.AddObserver(sim.ObserverFunc(a.refresh))

	if err := a.loadRoster(cfg); err != nil {
		return nil, err
	}
	if a.err != nil {
		return nil, a.err
	}
	a.Redraw()
	return a, nil
}

// loadRoster creates the configured players, or two default ones.
func (a *Arena) loadRoster(cfg *config.Config) error {
	if len(cfg.Players) == 0 {
		for range 2 {
			if _, err := a.AddPlayer(); err != nil {
				return err
			}
		}
		return nil
	}
	return LoadRoster(a.Registry, cfg, a.logger)
}

// LoadRoster adds the players of cfg to reg. A champion that does not
// compile still gets its player; the error is kept on it and logged.
func LoadRoster(reg *player.Registry, cfg *config.Config, logger *log.Logger) error {
	for _, pc := range cfg.Players {
		src, err := cfg.LoadSource(pc)
		if err != nil {
			return fmt.Errorf("player %d: %w", pc.ID, err)
		}

		color := reg.NextColor()
		if pc.Color != "" {
			if color, err = player.ParseRGB(pc.Color); err != nil {
				return fmt.Errorf("player %d: %w", pc.ID, err)
			}
		}

		if src == "" {
			p, err := reg.GetOrCreate(pc.ID)
			if err != nil {
				return fmt.Errorf("player %d: %w", pc.ID, err)
			}
			reg.SetColor(p, color)
			continue
		}

		_, err = reg.Create(pc.ID, src, color)
		var cerr *engine.CompileError
		switch {
		case errors.As(err, &cerr):
			logger.Warn("champion does not compile", "id", pc.ID, "source", pc.Source, "err", cerr)
		case err != nil:
			return fmt.Errorf("player %d: %w", pc.ID, err)
		}
	}
	return nil
}

func (a *Arena) refresh(c *sim.Controller) {
	a.Pipeline.Selections().Refresh(c.Engine())
	a.history = append(a.history, float64(c.ProcessCount()))
	if len(a.history) > historyLen {
		a.history = a.history[len(a.history)-historyLen:]
	}
	a.update()
}

func (a *Arena) update() {
	err := a.Pipeline.Update(render.Context{
		Memory:     a.Controller.Engine(),
		Colors:     a.Registry.Colors(),
		ShowValues: a.showValues,
	})
	if err != nil {
		a.err = err
		a.logger.Error("render", "err", err)
	}
}

// Redraw repaints without touching the engine, after a display setting or
// the selection changed.
func (a *Arena) Redraw() { a.update() }

func (a *Arena) ShowValues() bool { return a.showValues }

func (a *Arena) ToggleValues() {
	a.showValues = !a.showValues
	a.Redraw()
}

// Click routes a surface click to the pipeline and repaints.
func (a *Arena) Click(x, y int, mods render.Modifiers) (int, bool) {
	idx, ok := a.Pipeline.Click(x, y, mods, a.Controller.Engine())
	if ok {
		a.Redraw()
	}
	return idx, ok
}

func (a *Arena) ClearSelection() {
	a.Pipeline.Selections().Clear()
	a.Redraw()
}

// AddPlayer creates a player with a random id and a built-in champion.
func (a *Arena) AddPlayer() (*player.Player, error) {
	id, err := a.Registry.RandomPlayerID()
	if err != nil {
		return nil, err
	}
	return a.Registry.GetOrCreate(id)
}

// RerollID gives p a fresh random id.
func (a *Arena) RerollID(p *player.Player) error {
	id, err := a.Registry.RandomPlayerID()
	if err != nil {
		return err
	}
	a.Registry.SetID(p, int64(id))
	return nil
}

// Contenders lists every player with its share of memory and its engine
// statistics.
func (a *Arena) Contenders() []Contender {
	coverage := a.Pipeline.Coverage()
	eng := a.Controller.Engine()
	players := a.Registry.Players()
	out := make([]Contender, 0, len(players))
	for _, p := range players {
		out = append(out, Contender{
			Player:   p,
			Coverage: coverage[p.ID],
			Info:     eng.ChampionInfo(p.ID),
		})
	}
	return out
}

// History is the recent process count, one sample per refresh.
func (a *Arena) History() []float64 { return a.history }

// Err is the last wiring error: an engine that refused the roster or a
// memory layout the pipeline could not read. Controller errors are kept by
// the controller.
func (a *Arena) Err() error {
	if a.err != nil {
		return a.err
	}
	return a.Controller.Err()
}
