package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/corearena/internal/engine"
	"github.com/san-kum/corearena/internal/player"
)

// runBatch is the number of cycles RunMatch ticks between context checks.
const runBatch = 1024

// Match is a finished headless game.
type Match struct {
	Players []player.Ready
	Cycles  int
	// Result is nil when the cycle limit was reached first.
	Result *MatchResult
	// Processes samples the process count after every batch.
	Processes []int
	// Info is each player's statistics on the last cycle.
	Info map[int32]engine.ChampionInfo
	// Engine is left on the last cycle for inspection.
	Engine engine.Engine
}

// RunMatch plays roster on a fresh engine until the match ends or, when
// maxCycles is positive, until maxCycles cycles have run.
func RunMatch(ctx context.Context, factory engine.Factory, roster []player.Ready, maxCycles int, opts ...Option) (*Match, error) {
	c, err := New(factory, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.SetPlayers(roster); err != nil {
		return nil, err
	}

	m := &Match{Players: c.Players(), Processes: []int{c.ProcessCount()}}
	for c.Result() == nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		n := runBatch
		if maxCycles > 0 {
			if c.Cycles() >= maxCycles {
				break
			}
			n = min(n, maxCycles-c.Cycles())
		}
		if err := c.Tick(n); err != nil {
			return nil, err
		}
		m.Processes = append(m.Processes, c.ProcessCount())
	}

	m.Cycles = c.Cycles()
	m.Result = c.Result()
	m.Engine = c.Engine()
	m.Info = make(map[int32]engine.ChampionInfo, len(m.Players))
	for _, p := range m.Players {
		m.Info[p.ID] = c.Engine().ChampionInfo(p.ID)
	}
	return m, nil
}

// Tournament plays every pair of a roster against each other. Each duel
// gets its own engine and goroutine, so the factory must hand out
// independent engines.
type Tournament struct {
	factory   engine.Factory
	roster    []player.Ready
	maxCycles int
}

func NewTournament(factory engine.Factory, roster []player.Ready, maxCycles int) *Tournament {
	return &Tournament{factory: factory, roster: roster, maxCycles: maxCycles}
}

// Pairings lists the duels in the order Run reports them.
func (t *Tournament) Pairings() [][2]player.Ready {
	var pairs [][2]player.Ready
	for i := range t.roster {
		for j := i + 1; j < len(t.roster); j++ {
			pairs = append(pairs, [2]player.Ready{t.roster[i], t.roster[j]})
		}
	}
	return pairs
}

func (t *Tournament) Run(ctx context.Context) ([]*Match, error) {
	pairs := t.Pairings()
	results := make([]*Match, len(pairs))
	errs := make([]error, len(pairs))

	var wg sync.WaitGroup
	for i, pair := range pairs {
		wg.Add(1)
		go func(idx int, pair [2]player.Ready) {
			defer wg.Done()
			results[idx], errs[idx] = RunMatch(ctx, t.factory, pair[:], t.maxCycles)
		}(i, pair)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("duel %d vs %d: %w", pairs[i][0].ID, pairs[i][1].ID, err)
		}
	}

	return results, nil
}

// Standings counts wins per player over a set of matches. A draw counts for
// every winner.
func Standings(matches []*Match) map[int32]int {
	wins := make(map[int32]int)
	for _, m := range matches {
		for _, p := range m.Players {
			if _, ok := wins[p.ID]; !ok {
				wins[p.ID] = 0
			}
		}
		if m.Result == nil {
			continue
		}
		for _, id := range m.Result.Winners {
			wins[id]++
		}
	}
	return wins
}
