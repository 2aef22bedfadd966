// Package enginetest provides a scripted engine for tests of the packages
// that drive an [engine.Engine] without caring about VM semantics.
package enginetest

import (
	"maps"

	"github.com/san-kum/corearena/internal/engine"
)

// Player is one champion folded into a fake builder.
type Player struct {
	ID      engine.PlayerID
	Program []byte
}

// Factory hands out builders whose engines follow the script below.
type Factory struct {
	// StartCycle is the cycle count of a freshly built engine.
	StartCycle int
	// TerminalAt ends the match once the cycle count reaches it. Zero never
	// ends.
	TerminalAt int
	// LastLive is copied into every engine built.
	LastLive map[engine.PlayerID]int
	// FinishErr is returned by Finish when set.
	FinishErr error
	// TickErr is returned by every Tick of engines built afterwards.
	TickErr error
	// OnTick runs inside every Tick of engines built afterwards.
	OnTick func(*Engine)

	Finishes int
	Built    []*Engine
}

func (f *Factory) NewBuilder() engine.Builder { return &Builder{factory: f} }

// Last returns the most recently built engine.
func (f *Factory) Last() *Engine {
	if len(f.Built) == 0 {
		return nil
	}
	return f.Built[len(f.Built)-1]
}

type Builder struct {
	factory *Factory
	players []Player
}

func (b *Builder) WithPlayer(id engine.PlayerID, program []byte) engine.Builder {
	players := append(append([]Player(nil), b.players...), Player{ID: id, Program: program})
	return &Builder{factory: b.factory, players: players}
}

func (b *Builder) Players() []Player { return b.players }

func (b *Builder) Finish() (engine.Engine, error) {
	f := b.factory
	f.Finishes++
	if f.FinishErr != nil {
		return nil, f.FinishErr
	}
	e := New(b.players...)
	e.cycles = f.StartCycle
	e.TerminalAt = f.TerminalAt
	e.TickErr = f.TickErr
	e.OnTick = f.OnTick
	if f.LastLive != nil {
		e.LastLive = maps.Clone(f.LastLive)
	}
	f.Built = append(f.Built, e)
	return e, nil
}

// Engine is a fake engine with a real packed linear memory that tests fill
// through SetCell.
type Engine struct {
	Players    []Player
	TerminalAt int
	TickErr    error
	OnTick     func(*Engine)
	LastLive   map[engine.PlayerID]int
	Procs      map[int][]engine.ProcessInfo
	Decoded    map[int]engine.Decoded
	Processes  int
	Ticks      int

	cycles int
	buf    []byte
	layout engine.MemoryLayout
	view   engine.MemoryView
}

func New(players ...Player) *Engine {
	layout, n := engine.PackedLayout(engine.MemSize)
	buf := engine.NewLinearMemory(n)
	view, err := engine.NewMemoryView(buf, layout, engine.MemSize)
	if err != nil {
		panic(err)
	}
	return &Engine{
		Players:   players,
		LastLive:  make(map[engine.PlayerID]int),
		Procs:     make(map[int][]engine.ProcessInfo),
		Decoded:   make(map[int]engine.Decoded),
		Processes: len(players),
		buf:       buf,
		layout:    layout,
		view:      view,
	}
}

// SetCell writes one address of every memory array.
func (e *Engine) SetCell(addr int, value uint8, age uint16, owner engine.PlayerID, pcCount uint32) {
	e.view.Values[addr] = value
	e.view.Ages[addr] = age
	e.view.Owners[addr] = owner
	e.view.PCCounts[addr] = pcCount
}

func (e *Engine) View() engine.MemoryView { return e.view }

func (e *Engine) Tick() (bool, error) {
	if e.TickErr != nil {
		return false, e.TickErr
	}
	if e.TerminalAt > 0 && e.cycles >= e.TerminalAt {
		return true, nil
	}
	e.cycles++
	e.Ticks++
	if e.OnTick != nil {
		e.OnTick(e)
	}
	return e.TerminalAt > 0 && e.cycles >= e.TerminalAt, nil
}

func (e *Engine) Cycles() int       { return e.cycles }
func (e *Engine) ProcessCount() int { return e.Processes }

func (e *Engine) ChampionInfo(id engine.PlayerID) engine.ChampionInfo {
	n := 0
	for _, p := range e.Players {
		if p.ID == id {
			n = 1
		}
	}
	return engine.ChampionInfo{ProcessCount: n, LastLive: e.LastLive[id]}
}

func (e *Engine) Memory() engine.MemoryLayout { return e.layout }
func (e *Engine) LinearMemory() []byte        { return e.buf }

// Decode returns the scripted instruction at addr, or a one byte
// placeholder.
func (e *Engine) Decode(addr int) engine.Decoded {
	if d, ok := e.Decoded[addr]; ok {
		return d
	}
	return engine.Decoded{Size: 1, Text: "nop"}
}

func (e *Engine) ProcessesAt(addr int) []engine.ProcessInfo { return e.Procs[addr] }
