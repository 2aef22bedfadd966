package sandbox

import (
	"fmt"
	"sort"

	"github.com/san-kum/corearena/internal/engine"
)

const (
	// MaxPlayers is the number of champions one arena hosts.
	MaxPlayers = 4
	// CheckInterval is the number of cycles between two live checks.
	CheckInterval = 512
	// MaxProcessesPerPlayer caps fork.
	MaxProcessesPerPlayer = 256

	maxAge = ^uint16(0)
)

// Factory creates sandbox builders.
type Factory struct{}

func (Factory) NewBuilder() engine.Builder { return Builder{} }

type entry struct {
	id      engine.PlayerID
	program []byte
}

// Builder is an immutable list of champions.
type Builder struct {
	players []entry
}

func (b Builder) WithPlayer(id engine.PlayerID, program []byte) engine.Builder {
	players := make([]entry, len(b.players), len(b.players)+1)
	copy(players, b.players)
	return Builder{players: append(players, entry{id: id, program: program})}
}

// Finish loads every champion at an even spread over the arena. The first
// process of a champion carries its id in r1.
func (b Builder) Finish() (engine.Engine, error) {
	if len(b.players) > MaxPlayers {
		return nil, fmt.Errorf("%w: %d, limit is %d", engine.ErrTooManyPlayers, len(b.players), MaxPlayers)
	}

	layout, n := engine.PackedLayout(engine.MemSize)
	buf := engine.NewLinearMemory(n)
	view, err := engine.NewMemoryView(buf, layout, engine.MemSize)
	if err != nil {
		return nil, err
	}

	vm := &VM{
		buf:      buf,
		layout:   layout,
		mem:      view,
		lastLive: make(map[engine.PlayerID]int),
	}

	seen := make(map[engine.PlayerID]bool, len(b.players))
	for i, p := range b.players {
		if p.id == engine.NoOwner {
			return nil, fmt.Errorf("%w: player id 0 is reserved", engine.ErrInvalidChampion)
		}
		if seen[p.id] {
			return nil, fmt.Errorf("%w: duplicate player id %d", engine.ErrInvalidChampion, p.id)
		}
		seen[p.id] = true

		_, _, code, err := DecodeImage(p.program)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", p.id, err)
		}

		base := i * engine.MemSize / len(b.players)
		for j, c := range code {
			addr := (base + j) % engine.MemSize
			view.Values[addr] = c
			view.Owners[addr] = p.id
		}

		proc := &process{pid: vm.nextPID, owner: p.id, pc: base}
		proc.regs[0] = p.id
		vm.nextPID++
		vm.procs = append(vm.procs, proc)
		vm.lastLive[p.id] = 0
	}
	vm.countPCs()
	return vm, nil
}

type process struct {
	pid      int
	owner    engine.PlayerID
	pc       int
	zero     bool
	lastLive int
	regs     [engine.RegCount]int32
}

// VM is a running sandbox match.
type VM struct {
	buf    []byte
	layout engine.MemoryLayout
	mem    engine.MemoryView

	cycles    int
	lastCheck int
	nextPID   int
	procs     []*process
	lastLive  map[engine.PlayerID]int
}

func (vm *VM) Tick() (bool, error) {
	if len(vm.procs) == 0 {
		return true, nil
	}
	vm.cycles++

	for i := range vm.mem.Ages {
		if vm.mem.Owners[i] != engine.NoOwner && vm.mem.Ages[i] < maxAge {
			vm.mem.Ages[i]++
		}
	}

	current := len(vm.procs)
	for i := 0; i < current; i++ {
		vm.step(vm.procs[i])
	}

	if vm.cycles-vm.lastCheck >= CheckInterval {
		alive := vm.procs[:0]
		for _, p := range vm.procs {
			if p.lastLive > vm.lastCheck {
				alive = append(alive, p)
			}
		}
		vm.procs = alive
		vm.lastCheck = vm.cycles
	}

	vm.countPCs()
	return len(vm.procs) == 0, nil
}

func (vm *VM) step(p *process) {
	op := vm.mem.Values[p.pc]
	switch op {
	case opLive:
		p.lastLive = vm.cycles
		vm.lastLive[p.owner] = vm.cycles
		p.zero = true
		p.pc = wrap(p.pc + 1)
	case opSt:
		off := int8(vm.mem.Values[wrap(p.pc+1)])
		v := vm.mem.Values[wrap(p.pc+2)]
		dst := wrap(p.pc + int(off))
		vm.mem.Values[dst] = v
		vm.mem.Owners[dst] = p.owner
		vm.mem.Ages[dst] = 0
		p.pc = wrap(p.pc + 3)
	case opJmp:
		off := int8(vm.mem.Values[wrap(p.pc+1)])
		p.pc = wrap(p.pc + int(off))
	case opFork:
		off := int8(vm.mem.Values[wrap(p.pc+1)])
		if vm.processCount(p.owner) < MaxProcessesPerPlayer {
			child := *p
			child.pid = vm.nextPID
			child.pc = wrap(p.pc + int(off))
			vm.nextPID++
			vm.procs = append(vm.procs, &child)
		}
		p.pc = wrap(p.pc + 2)
	default:
		p.pc = wrap(p.pc + 1)
	}
}

func (vm *VM) processCount(owner engine.PlayerID) int {
	n := 0
	for _, p := range vm.procs {
		if p.owner == owner {
			n++
		}
	}
	return n
}

func (vm *VM) countPCs() {
	clear(vm.mem.PCCounts)
	for _, p := range vm.procs {
		vm.mem.PCCounts[p.pc]++
	}
}

func (vm *VM) Cycles() int { return vm.cycles }

func (vm *VM) ProcessCount() int { return len(vm.procs) }

func (vm *VM) ChampionInfo(id engine.PlayerID) engine.ChampionInfo {
	return engine.ChampionInfo{
		ProcessCount: vm.processCount(id),
		LastLive:     vm.lastLive[id],
	}
}

func (vm *VM) Memory() engine.MemoryLayout { return vm.layout }

func (vm *VM) LinearMemory() []byte { return vm.buf }

func (vm *VM) Decode(addr int) engine.Decoded {
	addr = wrap(addr)
	at := func(i int) byte { return vm.mem.Values[wrap(addr+i)] }
	switch at(0) {
	case opLive:
		return engine.Decoded{Size: 1, Text: "live"}
	case opSt:
		return engine.Decoded{Size: 3, Text: fmt.Sprintf("st %d, 0x%02x", int8(at(1)), at(2))}
	case opJmp:
		return engine.Decoded{Size: 2, Text: fmt.Sprintf("jmp %d", int8(at(1)))}
	case opFork:
		return engine.Decoded{Size: 2, Text: fmt.Sprintf("fork %d", int8(at(1)))}
	default:
		return engine.Decoded{Size: 1, Text: fmt.Sprintf(".byte 0x%02x", at(0))}
	}
}

// ProcessesAt lists the processes whose pc is addr, oldest first.
func (vm *VM) ProcessesAt(addr int) []engine.ProcessInfo {
	addr = wrap(addr)
	var out []engine.ProcessInfo
	for _, p := range vm.procs {
		if p.pc != addr {
			continue
		}
		out = append(out, engine.ProcessInfo{
			PID:           p.pid,
			Owner:         p.owner,
			PC:            p.pc,
			ZeroFlag:      p.zero,
			LastLiveCycle: p.lastLive,
			Registers:     p.regs,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

func wrap(addr int) int {
	addr %= engine.MemSize
	if addr < 0 {
		addr += engine.MemSize
	}
	return addr
}
