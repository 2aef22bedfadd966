package engine

// PlayerID identifies a champion inside the engine. Zero is reserved for
// cells nobody owns.
type PlayerID = int32

// NoOwner is the owner value of cells no champion has written.
const NoOwner PlayerID = 0

// MemSize is the number of addressable cells in the arena.
const MemSize = 4096

type Factory interface {
	NewBuilder() Builder
}

// Builder accumulates champions before an engine is created. WithPlayer
// never mutates the receiver.
type Builder interface {
	WithPlayer(id PlayerID, program []byte) Builder
	Finish() (Engine, error)
}

type Engine interface {
	// Tick advances one cycle and reports whether the match is over.
	Tick() (terminal bool, err error)
	Cycles() int
	ProcessCount() int
	ChampionInfo(id PlayerID) ChampionInfo
	Memory() MemoryLayout
	LinearMemory() []byte
	Decode(addr int) Decoded
	ProcessesAt(addr int) []ProcessInfo
}

type Compiler interface {
	Compile(source string) (Champion, error)
}

// Champion is a compiled program ready to be handed to a Builder.
type Champion struct {
	Name     string
	Comment  string
	ByteCode []byte
	CodeSize int
}

type ChampionInfo struct {
	ProcessCount int
	LastLive     int
}

// MemoryLayout holds byte offsets into the engine's linear memory. Each
// offset starts an array of MemSize words: values are 1 byte, ages 2 bytes,
// owners and pc counts 4 bytes.
type MemoryLayout struct {
	ValuesPtr  int
	AgesPtr    int
	OwnersPtr  int
	PCCountPtr int
}

// Decoded is the instruction found at a memory address.
type Decoded struct {
	Size int
	Text string
}

type ExecutingState struct {
	Op         string
	CyclesLeft int
}

// RegCount is the number of registers of a process.
const RegCount = 16

type ProcessInfo struct {
	PID           int
	Owner         PlayerID
	PC            int
	ZeroFlag      bool
	LastLiveCycle int
	Executing     *ExecutingState
	Registers     [RegCount]int32
}
