package player

import "github.com/san-kum/corearena/internal/engine"

// Player is one contender. Fields are read-only outside the registry; use
// the Registry methods to change them.
type Player struct {
	ID       int32
	Color    RGB
	Source   string
	Champion *engine.Champion
	Err      *engine.CompileError
}

// IsReady reports whether the player has a compiled champion.
func (p *Player) IsReady() bool {
	return p.Champion != nil
}

// Name is the champion name, or empty before the first successful compile.
func (p *Player) Name() string {
	if p.Champion == nil {
		return ""
	}
	return p.Champion.Name
}

// Ready is the part of a player an engine needs.
type Ready struct {
	ID       int32
	ByteCode []byte
}
