package player

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/san-kum/corearena/internal/engine"
)

type Option func(*Registry)

// WithRandom replaces the source RandomPlayerID draws from.
func WithRandom(r io.Reader) Option {
	return func(reg *Registry) { reg.random = r }
}

func WithLogger(l *log.Logger) Option {
	return func(reg *Registry) { reg.logger = l }
}

// WithPalette replaces the colors handed out to new players.
func WithPalette(colors ...RGB) Option {
	return func(reg *Registry) { reg.palette = colors }
}

type Registry struct {
	compiler engine.Compiler
	random   io.Reader
	logger   *log.Logger
	palette  []RGB

	players     []*Player
	ready       []Ready
	subscribers []func([]Ready)
}

func NewRegistry(compiler engine.Compiler, opts ...Option) *Registry {
	r := &Registry{
		compiler: compiler,
		random:   rand.Reader,
		logger:   log.New(io.Discard),
		palette:  Palette,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnReadyChange registers fn to run every time the set of ready players
// changes. fn receives the new set in ascending id order.
func (r *Registry) OnReadyChange(fn func([]Ready)) {
	r.subscribers = append(r.subscribers, fn)
}

func (r *Registry) Player(id int32) (*Player, bool) {
	for _, p := range r.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Players returns every player in creation order.
func (r *Registry) Players() []*Player {
	return slices.Clone(r.players)
}

// Ready returns the players with a compiled champion, by ascending id.
func (r *Registry) Ready() []Ready {
	ready := make([]Ready, 0, len(r.players))
	for _, p := range r.players {
		if p.IsReady() {
			ready = append(ready, Ready{ID: p.ID, ByteCode: p.Champion.ByteCode})
		}
	}
	slices.SortFunc(ready, func(a, b Ready) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return ready
}

// GetOrCreate returns the player with id, creating it with the next free
// palette color and a built-in champion when it does not exist yet.
func (r *Registry) GetOrCreate(id int32) (*Player, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: 0 is reserved", ErrInvalidID)
	}
	if p, ok := r.Player(id); ok {
		return p, nil
	}

	name := defaultChampion(len(r.players))
	src, err := Builtin(name)
	if err != nil {
		r.logger.Error("built-in champion missing", "name", name, "err", err)
	}
	p := &Player{ID: id, Color: r.NextColor()}
	r.players = append(r.players, p)
	if err := r.compile(p, src); err != nil {
		r.logger.Error("built-in champion does not compile", "name", name, "err", err)
	}
	r.logger.Info("player created", "id", id, "champion", name, "color", p.Color.Hex())
	r.publish()
	return p, nil
}

// Create adds a player with the given source and color. A compile failure
// still adds the player; the error is returned and kept on the player.
func (r *Registry) Create(id int32, source string, color RGB) (*Player, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: 0 is reserved", ErrInvalidID)
	}
	if _, ok := r.Player(id); ok {
		return nil, fmt.Errorf("%w: %d already exists", ErrInvalidID, id)
	}

	p := &Player{ID: id, Color: color}
	r.players = append(r.players, p)
	err := r.compile(p, source)
	r.publish()
	return p, err
}

// Remove deletes the player with id. It reports whether one existed.
func (r *Registry) Remove(id int32) bool {
	i := slices.IndexFunc(r.players, func(p *Player) bool { return p.ID == id })
	if i < 0 {
		return false
	}
	r.players = slices.Delete(r.players, i, i+1)
	r.logger.Info("player removed", "id", id)
	r.publish()
	return true
}

// SetID moves p to newID. It is rejected, leaving p untouched, when newID is
// zero, does not fit in 32 bits or belongs to another player.
func (r *Registry) SetID(p *Player, newID int64) bool {
	if !r.owns(p) {
		return false
	}
	if newID == 0 || newID < math.MinInt32 || newID > math.MaxInt32 {
		r.logger.Debug("id rejected", "id", p.ID, "new", newID)
		return false
	}
	if other, ok := r.Player(int32(newID)); ok && other != p {
		r.logger.Debug("id taken", "id", p.ID, "new", newID)
		return false
	}
	p.ID = int32(newID)
	r.publish()
	return true
}

// SetIDText is SetID for user input; anything but a base 10 integer is
// rejected.
func (r *Registry) SetIDText(p *Player, s string) bool {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		r.logger.Debug("id rejected", "id", p.ID, "input", s)
		return false
	}
	return r.SetID(p, id)
}

// RandomPlayerID returns a nonzero id no player holds. Ids are drawn from
// the registry's random source in batches of eight.
func (r *Registry) RandomPlayerID() (int32, error) {
	var buf [8 * 4]byte
	for {
		if _, err := io.ReadFull(r.random, buf[:]); err != nil {
			return 0, fmt.Errorf("random player id: %w", err)
		}
		for i := 0; i < len(buf); i += 4 {
			id := int32(binary.LittleEndian.Uint32(buf[i:]))
			if id == 0 {
				continue
			}
			if _, taken := r.Player(id); !taken {
				return id, nil
			}
		}
	}
}

// Compile stores code as p's source and compiles it. On failure the
// previous champion is kept and the error is recorded on p and returned.
func (r *Registry) Compile(p *Player, code string) error {
	if !r.owns(p) {
		return fmt.Errorf("%w: %d is not registered", ErrInvalidID, p.ID)
	}
	err := r.compile(p, code)
	r.publish()
	return err
}

func (r *Registry) compile(p *Player, code string) error {
	p.Source = code
	champ, err := r.compiler.Compile(code)
	if err != nil {
		var cerr *engine.CompileError
		if !errors.As(err, &cerr) {
			cerr = &engine.CompileError{Reason: err.Error(), Err: err}
		}
		p.Err = cerr
		r.logger.Warn("compile failed", "id", p.ID, "err", cerr)
		return cerr
	}
	p.Champion = &champ
	p.Err = nil
	r.logger.Debug("compiled", "id", p.ID, "name", champ.Name, "size", champ.CodeSize)
	return nil
}

func (r *Registry) SetColor(p *Player, c RGB) {
	p.Color = c
}

// Colors returns the current owner id to color mapping.
func (r *Registry) Colors() ColorTable {
	t := make(ColorTable, len(r.players))
	for _, p := range r.players {
		t[p.ID] = p.Color
	}
	return t
}

// NextColor is the first palette color no player uses, or FallbackColor.
func (r *Registry) NextColor() RGB {
	for _, c := range r.palette {
		used := slices.ContainsFunc(r.players, func(p *Player) bool { return p.Color == c })
		if !used {
			return c
		}
	}
	return FallbackColor
}

func (r *Registry) owns(p *Player) bool {
	return p != nil && slices.Contains(r.players, p)
}

// publish notifies subscribers when the ready set differs from the last
// one they saw.
func (r *Registry) publish() {
	ready := r.Ready()
	if sameReady(ready, r.ready) {
		return
	}
	r.ready = ready
	for _, fn := range r.subscribers {
		fn(ready)
	}
}

func sameReady(a, b []Ready) bool {
	return slices.EqualFunc(a, b, func(x, y Ready) bool {
		return x.ID == y.ID && bytes.Equal(x.ByteCode, y.ByteCode)
	})
}
