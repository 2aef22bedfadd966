package render

import (
	"slices"

	"github.com/san-kum/corearena/internal/engine"
)

// Inspector is the part of an engine selections read from.
type Inspector interface {
	Decode(addr int) engine.Decoded
	ProcessesAt(addr int) []engine.ProcessInfo
}

// Selection is an inspected address and the instruction that starts there.
type Selection struct {
	Cell        int
	Instruction string
	Length      int
	Processes   []engine.ProcessInfo
}

// Covers lists the addresses the selected instruction spans, wrapping
// around the end of memory.
func (s Selection) Covers(memSize int) []int {
	addrs := make([]int, s.Length)
	for i := range addrs {
		addrs[i] = (s.Cell + i) % memSize
	}
	return addrs
}

func inspect(idx int, eng Inspector) Selection {
	d := eng.Decode(idx)
	return Selection{
		Cell:        idx,
		Instruction: d.Text,
		Length:      max(d.Size, 1),
		Processes:   eng.ProcessesAt(idx),
	}
}

// Selections is an ordered set of selections keyed by cell.
type Selections struct {
	items []Selection
}

// Select makes idx the only selection.
func (s *Selections) Select(idx int, eng Inspector) {
	s.items = append(s.items[:0], inspect(idx, eng))
}

// Toggle adds idx, or removes it when already selected.
func (s *Selections) Toggle(idx int, eng Inspector) {
	if !s.Discard(idx) {
		s.items = append(s.items, inspect(idx, eng))
	}
}

// Discard removes idx and reports whether it was selected.
func (s *Selections) Discard(idx int) bool {
	i := slices.IndexFunc(s.items, func(sel Selection) bool { return sel.Cell == idx })
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

func (s *Selections) Clear() { s.items = s.items[:0] }

// Refresh decodes every selection again, after the engine moved on or was
// replaced.
func (s *Selections) Refresh(eng Inspector) {
	for i, sel := range s.items {
		s.items[i] = inspect(sel.Cell, eng)
	}
}

func (s *Selections) All() []Selection { return slices.Clone(s.items) }

func (s *Selections) Len() int { return len(s.items) }

func (s *Selections) Contains(idx int) bool {
	return slices.ContainsFunc(s.items, func(sel Selection) bool { return sel.Cell == idx })
}
