package tui

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/corearena/internal/arena"
	"github.com/san-kum/corearena/internal/render"
)

const panelWidth = 56

type frameMsg time.Time

type model struct {
	arena *arena.Arena
	grid  *Grid

	width  int
	height int
	scroll int

	cursor  int
	radix   int
	editing bool
	editBuf string
	status  string

	// armed is set while a frameMsg is on its way.
	armed bool
}

// New returns the arena screen. grid must be the surface a was built with.
func New(a *arena.Arena, grid *Grid) tea.Model {
	return model{
		arena:  a,
		grid:   grid,
		radix:  16,
		width:  grid.Geometry().Width() + panelWidth,
		height: grid.Geometry().Height() + 1,
	}
}

// Run shows the arena until the user quits.
func Run(a *arena.Arena, grid *Grid) error {
	p := tea.NewProgram(New(a, grid), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd { return nil }

// schedule asks bubbletea for a frame when the arena queue has work and no
// frame is pending yet.
func (m model) schedule() (model, tea.Cmd) {
	if m.armed {
		return m, nil
	}
	d, ok := m.arena.Queue.Next()
	if !ok {
		return m, nil
	}
	m.armed = true
	return m, tea.Tick(d, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scroll = min(m.scroll, m.maxScroll())
		return m, nil
	case frameMsg:
		m.armed = false
		m.arena.Queue.RunDue()
		return m.schedule()
	case tea.MouseMsg:
		m = m.mouse(msg)
		return m.schedule()
	case tea.KeyMsg:
		var cmd tea.Cmd
		if m.editing {
			m = m.editKey(msg)
		} else if m, cmd = m.key(msg); cmd != nil {
			return m, cmd
		}
		return m.schedule()
	}
	return m, nil
}

func (m model) key(msg tea.KeyMsg) (model, tea.Cmd) {
	a := m.arena
	ctrl := a.Controller
	m.status = ""

	var err error
	switch msg.String() {
	case "q", "ctrl+c":
		ctrl.Pause()
		return m, tea.Quit
	case " ":
		ctrl.TogglePlay()
	case "right", "n":
		err = ctrl.Step()
	case "s":
		err = ctrl.Stop()
	case "+", "f":
		ctrl.NextSpeed()
	case "v":
		a.ToggleValues()
	case "g":
		ctrl.Pause()
		m.editing = true
		m.editBuf = ""
	case "tab":
		if n := len(a.Registry.Players()); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case "i":
		players := a.Registry.Players()
		if len(players) > 0 {
			err = a.RerollID(players[min(m.cursor, len(players)-1)])
		}
	case "x":
		if m.radix == 16 {
			m.radix = 10
		} else {
			m.radix = 16
		}
	case "esc":
		a.ClearSelection()
	case "up", "k":
		m.scroll = max(m.scroll-1, 0)
	case "down", "j":
		m.scroll = min(m.scroll+1, m.maxScroll())
	case "pgup":
		m.scroll = max(m.scroll-m.gridRows(), 0)
	case "pgdown":
		m.scroll = min(m.scroll+m.gridRows(), m.maxScroll())
	}
	if err != nil {
		m.status = err.Error()
	}
	return m, nil
}

func (m model) editKey(msg tea.KeyMsg) model {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		target, err := strconv.Atoi(m.editBuf)
		if err != nil {
			m.status = "not a cycle: " + m.editBuf
			break
		}
		if err := m.arena.Controller.SetCycle(target); err != nil {
			m.status = err.Error()
		}
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyBackspace:
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r >= '0' && r <= '9' {
				m.editBuf += string(r)
			}
		}
	}
	return m
}

func (m model) mouse(msg tea.MouseMsg) model {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m
	}
	if msg.Y >= m.gridRows() {
		return m
	}
	mods := render.Modifiers{Ctrl: msg.Ctrl, Shift: msg.Shift, Alt: msg.Alt}
	m.arena.Click(msg.X, msg.Y+m.scroll, mods)
	return m
}

// gridRows is how many grid lines fit above the help line.
func (m model) gridRows() int {
	return max(m.height-1, 1)
}

func (m model) maxScroll() int {
	return max(len(m.grid.Lines())-m.gridRows(), 0)
}

func (m model) View() string {
	lines := m.grid.Lines()
	end := min(m.scroll+m.gridRows(), len(lines))
	grid := strings.Join(lines[m.scroll:end], "\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, panelStyle.Render(m.panel()))
	return body + "\n" + m.help()
}

func (m model) help() string {
	if m.editing {
		return cyan.Render(" goto cycle: ") + white.Render(m.editBuf+"▋") + dim.Render("   enter go  esc cancel")
	}
	if m.status != "" {
		return red.Render(" " + m.status)
	}
	return dim.Render(" space play  n step  s stop  f speed  v values  g goto  tab/i player id  x radix  esc clear  q quit")
}
