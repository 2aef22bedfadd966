package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/corearena/internal/arena"
	"github.com/san-kum/corearena/internal/engine"
	"github.com/san-kum/corearena/internal/render"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	panelStyle = lipgloss.NewStyle().Width(panelWidth).PaddingLeft(2)
)

func (m model) panel() string {
	var b strings.Builder
	ctrl := m.arena.Controller

	b.WriteString(cyan.Render("c o r e a r e n a") + "\n")
	b.WriteString(dimmer.Render(strings.Repeat("─", panelWidth-4)) + "\n")

	status := yellow.Render("○ paused")
	if ctrl.Playing() {
		status = green.Render("● playing")
	}
	fmt.Fprintf(&b, "%s  %s\n", status, dim.Render(fmt.Sprintf("×%d", ctrl.Speed())))
	fmt.Fprintf(&b, "%s %s   %s %s\n",
		dim.Render("cycle"), white.Render(strconv.Itoa(ctrl.Cycles())),
		dim.Render("processes"), white.Render(strconv.Itoa(ctrl.ProcessCount())))

	if r := ctrl.Result(); r != nil {
		label := "winner"
		if r.IsDraw() {
			label = "draw"
		}
		fmt.Fprintf(&b, "%s %s %s\n", green.Render(label), white.Render(joinIDs(r.Winners)),
			dim.Render(fmt.Sprintf("(last live %d)", r.LastLive)))
	}
	if err := m.arena.Err(); err != nil {
		b.WriteString(red.Render(err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("contenders") + "\n")
	cells := m.grid.Geometry().Cells()
	for i, c := range m.arena.Contenders() {
		b.WriteString(contender(c, cells, i == m.cursor) + "\n")
	}

	if sels := m.arena.Pipeline.Selections().All(); len(sels) > 0 {
		b.WriteString("\n" + dim.Render("selection") + "\n")
		for _, s := range sels {
			b.WriteString(m.selection(s))
		}
	}

	if h := m.arena.History(); len(h) > 1 {
		b.WriteString("\n" + asciigraph.Plot(h,
			asciigraph.Height(6),
			asciigraph.Width(panelWidth-14),
			asciigraph.Caption("processes")) + "\n")
	}
	return b.String()
}

func contender(c arena.Contender, cells int, selected bool) string {
	p := c.Player
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color.Hex())).Render("██")
	marker := "  "
	if selected {
		marker = cyan.Render("▸ ")
	}
	name := p.Name()
	if name == "" {
		name = "-"
	}
	line := fmt.Sprintf("%s%s %s %s %s",
		marker, swatch,
		white.Render(fmt.Sprintf("%-11d", p.ID)),
		fmt.Sprintf("%-12s", truncate(name, 12)),
		dim.Render(fmt.Sprintf("%5.1f%% p%-3d l%d",
			100*float64(c.Coverage)/float64(cells), c.Info.ProcessCount, c.Info.LastLive)))
	if p.Err != nil {
		line += "\n     " + red.Render(truncate(p.Err.Error(), panelWidth-8))
	}
	return line
}

func (m model) selection(s render.Selection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n",
		cyan.Render(fmt.Sprintf("%04x", s.Cell)),
		white.Render(s.Instruction),
		dim.Render(fmt.Sprintf("(%d)", s.Length)))
	for _, p := range s.Processes {
		b.WriteString(m.process(p))
	}
	return b.String()
}

func (m model) process(p engine.ProcessInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s %s %s %s\n",
		dim.Render("pid"), white.Render(strconv.Itoa(p.PID)),
		dim.Render(fmt.Sprintf("owner %d pc %04x", p.Owner, p.PC)),
		dim.Render(fmt.Sprintf("z=%v", p.ZeroFlag)),
		dim.Render(fmt.Sprintf("live %d", p.LastLiveCycle)))
	if p.Executing != nil {
		fmt.Fprintf(&b, "  %s %s\n", yellow.Render(p.Executing.Op),
			dim.Render(fmt.Sprintf("%d left", p.Executing.CyclesLeft)))
	}
	for i, r := range p.Registers {
		if i%4 == 0 {
			b.WriteString("  ")
		}
		b.WriteString(dim.Render(fmt.Sprintf("r%-2d ", i+1)) + white.Render(m.register(r)) + " ")
		if i%4 == 3 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m model) register(r int32) string {
	if m.radix == 16 {
		return fmt.Sprintf("%08x", uint32(r))
	}
	return fmt.Sprintf("%8d", r)
}

func joinIDs(ids []int32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ", ")
}

// truncate cuts s to n terminal cells, ending in an ellipsis when cut.
func truncate(s string, n int) string { return ansi.Truncate(s, n, "…") }
