package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/corearena/internal/arena"
	"github.com/san-kum/corearena/internal/config"
	"github.com/san-kum/corearena/internal/engine"
	"github.com/san-kum/corearena/internal/engine/sandbox"
	"github.com/san-kum/corearena/internal/export"
	"github.com/san-kum/corearena/internal/gui"
	"github.com/san-kum/corearena/internal/player"
	"github.com/san-kum/corearena/internal/render"
	"github.com/san-kum/corearena/internal/sim"
	"github.com/san-kum/corearena/internal/storage"
	"github.com/san-kum/corearena/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	ups        int
	speed      int
	showValues bool
	logFile    string
	logLevel   string

	maxCycles  int
	jsonOutput bool
	tournament bool
	save       bool
	svgPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "corearena [champion.s ...]",
		Short:        "corewar arena",
		SilenceUsage: true,
		RunE:         runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".corearena", "match archive directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use a preset roster")
	pf.IntVar(&ups, "ups", config.DefaultUPS, "play loop frames per second")
	pf.IntVar(&speed, "speed", config.DefaultSpeed, "cycles per frame, a power of two")
	pf.BoolVar(&showValues, "values", true, "print cell values")
	pf.StringVar(&logFile, "log", "", "log file (the arena screen logs nowhere by default)")
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run [champion.s ...]",
		Short: "play a match without a screen",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&maxCycles, "cycles", 100000, "stop after this many cycles (0 runs to the end)")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "print a json report")
	runCmd.Flags().BoolVar(&tournament, "tournament", false, "play every pair of champions")
	runCmd.Flags().BoolVar(&save, "save", false, "archive the match in the data directory")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the final memory map to this file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived matches",
		RunE:  listMatches,
	}

	showCmd := &cobra.Command{
		Use:   "show <match_id>",
		Short: "print an archived match",
		Args:  cobra.ExactArgs(1),
		RunE:  showMatch,
	}
	showCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the record as json")
	showCmd.Flags().StringVar(&svgPath, "svg", "", "write the process history chart to this file")

	checkCmd := &cobra.Command{
		Use:   "check <champion.s>",
		Short: "compile a champion",
		Args:  cobra.ExactArgs(1),
		RunE:  checkChampion,
	}

	guiCmd := &cobra.Command{
		Use:   "gui [champion.s ...]",
		Short: "open the arena in a window (build with -tags ebiten)",
		RunE:  runGUI,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset rosters",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tSPEED\tCHAMPIONS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				champs := make([]string, len(p.Players))
				for i, pc := range p.Players {
					champs[i] = pc.Builtin
				}
				fmt.Fprintf(w, "%s\t%d\t%v\n", name, p.Speed, champs)
			}
			w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, checkCmd, guiCmd, presetsCmd, listCmd, showCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig merges the preset or config file with the flags the user set,
// then adds the champions given as arguments.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if cmd.Flags().Changed("ups") {
		cfg.UPS = ups
	}
	if cmd.Flags().Changed("speed") {
		cfg.Speed = speed
	}
	if cmd.Flags().Changed("values") {
		cfg.ShowValues = showValues
	}
	cfg.AddSources(args...)

	limit := config.MaxPlayers
	if tournament {
		limit = 0
	}
	if err := cfg.ValidateRoster(limit); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to the --log file, or to fallback when none is given.
func newLogger(fallback io.Writer) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, err
	}
	w, closeFn := fallback, func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		w, closeFn = f, func() { f.Close() }
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	return logger, closeFn, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	geo, err := cfg.ResolveGeometry(render.TerminalGeometry)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	grid := tui.NewGrid(geo)
	a, err := arena.New(arena.Options{
		Config:   cfg,
		Factory:  sandbox.Factory{},
		Compiler: sandbox.NewCompiler(),
		Surface:  grid,
		Geometry: geo,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return tui.Run(a, grid)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	geo, err := cfg.ResolveGeometry(render.PixelGeometry)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	w, err := gui.NewWindow(geo)
	if err != nil {
		return err
	}
	a, err := arena.New(arena.Options{
		Config:   cfg,
		Factory:  sandbox.Factory{},
		Compiler: sandbox.NewCompiler(),
		Surface:  w,
		Geometry: geo,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return w.Run(a)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(cfg.Players) == 0 {
		return errors.New("no champions: pass champion files, --preset or --config")
	}
	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	reg := player.NewRegistry(sandbox.NewCompiler(), player.WithLogger(logger.WithPrefix("player")))
	if err := arena.LoadRoster(reg, cfg, logger); err != nil {
		return err
	}
	for _, p := range reg.Players() {
		if p.Err != nil {
			return fmt.Errorf("player %d: %w", p.ID, p.Err)
		}
	}

	if tournament {
		return runTournament(cmd.Context(), reg)
	}

	m, err := sim.RunMatch(cmd.Context(), sandbox.Factory{}, reg.Ready(), maxCycles,
		sim.WithLogger(logger.WithPrefix("sim")))
	if err != nil {
		return err
	}

	if svgPath != "" {
		if err := writeMemoryMap(svgPath, reg, m, cfg.ShowValues); err != nil {
			return err
		}
	}

	report := buildReport(reg, m)
	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(report)
		if err != nil {
			return err
		}
		report.ID = id
		logger.Info("match saved", "id", id, "dir", dataDir)
	}
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printReport(report)
}

func buildReport(reg *player.Registry, m *sim.Match) storage.Record {
	r := storage.Record{
		Timestamp: time.Now(),
		Cycles:    m.Cycles,
		Finished:  m.Result != nil,
		Draw:      m.Result != nil && m.Result.IsDraw(),
		History:   m.Processes,
	}
	for _, ready := range m.Players {
		p, _ := reg.Player(ready.ID)
		info := m.Info[ready.ID]
		r.Players = append(r.Players, storage.PlayerRecord{
			ID:        p.ID,
			Name:      p.Name(),
			Size:      p.Champion.CodeSize,
			Processes: info.ProcessCount,
			LastLive:  info.LastLive,
			Winner:    m.Result != nil && slices.Contains(m.Result.Winners, p.ID),
		})
	}
	return r
}

func printReport(r storage.Record) error {
	status := "cycle limit reached"
	switch {
	case r.Draw:
		status = "draw"
	case r.Finished:
		status = "finished"
	}
	fmt.Printf("%s after %d cycles\n\n", status, r.Cycles)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tPROCESSES\tLAST LIVE\t")
	for _, p := range r.Players {
		mark := ""
		if p.Winner {
			mark = "winner"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%s\n", p.ID, p.Name, p.Size, p.Processes, p.LastLive, mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(r.History) > 1 {
		data := make([]float64, len(r.History))
		for i, n := range r.History {
			data[i] = float64(n)
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("processes"),
		))
	}
	return nil
}

func listMatches(cmd *cobra.Command, args []string) error {
	matches, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("no matches found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCYCLES\tPLAYERS\tWINNERS")
	for _, m := range matches {
		var players, winners []int32
		for _, p := range m.Players {
			players = append(players, p.ID)
			if p.Winner {
				winners = append(winners, p.ID)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%v\n",
			m.ID,
			m.Timestamp.Format("2006-01-02 15:04:05"),
			m.Cycles,
			players,
			winners,
		)
	}
	return w.Flush()
}

func showMatch(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rec, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if rec.History, err = st.LoadHistory(args[0]); err != nil {
		return err
	}
	if svgPath != "" {
		svg := export.HistoryToSVG(rec.History, 800, 200, "#81a1c1")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
	}
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	return printReport(*rec)
}

// writeMemoryMap paints the last cycle of m through a pixel pipeline into
// an SVG file.
func writeMemoryMap(path string, reg *player.Registry, m *sim.Match, values bool) error {
	surf := export.NewMemoryMap(render.PixelGeometry)
	pipe, err := render.New(render.PixelGeometry, surf)
	if err != nil {
		return err
	}
	err = pipe.Update(render.Context{Memory: m.Engine, Colors: reg.Colors(), ShowValues: values})
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(surf.String()), 0644)
}

func runTournament(ctx context.Context, reg *player.Registry) error {
	t := sim.NewTournament(sandbox.Factory{}, reg.Ready(), maxCycles)
	matches, err := t.Run(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DUEL\tCYCLES\tWINNERS")
	for _, m := range matches {
		winners := "-"
		if m.Result != nil {
			winners = fmt.Sprint(m.Result.Winners)
		}
		fmt.Fprintf(w, "%d vs %d\t%d\t%s\n", m.Players[0].ID, m.Players[1].ID, m.Cycles, winners)
	}
	fmt.Fprintln(w)

	standings := sim.Standings(matches)
	ids := make([]int32, 0, len(standings))
	for id := range standings {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b int32) int { return standings[b] - standings[a] })

	fmt.Fprintln(w, "PLAYER\tNAME\tWINS")
	for _, id := range ids {
		p, _ := reg.Player(id)
		fmt.Fprintf(w, "%d\t%s\t%d\n", id, p.Name(), standings[id])
	}
	return w.Flush()
}

func checkChampion(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	champ, err := sandbox.NewCompiler().Compile(string(src))
	var cerr *engine.CompileError
	if errors.As(err, &cerr) {
		fmt.Fprintf(os.Stderr, "%s:%v\n", path, cerr)
		return cerr
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s: %q, %d bytes of code, %d byte image\n", path, champ.Name, champ.CodeSize, len(champ.ByteCode))
	if champ.Comment != "" {
		fmt.Printf("  %s\n", champ.Comment)
	}
	return nil
}
