package config

import "sort"

// Presets are ready made rosters of built-in champions.
var Presets = map[string]*Config{
	"duel": {
		UPS: DefaultUPS, MaxSpeed: DefaultMaxSpeed, Speed: DefaultSpeed, ShowValues: true,
		Players: []PlayerConfig{
			{ID: 1, Builtin: "sweepmaster"},
			{ID: 2, Builtin: "kappa"},
		},
	},
	"melee": {
		UPS: DefaultUPS, MaxSpeed: DefaultMaxSpeed, Speed: 4, ShowValues: true,
		Players: []PlayerConfig{
			{ID: 1, Builtin: "sweepmaster"},
			{ID: 2, Builtin: "kappa"},
			{ID: 3, Builtin: "helltrain"},
			{ID: 4, Builtin: "justin_bee"},
		},
	},
	"solo": {
		UPS: DefaultUPS, MaxSpeed: DefaultMaxSpeed, Speed: DefaultSpeed, ShowValues: true,
		Players: []PlayerConfig{
			{ID: 1, Builtin: "justin_bee", Color: "#a3be8c"},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Players = append([]PlayerConfig(nil), p.Players...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
