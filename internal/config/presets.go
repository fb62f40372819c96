package config

import (
	"sort"

	"github.com/san-kum/qryx/internal/session"
)

var Presets = map[string]session.Configuration{
	"terminal": {
		Content:    session.DefaultContent,
		Background: session.Fill{Color: "#000000"},
		Dots:       session.Style{Color: "#00ff41", Shape: "square"},
	},
	"classic": {
		Content:       session.DefaultContent,
		Background:    session.Fill{Color: "#ffffff"},
		Dots:          session.Style{Color: "#000000", Shape: "square"},
		CornerSquares: session.Style{Shape: "square"},
	},
	"neon": {
		Content:       session.DefaultContent,
		Background:    session.Fill{Color: "#0a0a0a"},
		Dots:          session.Style{Color: "#ff00ff", Shape: "dots"},
		CornerSquares: session.Style{Color: "#00ffff", Shape: "extra-rounded"},
		CornerDots:    session.Style{Color: "#00ffff"},
	},
	"soft": {
		Content:       session.DefaultContent,
		Background:    session.Fill{Color: "#ffffff"},
		Dots:          session.Style{Color: "#222222", Shape: "rounded"},
		CornerSquares: session.Style{Shape: "dot"},
		CornerDots:    session.Style{Shape: "dot"},
	},
	"amber": {
		Content:       session.DefaultContent,
		Background:    session.Fill{Color: "#1a1000"},
		Dots:          session.Style{Color: "#ffb000", Shape: "classy"},
		CornerSquares: session.Style{Color: "#ffd060", Shape: "extra-rounded"},
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (session.Configuration, bool) {
	cfg, ok := Presets[name]
	if !ok {
		return session.Configuration{}, false
	}
	return cfg.Clone(), true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
