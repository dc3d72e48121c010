package config

import (
	_ "embed"

	"github.com/vovakirdan/autododge/internal/core"
)

//go:embed defaults/settings.yaml
var defaultSettingsYAML []byte

// DefaultTheme returns the theme used when none is specified.
func DefaultTheme() Theme {
	return Theme{
		Name:       "neon",
		Background: core.RGB{R: 10, G: 10, B: 18},
		Grid:       core.RGB{R: 40, G: 0, B: 60},
		Accent:     core.RGB{R: 0, G: 255, B: 255},
	}
}

// DefaultThemes returns the v4 palette.
func DefaultThemes() []Theme {
	return []Theme{
		DefaultTheme(),
		{Name: "matrix", Background: core.RGB{R: 5, G: 20, B: 5}, Grid: core.RGB{R: 0, G: 60, B: 0}, Accent: core.RGB{R: 50, G: 255, B: 50}},
		{Name: "inferno", Background: core.RGB{R: 20, G: 5, B: 5}, Grid: core.RGB{R: 60, G: 0, B: 0}, Accent: core.RGB{R: 255, G: 50, B: 50}},
		{Name: "hazard", Background: core.RGB{R: 15, G: 15, B: 15}, Grid: core.RGB{R: 50, G: 50, B: 50}, Accent: core.RGB{R: 255, G: 220, B: 0}},
		{Name: "vapor", Background: core.RGB{R: 25, G: 10, B: 30}, Grid: core.RGB{R: 80, G: 0, B: 80}, Accent: core.RGB{R: 255, G: 100, B: 200}},
	}
}

// DefaultSettings returns the default (v4) settings profile.
func DefaultSettings() Settings {
	return Settings{
		Version: "v4",
		Render: RenderSettings{
			Width:        480,
			Height:       854,
			FPS:          30,
			MaxDuration:  40,
			TailDuration: 3,
		},
		Speed: SpeedSettings{
			BaseSpeed: 6.0,
			SpeedRamp: 1000.0,
		},
		Generator: GeneratorSettings{
			Durations: []int{30, 31, 32, 34},
			SkillMin:  1.05,
			SkillMax:  1.2,
			Themes:    DefaultThemes(),
		},
	}
}

// DefaultSettingsTable returns the hard-coded table used if the embedded YAML is unusable.
func DefaultSettingsTable() SettingsTable {
	v1 := Settings{
		Version: "v1",
		Render: RenderSettings{
			Width:        854,
			Height:       480,
			FPS:          30,
			MaxDuration:  15,
			TailDuration: 3,
		},
		Speed: SpeedSettings{
			BaseSpeed: 6.0,
			SpeedRamp: 1000.0,
		},
		Generator: GeneratorSettings{
			Durations: []int{15},
			SkillMin:  1.0,
			SkillMax:  1.0,
			Themes:    []Theme{DefaultTheme()},
		},
	}
	return SettingsTable{
		Default:  "v4",
		Profiles: []Settings{v1, DefaultSettings()},
	}
}

// DefaultSettingsYAML returns the embedded default settings document.
func DefaultSettingsYAML() []byte {
	return defaultSettingsYAML
}
