// Package config provides the per-run Config bundle, the versioned settings table
// it is generated from, and the difficulty formulas shared by the simulation and
// the soundtrack mixer.
package config

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/autododge/internal/core"
)

// ErrInvalidConfig is returned by Validate for configs that cannot be rendered.
var ErrInvalidConfig = errors.New("config: invalid config")

// Theme is a named color scheme for the play field.
type Theme struct {
	Name       string   `yaml:"name" json:"name"`
	Background core.RGB `yaml:"background" json:"background"`
	Grid       core.RGB `yaml:"grid" json:"grid"`
	Accent     core.RGB `yaml:"accent" json:"accent"`
}

// Config is the immutable parameter bundle for one run.
// It is created once and passed by value to every component that needs it.
type Config struct {
	Seed         int64   `yaml:"seed" json:"seed"`
	Duration     int     `yaml:"duration" json:"duration"` // Seconds of gameplay before the cap
	AISkill      float64 `yaml:"ai_skill" json:"ai_skill"`
	Theme        Theme   `yaml:"theme" json:"theme"`
	Width        int     `yaml:"width" json:"width"`
	Height       int     `yaml:"height" json:"height"`
	FPS          int     `yaml:"fps" json:"fps"`
	BaseSpeed    float64 `yaml:"base_speed" json:"base_speed"`
	SpeedRamp    float64 `yaml:"speed_ramp" json:"speed_ramp"`
	TailDuration int     `yaml:"tail_duration" json:"tail_duration"` // Seconds recorded after game over
	Profile      string  `yaml:"profile" json:"profile"`
}

// DurationFrames returns the frame index at which the gameplay cap triggers.
func (c Config) DurationFrames() int {
	return c.FPS * c.Duration
}

// TailFrames returns the number of frames recorded after game over.
func (c Config) TailFrames() int {
	return c.FPS * c.TailDuration
}

// MaxFrames returns the frame count of a run that reaches the duration cap.
func (c Config) MaxFrames() int {
	return c.DurationFrames() + c.TailFrames()
}

// FrameSize returns the byte size of one packed RGB24 frame.
func (c Config) FrameSize() int {
	return c.Width * c.Height * 3
}

// Validate checks a config that did not come from the generator
// (request bodies, CLI overrides). maxDuration <= 0 disables the duration cap check.
func (c Config) Validate(maxDuration int) error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.Width%2 != 0 || c.Height%2 != 0:
		// yuv420p needs even dimensions
		return fmt.Errorf("%w: dimensions %dx%d must be even", ErrInvalidConfig, c.Width, c.Height)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps %d", ErrInvalidConfig, c.FPS)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration %d", ErrInvalidConfig, c.Duration)
	case maxDuration > 0 && c.Duration > maxDuration:
		return fmt.Errorf("%w: duration %d exceeds max %d", ErrInvalidConfig, c.Duration, maxDuration)
	case c.TailDuration < 0:
		return fmt.Errorf("%w: tail duration %d", ErrInvalidConfig, c.TailDuration)
	case c.AISkill <= 0:
		return fmt.Errorf("%w: ai skill %.2f", ErrInvalidConfig, c.AISkill)
	case c.BaseSpeed <= 0 || c.SpeedRamp <= 0:
		return fmt.Errorf("%w: speed %.2f ramp %.2f", ErrInvalidConfig, c.BaseSpeed, c.SpeedRamp)
	}
	return nil
}

// Settings is one version of the static render settings plus the candidate sets
// the generator draws from.
type Settings struct {
	Version   string            `yaml:"version"`
	Render    RenderSettings    `yaml:"render"`
	Speed     SpeedSettings     `yaml:"speed"`
	Generator GeneratorSettings `yaml:"generator"`
}

// RenderSettings defines output geometry and timing.
type RenderSettings struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	FPS          int `yaml:"fps"`
	MaxDuration  int `yaml:"max_duration"`  // Hard cap on gameplay seconds
	TailDuration int `yaml:"tail_duration"` // 0 cuts the video at game over
}

// SpeedSettings defines the difficulty ramp inputs.
type SpeedSettings struct {
	BaseSpeed float64 `yaml:"base_speed"` // Multiplied by AI skill
	SpeedRamp float64 `yaml:"speed_ramp"` // Frames per +1 speed
}

// GeneratorSettings defines what the generator randomizes over.
type GeneratorSettings struct {
	Durations []int   `yaml:"durations"`
	SkillMin  float64 `yaml:"skill_min"`
	SkillMax  float64 `yaml:"skill_max"`
	Themes    []Theme `yaml:"themes"`
}

// SettingsTable is the versioned collection of settings profiles.
type SettingsTable struct {
	Default  string     `yaml:"default"`
	Profiles []Settings `yaml:"profiles"`
}

// Profile returns the settings with the given version.
// An empty name selects the table default.
func (t SettingsTable) Profile(name string) (Settings, error) {
	if name == "" {
		name = t.Default
	}
	for _, p := range t.Profiles {
		if p.Version == name {
			return p, nil
		}
	}
	return Settings{}, fmt.Errorf("config: unknown settings profile %q", name)
}

// Versions lists profile names in table order.
func (t SettingsTable) Versions() []string {
	out := make([]string, 0, len(t.Profiles))
	for _, p := range t.Profiles {
		out = append(out, p.Version)
	}
	return out
}

// ThemeByName looks up a theme in the profile palette.
func (s Settings) ThemeByName(name string) (Theme, bool) {
	for _, th := range s.Generator.Themes {
		if th.Name == name {
			return th, true
		}
	}
	return Theme{}, false
}
