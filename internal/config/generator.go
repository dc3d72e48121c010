package config

import (
	"math"
	"math/rand"
	"time"
)

// MaxSeed bounds generated seeds to [0, MaxSeed].
const MaxSeed = 999999

// Generator draws randomized run configs from one settings profile.
type Generator struct {
	settings Settings
	rng      *rand.Rand
}

// NewGenerator creates a generator for the given profile.
// A nil rng uses a time-seeded source.
func NewGenerator(settings Settings, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{settings: settings, rng: rng}
}

// Settings returns the profile this generator draws from.
func (g *Generator) Settings() Settings {
	return g.settings
}

// Generate produces a new Config. It never fails: every value comes from
// the profile's candidate sets and ranges.
func (g *Generator) Generate() Config {
	gen := g.settings.Generator
	render := g.settings.Render

	seed := g.rng.Int63n(MaxSeed + 1)

	duration := render.MaxDuration
	if len(gen.Durations) > 0 {
		duration = gen.Durations[g.rng.Intn(len(gen.Durations))]
	}
	// Enforce the hard cap
	if render.MaxDuration > 0 && duration > render.MaxDuration {
		duration = render.MaxDuration
	}

	skill := gen.SkillMin + g.rng.Float64()*(gen.SkillMax-gen.SkillMin)
	skill = math.Round(skill*100) / 100
	if skill < gen.SkillMin {
		skill = gen.SkillMin
	}
	if skill > gen.SkillMax {
		skill = gen.SkillMax
	}

	theme := DefaultTheme()
	if len(gen.Themes) > 0 {
		theme = gen.Themes[g.rng.Intn(len(gen.Themes))]
	}

	return Config{
		Seed:         seed,
		Duration:     duration,
		AISkill:      skill,
		Theme:        theme,
		Width:        render.Width,
		Height:       render.Height,
		FPS:          render.FPS,
		BaseSpeed:    g.settings.Speed.BaseSpeed,
		SpeedRamp:    g.settings.Speed.SpeedRamp,
		TailDuration: render.TailDuration,
		Profile:      g.settings.Version,
	}
}

// Fixed builds a config from the profile's static settings with explicit
// seed, duration and skill. Used for reproducible renders and fixtures.
func (s Settings) Fixed(seed int64, duration int, skill float64, theme Theme) Config {
	return Config{
		Seed:         seed,
		Duration:     duration,
		AISkill:      skill,
		Theme:        theme,
		Width:        s.Render.Width,
		Height:       s.Render.Height,
		FPS:          s.Render.FPS,
		BaseSpeed:    s.Speed.BaseSpeed,
		SpeedRamp:    s.Speed.SpeedRamp,
		TailDuration: s.Render.TailDuration,
		Profile:      s.Version,
	}
}
