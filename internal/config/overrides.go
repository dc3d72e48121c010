package config

import "fmt"

// Overrides pins parts of a generated config. Nil and empty fields keep the
// generated value.
type Overrides struct {
	Seed     *int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Duration *int     `json:"duration,omitempty" yaml:"duration,omitempty"`
	AISkill  *float64 `json:"ai_skill,omitempty" yaml:"ai_skill,omitempty"`
	Theme    string   `json:"theme,omitempty" yaml:"theme,omitempty"`
}

// Apply returns cfg with the overrides applied, validated against the
// profile's duration cap.
func (s Settings) Apply(cfg Config, o Overrides) (Config, error) {
	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}
	if o.Duration != nil {
		cfg.Duration = *o.Duration
	}
	if o.AISkill != nil {
		cfg.AISkill = *o.AISkill
	}
	if o.Theme != "" {
		theme, ok := s.ThemeByName(o.Theme)
		if !ok {
			return Config{}, fmt.Errorf("%w: unknown theme %q", ErrInvalidConfig, o.Theme)
		}
		cfg.Theme = theme
	}

	if err := cfg.Validate(s.Render.MaxDuration); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
