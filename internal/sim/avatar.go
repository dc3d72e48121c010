package sim

import (
	"math/rand"

	"github.com/vovakirdan/autododge/internal/core"
)

// Mood is the reaction camera's expression.
type Mood int

const (
	MoodNormal Mood = iota
	MoodScared
	MoodHype
)

// String returns the mood name.
func (m Mood) String() string {
	switch m {
	case MoodScared:
		return "scared"
	case MoodHype:
		return "hype"
	default:
		return "normal"
	}
}

// MoodFor derives the mood from this tick's signals. A level-up wins over a
// near miss; nearby is the agent rect already inflated by the near-miss margin.
func MoodFor(levelJustUp bool, nearby core.Rect, obstacles []Obstacle) Mood {
	if levelJustUp {
		return MoodHype
	}
	for _, o := range obstacles {
		if nearby.Intersects(o.Rect) {
			return MoodScared
		}
	}
	return MoodNormal
}

// Avatar is the streamer reaction camera in the corner of the frame.
type Avatar struct {
	Mood   Mood
	Accent core.RGB // Border color in the normal mood
	Shake  int      // Horizontal jitter while scared
	Bob    float64  // Phase of the idle bobbing
	blink  int
}

// NewAvatar creates a calm avatar with the theme accent.
func NewAvatar(accent core.RGB) *Avatar {
	return &Avatar{Accent: accent}
}

// Update applies the mood for this tick and advances the animation timers.
func (a *Avatar) Update(mood Mood, rng *rand.Rand) {
	a.Mood = mood
	a.Shake = 0
	if mood == MoodScared {
		a.Shake = rng.Intn(5) - 2
	}

	if mood == MoodNormal {
		a.Bob += 0.2
	} else {
		a.Bob += 0.5
	}

	a.blink++
	if mood == MoodNormal && a.blink > 210 {
		a.blink = 0
	}
}

// Blinking reports whether the eyes are closed this frame.
func (a *Avatar) Blinking() bool {
	return a.Mood == MoodNormal && a.blink > 200
}

// Border returns the panel border color for the current mood.
func (a *Avatar) Border() core.RGB {
	switch a.Mood {
	case MoodScared:
		return core.NeonRed
	case MoodHype:
		return core.NeonYellow
	default:
		return a.Accent
	}
}
