package sim

import (
	"math"

	"github.com/vovakirdan/autododge/internal/core"
)

// levelColors cycle per level for obstacles and the level banner.
var levelColors = []core.RGB{core.NeonMagenta, core.NeonGreen, core.NeonOrange, core.NeonRed}

// Progress tracks level and experience.
type Progress struct {
	Level  int
	XP     int
	NextXP int
	Flash  int // Frames left on the level banner

	growth      float64
	flashFrames int
}

// NewProgress starts at level 1 with the first threshold.
func NewProgress(t Tuning) *Progress {
	return &Progress{
		Level:       1,
		NextXP:      t.FirstThreshold,
		growth:      t.ThresholdGrowth,
		flashFrames: t.FlashFrames,
	}
}

// AddXP adds experience and reports whether the level went up.
// On level-up XP resets and the next threshold grows by the growth factor, rounded.
func (p *Progress) AddXP(amount int) bool {
	p.XP += amount
	if p.XP < p.NextXP {
		return false
	}
	p.Level++
	p.XP = 0
	p.NextXP = int(math.Round(float64(p.NextXP) * p.growth))
	p.Flash = p.flashFrames
	return true
}

// TickFlash counts the banner down. It returns the remaining frames and
// whether the banner is visible this frame.
func (p *Progress) TickFlash() (remaining int, visible bool) {
	if p.Flash <= 0 {
		return 0, false
	}
	p.Flash--
	return p.Flash, true
}

// Color returns the color of the current level.
func (p *Progress) Color() core.RGB {
	return levelColors[(p.Level-1)%len(levelColors)]
}
