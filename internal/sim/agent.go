package sim

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/autododge/internal/core"
)

// TrailPoint is one afterimage sample behind the agent.
type TrailPoint struct {
	X, Y   int
	Radius int
}

// Agent is the autopiloted player. It only moves vertically.
type Agent struct {
	Rect     core.Rect
	y        float64 // Float position of Rect.Y
	velocity float64
	trail    []TrailPoint
	blink    int
	wobble   float64 // Vertical draw offset
}

// NewAgent places the agent at x, vertically centred.
func NewAgent(x, size, screenH int) *Agent {
	y := screenH / 2
	return &Agent{
		Rect:  core.NewRect(x, y, size, size),
		y:     float64(y),
		trail: make([]TrailPoint, 0, 11),
	}
}

// Velocity returns the vertical velocity in pixels per tick.
func (a *Agent) Velocity() float64 {
	return a.velocity
}

// Trail returns the afterimage samples, oldest first.
func (a *Agent) Trail() []TrailPoint {
	return a.trail
}

// Steer moves the agent toward targetY with a damped spring.
// The agent is kept inside [0, screenH - size]; touching an edge reverses
// and halves the velocity.
func (a *Agent) Steer(targetY float64, screenH int, t Tuning, rng *rand.Rand) {
	_, cy := a.Rect.Center()
	a.velocity += (targetY - float64(cy)) * t.Spring
	a.velocity *= t.Damping
	a.y += a.velocity

	maxY := float64(screenH - a.Rect.H)
	if a.y < 0 {
		a.y = 0
		a.velocity = -a.velocity * t.Bounce
	}
	if a.y > maxY {
		a.y = maxY
		a.velocity = -a.velocity * t.Bounce
	}
	a.Rect.Y = int(a.y)

	if math.Abs(a.velocity) > t.TrailMinSpd {
		cx, cy := a.Rect.Center()
		a.trail = append(a.trail, TrailPoint{X: cx, Y: cy, Radius: 5 + rng.Intn(6)})
	}
	if len(a.trail) > t.TrailMax {
		a.trail = a.trail[len(a.trail)-t.TrailMax:]
	}
}

// Animate advances the cosmetic timers. seconds is the run clock.
func (a *Agent) Animate(seconds float64) {
	a.wobble = math.Sin(seconds*10) * 3
	a.blink++
	if a.blink > 160 {
		a.blink = 0
	}
}

// Blinking reports whether the eye is closed this frame.
func (a *Agent) Blinking() bool {
	return a.blink > 150
}

// Jitter is the autopilot's deliberate aiming error at a given frame.
// Skill 2.0 and above aims perfectly.
func Jitter(frame int, skill float64, t Tuning) float64 {
	scale := (2.0 - skill) * 0.5
	if scale < 0 {
		scale = 0
	}
	return math.Sin(float64(frame)/t.JitterPeriod) * t.JitterAmplitude * scale
}
