package sim

import (
	"math/rand"

	"github.com/vovakirdan/autododge/internal/core"
)

// Particle is one spark of the death burst.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Life   int
	Color  core.RGB
}

// Particles is the live particle set.
type Particles struct {
	list    []Particle
	maxLife int
}

// NewParticles creates an empty set whose particles live maxLife frames.
func NewParticles(maxLife int) *Particles {
	return &Particles{maxLife: maxLife}
}

// Burst emits n particles at (x, y) with velocities uniform in [-speed, speed].
func (p *Particles) Burst(x, y float64, n int, speed float64, color core.RGB, rng *rand.Rand) {
	for i := 0; i < n; i++ {
		p.list = append(p.list, Particle{
			X:     x,
			Y:     y,
			VX:    (rng.Float64()*2 - 1) * speed,
			VY:    (rng.Float64()*2 - 1) * speed,
			Life:  p.maxLife,
			Color: color,
		})
	}
}

// Update moves and ages every particle and drops the expired ones.
func (p *Particles) Update() {
	alive := p.list[:0]
	for _, pt := range p.list {
		pt.X += pt.VX
		pt.Y += pt.VY
		pt.Life--
		if pt.Life > 0 {
			alive = append(alive, pt)
		}
	}
	p.list = alive
}

// List returns the live particles.
func (p *Particles) List() []Particle {
	return p.list
}

// Alpha returns the draw opacity of a particle, fading with remaining life.
func (p *Particles) Alpha(pt Particle) uint8 {
	if p.maxLife <= 0 || pt.Life <= 0 {
		return 0
	}
	return uint8(255 * pt.Life / p.maxLife)
}
