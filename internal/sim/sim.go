// Package sim implements the auto-playing dodger: an autopilot agent flying
// through procedurally spawned gap pairs, with the score, chat feed and
// reaction camera overlays that make up each frame.
//
// The simulation is deterministic for a given config: all randomness comes
// from one source seeded with Config.Seed, and rendering never consumes it.
package sim

import (
	"fmt"

	"github.com/vovakirdan/autododge/internal/core"
)

// Phase is the run state machine: Running -> GameOver -> Finished.
type Phase int

const (
	Running Phase = iota
	GameOver
	Finished
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case GameOver:
		return "game_over"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Outcome records why a run left the Running phase.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCollision
	OutcomeTimeout
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeCollision:
		return "collision"
	case OutcomeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Cue identifies a one-shot sound effect.
type Cue int

const (
	CueDeath Cue = iota
	CueLevelUp
)

// String returns the cue name.
func (c Cue) String() string {
	switch c {
	case CueDeath:
		return "death"
	case CueLevelUp:
		return "level_up"
	default:
		return fmt.Sprintf("Cue(%d)", int(c))
	}
}

// AudioBus receives the audio side effects of a tick.
type AudioBus interface {
	SetMix(ratio float64)
	Cue(c Cue)
}

type nopBus struct{}

func (nopBus) SetMix(float64) {}
func (nopBus) Cue(Cue)        {}

// Tuning holds the gameplay constants that are not part of the per-run config.
type Tuning struct {
	AgentX    int // Fixed horizontal position of the agent
	AgentSize int

	Spring       float64 // Velocity gained per pixel of target offset
	Damping      float64 // Velocity retained per tick
	Bounce       float64 // Velocity retained (reversed) when hitting an edge
	TrailMax     int
	TrailMinSpd  float64 // |velocity| above which trail samples are recorded
	HitboxShrink int     // Agent rect deflation for obstacle collisions
	NearMissGrow int     // Agent rect inflation that scares the avatar

	JitterAmplitude float64
	JitterPeriod    float64 // Frames per radian
	PairTolerance   int     // Max horizontal distance between pair components

	ObstacleWidth int
	GapMargin     int // Minimum distance from the gap to either screen edge

	PointsPerObstacle int
	FirstThreshold    int
	ThresholdGrowth   float64
	FlashFrames       int

	ParticleCount int
	ParticleSpeed float64
	ParticleLife  int

	ChatMax         int
	ChatLife        int
	ChatIntervalMin int
	ChatIntervalMax int
}

// DefaultTuning returns the standard gameplay constants.
func DefaultTuning() Tuning {
	return Tuning{
		AgentX:    100,
		AgentSize: 50,

		Spring:       0.08,
		Damping:      0.82,
		Bounce:       0.5,
		TrailMax:     10,
		TrailMinSpd:  1,
		HitboxShrink: 15,
		NearMissGrow: 50,

		JitterAmplitude: 30,
		JitterPeriod:    10,
		PairTolerance:   50,

		ObstacleWidth: 60,
		GapMargin:     50,

		PointsPerObstacle: 100,
		FirstThreshold:    500,
		ThresholdGrowth:   1.5,
		FlashFrames:       120,

		ParticleCount: 100,
		ParticleSpeed: 5,
		ParticleLife:  40,

		ChatMax:         7,
		ChatLife:        300,
		ChatIntervalMin: 30,
		ChatIntervalMax: 100,
	}
}

// Snapshot is a read-only view of the simulation after a tick.
type Snapshot struct {
	Frame     int
	Phase     Phase
	Outcome   Outcome
	Agent     core.Rect
	Velocity  float64
	Obstacles []core.Rect
	Passed    int // Obstacle components already behind the agent
	Score     int
	Level     int
	XP        int
	NextXP    int
	Speed     float64
	Mood      Mood
	Particles int
	Messages  int
}
