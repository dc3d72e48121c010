package config

import "math"

// Difficulty calculates the dynamic game parameters from level and elapsed frames.
// Speed grows with both; everything else derives from speed or level.
type Difficulty struct {
	BaseSpeed  float64 // Multiplied by AI skill
	AISkill    float64
	LevelBonus float64 // Speed added per level
	SpeedRamp  float64 // Frames per +1 speed

	SpawnBase  int     // Spawn interval at speed 0, in frames
	SpawnSlope float64 // Frames removed from the interval per unit of speed
	SpawnFloor int     // Minimum spawn interval

	GapBase  int // Gap height at level 0
	GapStep  int // Gap shrink per level
	GapFloor int // Minimum gap height

	MixLow  float64 // Speed at which the high-intensity layer starts fading in
	MixSpan float64 // Speed range over which the crossfade completes
}

// NewDifficulty creates the difficulty model for a run.
func NewDifficulty(cfg Config) *Difficulty {
	ramp := cfg.SpeedRamp
	if ramp <= 0 {
		ramp = 1000 // Prevent division by zero
	}
	return &Difficulty{
		BaseSpeed:  cfg.BaseSpeed,
		AISkill:    cfg.AISkill,
		LevelBonus: 1.5,
		SpeedRamp:  ramp,
		SpawnBase:  60,
		SpawnSlope: 2,
		SpawnFloor: 20,
		GapBase:    250,
		GapStep:    10,
		GapFloor:   120,
		MixLow:     8,
		MixSpan:    5,
	}
}

// Speed returns the scroll speed in pixels per frame.
func (d *Difficulty) Speed(level, frames int) float64 {
	return d.BaseSpeed*d.AISkill + float64(level)*d.LevelBonus + float64(frames)/d.SpeedRamp
}

// SpawnInterval returns how many frames must pass between obstacle pairs.
// Faster play spawns more often, down to SpawnFloor.
func (d *Difficulty) SpawnInterval(speed float64) int {
	interval := d.SpawnBase - int(speed*d.SpawnSlope)
	if interval < d.SpawnFloor {
		interval = d.SpawnFloor
	}
	return interval
}

// GapSize returns the vertical passage height for the given level.
// Gap decreases with level and holds at GapFloor.
func (d *Difficulty) GapSize(level int) int {
	gap := d.GapBase - level*d.GapStep
	if gap < d.GapFloor {
		gap = d.GapFloor
	}
	return gap
}

// MixRatio returns the high-intensity music layer weight (0.0 to 1.0) for a speed.
func (d *Difficulty) MixRatio(speed float64) float64 {
	if d.MixSpan <= 0 {
		if speed >= d.MixLow {
			return 1
		}
		return 0
	}
	return clampF((speed-d.MixLow)/d.MixSpan, 0.0, 1.0)
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
