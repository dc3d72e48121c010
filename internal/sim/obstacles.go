package sim

import (
	"math/rand"
	"sort"

	"github.com/vovakirdan/autododge/internal/config"
	"github.com/vovakirdan/autododge/internal/core"
)

// Obstacle is one component of a gap pair.
type Obstacle struct {
	Rect   core.Rect
	x      float64 // Float position of Rect.X
	Color  core.RGB
	Top    bool // Upper component of its pair; only these score
	Passed bool // Right edge is behind the agent
}

// ObstacleField handles spawning, movement and removal of gap pairs.
type ObstacleField struct {
	obstacles  []Obstacle
	rng        *rand.Rand
	screenW    int
	screenH    int
	width      int
	margin     int
	spawnTimer int
	difficulty *config.Difficulty
}

// NewObstacleField creates an empty field. rng is shared with the rest of the run.
func NewObstacleField(rng *rand.Rand, screenW, screenH int, t Tuning, diff *config.Difficulty) *ObstacleField {
	return &ObstacleField{
		obstacles:  make([]Obstacle, 0, 16),
		rng:        rng,
		screenW:    screenW,
		screenH:    screenH,
		width:      t.ObstacleWidth,
		margin:     t.GapMargin,
		difficulty: diff,
	}
}

// Update spawns a pair when the spawn interval has elapsed, moves every
// obstacle left by speed and removes those that left the screen.
// Returns how many top components were removed this tick.
func (f *ObstacleField) Update(speed float64, level int, color core.RGB, agentX int) int {
	f.spawnTimer++
	if f.spawnTimer > f.difficulty.SpawnInterval(speed) {
		f.spawnTimer = 0
		f.Spawn(level, color)
	}

	for i := range f.obstacles {
		o := &f.obstacles[i]
		o.x -= speed
		o.Rect.X = int(o.x)
		if !o.Passed && o.Rect.Right() < agentX {
			o.Passed = true
		}
	}

	cleared := 0
	valid := f.obstacles[:0]
	for _, o := range f.obstacles {
		if o.Rect.Right() >= 0 {
			valid = append(valid, o)
			continue
		}
		if o.Top {
			cleared++
		}
	}
	f.obstacles = valid

	return cleared
}

// Spawn adds a gap pair at the right edge of the screen.
// The gap top is uniform in [margin, screenH - margin - gap].
func (f *ObstacleField) Spawn(level int, color core.RGB) {
	gap := f.difficulty.GapSize(level)

	minY := f.margin
	maxY := f.screenH - f.margin - gap
	if maxY < minY {
		maxY = minY // Edge case for very small screens
	}
	gapY := minY
	if maxY > minY {
		gapY = minY + f.rng.Intn(maxY-minY+1)
	}

	x := f.screenW
	bottomY := gapY + gap
	f.obstacles = append(f.obstacles,
		Obstacle{Rect: core.NewRect(x, 0, f.width, gapY), x: float64(x), Color: color, Top: true},
		Obstacle{Rect: core.NewRect(x, bottomY, f.width, f.screenH-bottomY), x: float64(x), Color: color},
	)
}

// Obstacles returns the live obstacles in spawn order.
func (f *ObstacleField) Obstacles() []Obstacle {
	return f.obstacles
}

// Collides reports whether r overlaps any obstacle.
func (f *ObstacleField) Collides(r core.Rect) bool {
	for _, o := range f.obstacles {
		if r.Intersects(o.Rect) {
			return true
		}
	}
	return false
}

// Target returns the autopilot aim point: the middle of the nearest upcoming
// gap, or ok=false when no complete pair lies ahead of agentLeft.
func (f *ObstacleField) Target(agentLeft, tolerance int) (y float64, ok bool) {
	visible := make([]core.Rect, 0, len(f.obstacles))
	for _, o := range f.obstacles {
		if o.Rect.Right() > agentLeft {
			visible = append(visible, o.Rect)
		}
	}
	if len(visible) == 0 {
		return 0, false
	}

	sort.SliceStable(visible, func(i, j int) bool { return visible[i].X < visible[j].X })
	nearest := visible[0]

	pair := visible[:0:0]
	for _, r := range visible {
		if core.Abs(r.X-nearest.X) < tolerance {
			pair = append(pair, r)
		}
	}
	if len(pair) < 2 {
		return 0, false
	}

	sort.SliceStable(pair, func(i, j int) bool { return pair[i].Y < pair[j].Y })
	return float64(pair[0].Bottom()+pair[1].Y) / 2, true
}
