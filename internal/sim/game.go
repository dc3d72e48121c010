package sim

import (
	"math/rand"

	"github.com/vovakirdan/autododge/internal/config"
	"github.com/vovakirdan/autododge/internal/core"
)

// Game is one run of the dodger. It is not safe for concurrent use;
// concurrent runs each own a Game.
type Game struct {
	cfg        config.Config
	tuning     Tuning
	difficulty *config.Difficulty
	rng        *rand.Rand
	bus        AudioBus

	phase       Phase
	outcome     Outcome
	frame       int // Index of the frame produced by the last Step
	frames      int // Frames produced so far
	tailElapsed int

	speed       float64
	score       int
	levelJustUp bool

	flashRemaining int
	flashVisible   bool

	agent     *Agent
	field     *ObstacleField
	progress  *Progress
	particles *Particles
	chat      *ChatFeed
	avatar    *Avatar
}

// New creates a run for cfg. The config is assumed valid.
func New(cfg config.Config, tuning Tuning) *Game {
	rng := rand.New(rand.NewSource(cfg.Seed))
	diff := config.NewDifficulty(cfg)

	g := &Game{
		cfg:        cfg,
		tuning:     tuning,
		difficulty: diff,
		rng:        rng,
		bus:        nopBus{},
		frame:      -1,
		speed:      diff.Speed(1, 0),
		agent:      NewAgent(tuning.AgentX, tuning.AgentSize, cfg.Height),
		field:      NewObstacleField(rng, cfg.Width, cfg.Height, tuning, diff),
		progress:   NewProgress(tuning),
		particles:  NewParticles(tuning.ParticleLife),
		chat:       NewChatFeed(rng, tuning),
		avatar:     NewAvatar(cfg.Theme.Accent),
	}
	return g
}

// SetAudioBus routes mix changes and cues to bus. A nil bus discards them.
func (g *Game) SetAudioBus(bus AudioBus) {
	if bus == nil {
		bus = nopBus{}
	}
	g.bus = bus
}

// Config returns the run config.
func (g *Game) Config() config.Config {
	return g.cfg
}

// Phase returns the current state machine phase.
func (g *Game) Phase() Phase {
	return g.phase
}

// Outcome reports why the run stopped playing.
func (g *Game) Outcome() Outcome {
	return g.outcome
}

// Frames returns how many frames have been produced.
func (g *Game) Frames() int {
	return g.frames
}

// Score returns the current score.
func (g *Game) Score() int {
	return g.score
}

// Level returns the current level.
func (g *Game) Level() int {
	return g.progress.Level
}

// Step advances the simulation by one frame. It returns false, without
// producing a frame, once the run is finished.
//
// A run that reaches the duration cap produces exactly fps*(duration+tail)
// frames; one that collides at frame c produces c + fps*tail. The frame on
// which game over begins is the first tail frame.
func (g *Game) Step() bool {
	if g.phase == Finished {
		return false
	}

	frame := g.frames

	if g.phase == Running {
		if frame >= g.cfg.DurationFrames() {
			g.enterGameOver(OutcomeTimeout)
		} else {
			g.update(frame)
		}
	}

	if g.phase == GameOver {
		g.tailElapsed++
		if g.tailElapsed > g.cfg.TailFrames() {
			g.phase = Finished
			return false
		}
	}

	g.updateOverlays()

	g.frame = frame
	g.frames++
	return true
}

// update runs one tick of gameplay.
func (g *Game) update(frame int) {
	g.speed = g.difficulty.Speed(g.progress.Level, frame)
	g.bus.SetMix(g.difficulty.MixRatio(g.speed))

	cleared := g.field.Update(g.speed, g.progress.Level, g.progress.Color(), g.agent.Rect.X)
	for i := 0; i < cleared; i++ {
		g.score += g.tuning.PointsPerObstacle
		if g.progress.AddXP(g.tuning.PointsPerObstacle) {
			g.levelJustUp = true
			g.bus.Cue(CueLevelUp)
			g.chat.Add(MoodHype)
		}
	}

	target := float64(g.cfg.Height / 2)
	if y, ok := g.field.Target(g.agent.Rect.X, g.tuning.PairTolerance); ok {
		target = y
	}
	target += Jitter(frame, g.cfg.AISkill, g.tuning)
	g.agent.Steer(target, g.cfg.Height, g.tuning, g.rng)
	g.agent.Animate(float64(frame) / float64(g.cfg.FPS))

	hitbox := g.agent.Rect.Inflate(-g.tuning.HitboxShrink, -g.tuning.HitboxShrink)
	if g.field.Collides(hitbox) {
		g.enterGameOver(OutcomeCollision)
	}
}

// enterGameOver fires the game-over side effects. It is only reachable from Running.
func (g *Game) enterGameOver(outcome Outcome) {
	g.phase = GameOver
	g.outcome = outcome
	if outcome != OutcomeCollision {
		return
	}

	g.bus.Cue(CueDeath)
	g.chat.Add(MoodScared)
	cx, cy := g.agent.Rect.Center()
	g.particles.Burst(float64(cx), float64(cy), g.tuning.ParticleCount, g.tuning.ParticleSpeed, core.NeonRed, g.rng)
}

// updateOverlays advances everything that keeps animating after game over.
func (g *Game) updateOverlays() {
	g.particles.Update()

	nearby := g.agent.Rect.Inflate(g.tuning.NearMissGrow, g.tuning.NearMissGrow)
	mood := MoodFor(g.levelJustUp, nearby, g.field.Obstacles())
	g.avatar.Update(mood, g.rng)
	g.chat.Update(mood)
	g.levelJustUp = false

	g.flashRemaining, g.flashVisible = g.progress.TickFlash()
}

// Snapshot returns a copy of the observable state.
func (g *Game) Snapshot() Snapshot {
	obstacles := g.field.Obstacles()
	rects := make([]core.Rect, len(obstacles))
	passed := 0
	for i, o := range obstacles {
		rects[i] = o.Rect
		if o.Passed {
			passed++
		}
	}

	return Snapshot{
		Frame:     g.frame,
		Phase:     g.phase,
		Outcome:   g.outcome,
		Agent:     g.agent.Rect,
		Velocity:  g.agent.Velocity(),
		Obstacles: rects,
		Passed:    passed,
		Score:     g.score,
		Level:     g.progress.Level,
		XP:        g.progress.XP,
		NextXP:    g.progress.NextXP,
		Speed:     g.speed,
		Mood:      g.avatar.Mood,
		Particles: len(g.particles.List()),
		Messages:  len(g.chat.Messages()),
	}
}
