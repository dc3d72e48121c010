package sim

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/autododge/internal/config"
	"github.com/vovakirdan/autododge/internal/core"
)

type recordingBus struct {
	mixes []float64
	cues  []Cue
}

func (b *recordingBus) SetMix(r float64) { b.mixes = append(b.mixes, r) }
func (b *recordingBus) Cue(c Cue)        { b.cues = append(b.cues, c) }

func (b *recordingBus) count(c Cue) int {
	n := 0
	for _, got := range b.cues {
		if got == c {
			n++
		}
	}
	return n
}

func shortConfig(duration, tail int) config.Config {
	cfg := config.DefaultSettings().Fixed(777, duration, 1.0, config.DefaultTheme())
	cfg.TailDuration = tail
	return cfg
}

func runToEnd(g *Game) {
	for g.Step() {
	}
}

func TestExactFrameCountAtCap(t *testing.T) {
	tests := []struct {
		name           string
		duration, tail int
		expected       int
	}{
		{"two seconds with tail", 2, 1, 90},
		{"one second with tail", 1, 3, 120},
		{"no tail", 2, 0, 60},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := shortConfig(tc.duration, tc.tail)
			g := New(cfg, DefaultTuning())
			runToEnd(g)

			if g.Outcome() != OutcomeTimeout {
				t.Fatalf("Outcome() = %v, expected timeout", g.Outcome())
			}
			if g.Frames() != tc.expected {
				t.Errorf("Frames() = %d, expected %d", g.Frames(), tc.expected)
			}
			if g.Frames() != cfg.MaxFrames() {
				t.Errorf("Frames() = %d, MaxFrames() = %d", g.Frames(), cfg.MaxFrames())
			}
			if g.Phase() != Finished {
				t.Errorf("Phase() = %v, expected finished", g.Phase())
			}
			if g.Step() {
				t.Error("Step() after Finished should return false")
			}
		})
	}
}

func TestCollisionSideEffectsOnce(t *testing.T) {
	cfg := shortConfig(10, 1)
	g := New(cfg, DefaultTuning())
	bus := &recordingBus{}
	g.SetAudioBus(bus)

	for i := 0; i < 10; i++ {
		if !g.Step() {
			t.Fatal("run ended early")
		}
	}
	if g.Phase() != Running {
		t.Fatalf("Phase() = %v before the injected obstacle", g.Phase())
	}

	// A wall covering the whole play field guarantees a hit on the next tick
	g.field.obstacles = append(g.field.obstacles, Obstacle{
		Rect: core.NewRect(0, 0, cfg.Width, cfg.Height),
		x:    0,
	})
	messagesBefore := len(g.chat.Messages())

	if !g.Step() {
		t.Fatal("collision frame should still be produced")
	}
	snap := g.Snapshot()
	if snap.Phase != GameOver || snap.Outcome != OutcomeCollision {
		t.Fatalf("phase/outcome = %v/%v, expected game_over/collision", snap.Phase, snap.Outcome)
	}
	if snap.Frame != 10 {
		t.Errorf("collision frame = %d, expected 10", snap.Frame)
	}
	if snap.Particles != DefaultTuning().ParticleCount {
		t.Errorf("Particles = %d, expected %d", snap.Particles, DefaultTuning().ParticleCount)
	}
	if len(g.chat.Messages()) <= messagesBefore && len(g.chat.Messages()) < DefaultTuning().ChatMax {
		t.Error("collision should post a chat message")
	}

	runToEnd(g)

	if got := bus.count(CueDeath); got != 1 {
		t.Errorf("death cue played %d times, expected 1", got)
	}
	if g.Frames() != 10+cfg.TailFrames() {
		t.Errorf("Frames() = %d, expected %d", g.Frames(), 10+cfg.TailFrames())
	}
}

func TestCollisionWithoutTail(t *testing.T) {
	cfg := shortConfig(10, 0)
	g := New(cfg, DefaultTuning())

	for i := 0; i < 5; i++ {
		g.Step()
	}
	g.field.obstacles = append(g.field.obstacles, Obstacle{Rect: core.NewRect(0, 0, cfg.Width, cfg.Height)})

	if g.Step() {
		t.Error("collision with no tail should finish without another frame")
	}
	if g.Frames() != 5 {
		t.Errorf("Frames() = %d, expected 5", g.Frames())
	}
}

func TestMixRatioReported(t *testing.T) {
	g := New(shortConfig(1, 0), DefaultTuning())
	bus := &recordingBus{}
	g.SetAudioBus(bus)
	runToEnd(g)

	if len(bus.mixes) != 30 {
		t.Fatalf("SetMix called %d times, expected once per running frame (30)", len(bus.mixes))
	}
	for i, m := range bus.mixes {
		if m < 0 || m > 1 {
			t.Errorf("mix %d = %f outside [0, 1]", i, m)
		}
	}
}

func TestGoldenPathDeterminism(t *testing.T) {
	table := config.DefaultSettingsTable()
	v1, err := table.Profile("v1")
	if err != nil {
		t.Fatal(err)
	}
	cfg := v1.Fixed(12345, 15, 1.0, config.DefaultTheme())

	// Agent.Y after the given frame
	agentY := map[int]int{0: 238, 1: 235, 2: 232, 3: 228, 10: 218, 30: 221, 60: 270, 100: 263, 200: 241}
	const (
		firstSpawn = 45
		firstGapY  = 174
		finalScore = 700
		finalLevel = 2
	)

	g1 := New(cfg, DefaultTuning())
	g2 := New(cfg, DefaultTuning())

	prevScore, prevLevel := 0, 1
	for {
		ok1, ok2 := g1.Step(), g2.Step()
		if ok1 != ok2 {
			t.Fatalf("runs diverged in length at frame %d", g1.Frames())
		}
		if !ok1 {
			break
		}

		s1, s2 := g1.Snapshot(), g2.Snapshot()
		if !reflect.DeepEqual(s1, s2) {
			t.Fatalf("frame %d differs:\n%+v\n%+v", s1.Frame, s1, s2)
		}

		if y, ok := agentY[s1.Frame]; ok && s1.Agent.Y != y {
			t.Errorf("frame %d: Agent.Y = %d, expected %d", s1.Frame, s1.Agent.Y, y)
		}
		switch {
		case s1.Frame < firstSpawn && len(s1.Obstacles) != 0:
			t.Fatalf("frame %d: %d obstacles before the first spawn", s1.Frame, len(s1.Obstacles))
		case s1.Frame == firstSpawn:
			if len(s1.Obstacles) != 2 {
				t.Fatalf("frame %d: %d obstacles, expected the first pair", s1.Frame, len(s1.Obstacles))
			}
			if top := s1.Obstacles[0]; top.Y != 0 || top.H != firstGapY || top.X != 846 {
				t.Errorf("first pair top = %+v, expected gap at y=%d, x=846", top, firstGapY)
			}
		}

		if s1.Score < prevScore || (s1.Score-prevScore)%100 != 0 {
			t.Fatalf("frame %d: score %d -> %d", s1.Frame, prevScore, s1.Score)
		}
		if s1.Level < prevLevel {
			t.Fatalf("frame %d: level dropped %d -> %d", s1.Frame, prevLevel, s1.Level)
		}
		if s1.Agent.Y < 0 || s1.Agent.Bottom() > cfg.Height {
			t.Fatalf("frame %d: agent %+v outside play area", s1.Frame, s1.Agent)
		}
		prevScore, prevLevel = s1.Score, s1.Level
	}

	if g1.Outcome() != OutcomeTimeout {
		t.Errorf("Outcome() = %v, expected timeout", g1.Outcome())
	}
	if g1.Frames() != 540 || g1.Frames() != cfg.MaxFrames() {
		t.Errorf("Frames() = %d, expected 540", g1.Frames())
	}
	if g1.Score() != finalScore || g1.Level() != finalLevel {
		t.Errorf("final score %d level %d, expected %d and %d", g1.Score(), g1.Level(), finalScore, finalLevel)
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(shortConfig(5, 0), DefaultTuning())
	cfg := shortConfig(5, 0)
	cfg.Seed = 778
	b := New(cfg, DefaultTuning())

	runToEnd(a)
	runToEnd(b)
	if reflect.DeepEqual(a.Snapshot().Obstacles, b.Snapshot().Obstacles) {
		t.Error("different seeds produced identical obstacle fields")
	}
}

func TestScoreOnlyFromTopComponents(t *testing.T) {
	g := New(shortConfig(10, 0), DefaultTuning())
	g.Step()

	// One pair about to leave the screen
	g.field.obstacles = []Obstacle{
		{Rect: core.NewRect(-60, 0, 60, 100), x: -60, Top: true},
		{Rect: core.NewRect(-60, 400, 60, 454), x: -60},
		{Rect: core.NewRect(-60, 500, 60, 354), x: -60}, // stray bottom
	}
	before := g.Score()
	g.Step()

	if got := g.Score() - before; got != 100 {
		t.Errorf("score delta = %d, expected 100", got)
	}
	if g.progress.XP != 100 {
		t.Errorf("XP = %d, expected 100", g.progress.XP)
	}
}

func TestLevelUpEffects(t *testing.T) {
	g := New(shortConfig(10, 0), DefaultTuning())
	bus := &recordingBus{}
	g.SetAudioBus(bus)
	g.Step()

	g.progress.XP = g.progress.NextXP - 100
	g.field.obstacles = []Obstacle{{Rect: core.NewRect(-60, 0, 60, 100), x: -60, Top: true}}
	g.Step()

	if g.Level() != 2 {
		t.Fatalf("Level() = %d, expected 2", g.Level())
	}
	if bus.count(CueLevelUp) != 1 {
		t.Errorf("level-up cue played %d times, expected 1", bus.count(CueLevelUp))
	}
	if g.Snapshot().Mood != MoodHype {
		t.Errorf("Mood = %v on the level-up frame, expected hype", g.Snapshot().Mood)
	}
	if !g.flashVisible || g.flashRemaining != DefaultTuning().FlashFrames-1 {
		t.Errorf("flash = %v/%d, expected visible with %d left", g.flashVisible, g.flashRemaining, DefaultTuning().FlashFrames-1)
	}

	g.Step()
	if g.levelJustUp {
		t.Error("level-up flag should clear after one tick")
	}
}
