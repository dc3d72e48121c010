package sim

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/autododge/internal/config"
	"github.com/vovakirdan/autododge/internal/core"
)

func testField(seed int64) *ObstacleField {
	cfg := config.DefaultSettings().Fixed(seed, 30, 1.0, config.DefaultTheme())
	return NewObstacleField(rand.New(rand.NewSource(seed)), cfg.Width, cfg.Height, DefaultTuning(), config.NewDifficulty(cfg))
}

func TestSpawnPairGeometry(t *testing.T) {
	f := testField(1)
	h := f.screenH

	for level := 1; level <= 20; level++ {
		for i := 0; i < 20; i++ {
			f.obstacles = f.obstacles[:0]
			f.Spawn(level, core.NeonGreen)

			if len(f.obstacles) != 2 {
				t.Fatalf("Spawn() added %d obstacles, expected 2", len(f.obstacles))
			}
			top, bottom := f.obstacles[0].Rect, f.obstacles[1].Rect
			gap := f.difficulty.GapSize(level)

			if !f.obstacles[0].Top || f.obstacles[1].Top {
				t.Fatal("first component must be the top one")
			}
			if top.Y != 0 || bottom.Bottom() != h {
				t.Errorf("level %d: pair does not span the screen: %+v %+v", level, top, bottom)
			}
			if bottom.Y-top.Bottom() != gap {
				t.Errorf("level %d: gap = %d, expected %d", level, bottom.Y-top.Bottom(), gap)
			}
			if top.H < 50 || top.H > h-50-gap {
				t.Errorf("level %d: gap top %d outside [50, %d]", level, top.H, h-50-gap)
			}
			if top.X != f.screenW || top.W != 60 || bottom.X != top.X {
				t.Errorf("level %d: unexpected placement %+v %+v", level, top, bottom)
			}
		}
	}
}

func TestFieldRemovesOffscreen(t *testing.T) {
	f := testField(2)
	f.obstacles = []Obstacle{
		{Rect: core.NewRect(-55, 0, 60, 100), x: -55, Top: true},
		{Rect: core.NewRect(-55, 300, 60, 554), x: -55},
		{Rect: core.NewRect(200, 0, 60, 100), x: 200, Top: true},
	}

	// Right edge at 5 - 4 = 1 stays
	if cleared := f.Update(4, 1, core.NeonRed, 100); cleared != 0 {
		t.Errorf("cleared = %d, expected 0", cleared)
	}
	if len(f.Obstacles()) != 3 {
		t.Fatalf("len = %d, expected 3", len(f.Obstacles()))
	}

	// Right edge at -1 is removed; only the top component scores
	if cleared := f.Update(2, 1, core.NeonRed, 100); cleared != 1 {
		t.Errorf("cleared = %d, expected 1", cleared)
	}
	if len(f.Obstacles()) != 1 {
		t.Errorf("len = %d, expected 1", len(f.Obstacles()))
	}
}

func TestFieldTarget(t *testing.T) {
	f := testField(3)

	if _, ok := f.Target(100, 50); ok {
		t.Error("empty field should have no target")
	}

	f.obstacles = []Obstacle{
		{Rect: core.NewRect(20, 0, 60, 300)}, // Behind the agent
		{Rect: core.NewRect(20, 500, 60, 354)},
		{Rect: core.NewRect(300, 0, 60, 200), Top: true},
		{Rect: core.NewRect(300, 440, 60, 414)},
		{Rect: core.NewRect(500, 0, 60, 600), Top: true},
		{Rect: core.NewRect(500, 700, 60, 154)},
	}

	y, ok := f.Target(100, 50)
	if !ok || y != 320 {
		t.Errorf("Target() = (%f, %v), expected (320, true)", y, ok)
	}

	// Lone component ahead is not a pair
	f.obstacles = []Obstacle{{Rect: core.NewRect(300, 0, 60, 200)}}
	if _, ok := f.Target(100, 50); ok {
		t.Error("a single component should not produce a target")
	}
}

func TestAgentClampedForAllTargets(t *testing.T) {
	tuning := DefaultTuning()
	rng := rand.New(rand.NewSource(9))
	const screenH = 480

	for _, skill := range []float64{0, 0.5, 1.0, 1.2, 2.0, 3.0} {
		a := NewAgent(tuning.AgentX, tuning.AgentSize, screenH)
		for frame := 0; frame < 2000; frame++ {
			target := rng.Float64()*4000 - 2000 + Jitter(frame, skill, tuning)
			a.Steer(target, screenH, tuning, rng)

			if a.Rect.Y < 0 || a.Rect.Bottom() > screenH {
				t.Fatalf("skill %.1f frame %d: agent %+v outside [0, %d]", skill, frame, a.Rect, screenH)
			}
			if len(a.Trail()) > tuning.TrailMax {
				t.Fatalf("trail length %d exceeds %d", len(a.Trail()), tuning.TrailMax)
			}
		}
	}
}

func TestAgentBounce(t *testing.T) {
	tuning := DefaultTuning()
	a := NewAgent(100, 50, 480)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		a.Steer(-10000, 480, tuning, rng)
		if a.Rect.Y == 0 {
			if a.Velocity() < 0 {
				t.Fatalf("velocity %f after hitting the top should point down", a.Velocity())
			}
			return
		}
	}
	t.Fatal("agent never reached the top edge")
}

func TestJitter(t *testing.T) {
	tuning := DefaultTuning()

	if j := Jitter(15, 2.0, tuning); j != 0 {
		t.Errorf("Jitter at skill 2 = %f, expected 0", j)
	}
	if j := Jitter(15, 5.0, tuning); j != 0 {
		t.Errorf("Jitter at skill 5 = %f, expected 0", j)
	}
	for frame := 0; frame < 200; frame++ {
		if j := Jitter(frame, 1.0, tuning); j > 15 || j < -15 {
			t.Fatalf("Jitter(%d, 1.0) = %f outside [-15, 15]", frame, j)
		}
	}
}

func TestProgressThresholds(t *testing.T) {
	p := NewProgress(DefaultTuning())

	expected := []int{500, 750, 1125, 1688, 2532}
	for i, threshold := range expected {
		if p.NextXP != threshold {
			t.Fatalf("level %d threshold = %d, expected %d", p.Level, p.NextXP, threshold)
		}
		ups := 0
		for steps := 0; steps < threshold/100+1; steps++ {
			if p.AddXP(100) {
				ups++
				break
			}
		}
		if ups != 1 || p.Level != i+2 {
			t.Fatalf("expected level %d after reaching %d XP, got %d", i+2, threshold, p.Level)
		}
		if p.XP != 0 {
			t.Errorf("XP = %d after level-up, expected 0", p.XP)
		}
	}
}

func TestProgressFlashAndColor(t *testing.T) {
	p := NewProgress(DefaultTuning())

	if _, visible := p.TickFlash(); visible {
		t.Error("no banner before the first level-up")
	}
	if p.Color() != core.NeonMagenta {
		t.Errorf("level 1 color = %v", p.Color())
	}

	p.AddXP(500)
	if p.Color() != core.NeonGreen {
		t.Errorf("level 2 color = %v", p.Color())
	}

	shown := 0
	for {
		if _, visible := p.TickFlash(); !visible {
			break
		}
		shown++
	}
	if shown != 120 {
		t.Errorf("banner shown for %d frames, expected 120", shown)
	}
}

func TestParticlesLifecycle(t *testing.T) {
	p := NewParticles(40)
	p.Burst(100, 100, 100, 5, core.NeonRed, rand.New(rand.NewSource(4)))

	if len(p.List()) != 100 {
		t.Fatalf("len = %d, expected 100", len(p.List()))
	}
	for _, pt := range p.List() {
		if pt.VX < -5 || pt.VX > 5 || pt.VY < -5 || pt.VY > 5 {
			t.Fatalf("velocity (%f, %f) outside [-5, 5]", pt.VX, pt.VY)
		}
	}

	for i := 0; i < 39; i++ {
		p.Update()
	}
	if len(p.List()) != 100 {
		t.Errorf("particles expired early: %d left after 39 frames", len(p.List()))
	}
	p.Update()
	if len(p.List()) != 0 {
		t.Errorf("%d particles alive after 40 frames", len(p.List()))
	}
}

func TestChatFeedBounded(t *testing.T) {
	c := NewChatFeed(rand.New(rand.NewSource(5)), DefaultTuning())

	for i := 0; i < 20; i++ {
		c.Add(MoodNormal)
	}
	if len(c.Messages()) != 7 {
		t.Errorf("len = %d, expected 7", len(c.Messages()))
	}

	c.Update(MoodNormal)
	for _, m := range c.Messages() {
		if m.Slide > 0 || m.Alpha > 255 {
			t.Errorf("message animation out of range: %+v", m)
		}
	}
}

func TestChatFeedExpiry(t *testing.T) {
	tuning := DefaultTuning()
	tuning.ChatIntervalMin = 1000
	tuning.ChatIntervalMax = 1000
	c := NewChatFeed(rand.New(rand.NewSource(6)), tuning)

	c.Update(MoodNormal) // First update always posts
	if len(c.Messages()) != 1 {
		t.Fatalf("len = %d after first update, expected 1", len(c.Messages()))
	}
	m := c.Messages()[0]
	if m.Slide != -45 || m.Alpha != 15 || m.Life != 299 {
		t.Errorf("after one update: %+v", m)
	}

	for i := 0; i < 298; i++ {
		c.Update(MoodNormal)
	}
	if len(c.Messages()) != 1 {
		t.Fatalf("message expired early")
	}
	if c.Messages()[0].Slide != 0 || c.Messages()[0].Alpha != 255 {
		t.Errorf("animation should settle: %+v", c.Messages()[0])
	}
	c.Update(MoodNormal)
	if len(c.Messages()) != 0 {
		t.Errorf("len = %d after life ran out, expected 0", len(c.Messages()))
	}
}

func TestChatMoodText(t *testing.T) {
	c := NewChatFeed(rand.New(rand.NewSource(7)), DefaultTuning())
	c.Add(MoodScared)

	text := c.Messages()[0].Text
	found := false
	for _, s := range chatScared {
		if s == text {
			found = true
		}
	}
	if !found {
		t.Errorf("scared message %q not from the scared pool", text)
	}
}

func TestMoodFor(t *testing.T) {
	agent := core.NewRect(100, 200, 50, 50)
	nearby := agent.Inflate(50, 50)
	near := []Obstacle{{Rect: core.NewRect(170, 0, 60, 190)}}
	far := []Obstacle{{Rect: core.NewRect(400, 0, 60, 190)}}

	tests := []struct {
		name      string
		levelUp   bool
		obstacles []Obstacle
		expected  Mood
	}{
		{"calm", false, far, MoodNormal},
		{"near miss", false, near, MoodScared},
		{"level up wins", true, near, MoodHype},
		{"level up alone", true, nil, MoodHype},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MoodFor(tc.levelUp, nearby, tc.obstacles); got != tc.expected {
				t.Errorf("MoodFor() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestAvatarBorderAndShake(t *testing.T) {
	a := NewAvatar(core.NeonCyan)
	rng := rand.New(rand.NewSource(8))

	a.Update(MoodNormal, rng)
	if a.Border() != core.NeonCyan || a.Shake != 0 {
		t.Errorf("normal: border %v shake %d", a.Border(), a.Shake)
	}

	for i := 0; i < 50; i++ {
		a.Update(MoodScared, rng)
		if a.Border() != core.NeonRed {
			t.Fatalf("scared border = %v", a.Border())
		}
		if a.Shake < -2 || a.Shake > 2 {
			t.Fatalf("shake %d outside [-2, 2]", a.Shake)
		}
	}

	a.Update(MoodHype, rng)
	if a.Border() != core.NeonYellow {
		t.Errorf("hype border = %v", a.Border())
	}
}
