package sim

import (
	"testing"

	"github.com/vovakirdan/autododge/internal/config"
	"github.com/vovakirdan/autododge/internal/core"
	"github.com/vovakirdan/autododge/internal/render"
)

func TestRenderFrames(t *testing.T) {
	cfg := config.DefaultSettings().Fixed(4242, 2, 1.1, config.DefaultTheme())
	cfg.Width, cfg.Height = 240, 428

	canvas, err := render.NewCanvas(cfg.Width, cfg.Height)
	if err != nil {
		t.Fatal(err)
	}

	g := New(cfg, DefaultTuning())
	var frame []byte
	for i := 0; i < 5 && g.Step(); i++ {
		g.Render(canvas)
		frame = canvas.RGB24(frame)
	}
	if len(frame) != cfg.FrameSize() {
		t.Fatalf("frame size = %d, expected %d", len(frame), cfg.FrameSize())
	}

	// Background dominates an early frame
	bg := cfg.Theme.Background
	matches := 0
	for i := 0; i+2 < len(frame); i += 3 {
		if frame[i] == bg.R && frame[i+1] == bg.G && frame[i+2] == bg.B {
			matches++
		}
	}
	if matches < len(frame)/3/4 {
		t.Errorf("only %d of %d pixels are background", matches, len(frame)/3)
	}
}

func TestRenderIsPure(t *testing.T) {
	cfg := config.DefaultSettings().Fixed(99, 2, 1.0, config.DefaultTheme())
	cfg.Width, cfg.Height = 160, 284

	canvas, err := render.NewCanvas(cfg.Width, cfg.Height)
	if err != nil {
		t.Fatal(err)
	}

	rendered := New(cfg, DefaultTuning())
	plain := New(cfg, DefaultTuning())
	for rendered.Step() {
		plain.Step()
		rendered.Render(canvas)
	}
	plain.Step()

	if rendered.Frames() != plain.Frames() || rendered.Score() != plain.Score() {
		t.Error("rendering changed the simulation")
	}
}

func TestRenderGameOverOverlay(t *testing.T) {
	cfg := config.DefaultSettings().Fixed(5, 1, 1.0, config.DefaultTheme())
	cfg.Width, cfg.Height = 240, 428
	cfg.Theme.Background = core.White

	canvas, err := render.NewCanvas(cfg.Width, cfg.Height)
	if err != nil {
		t.Fatal(err)
	}

	g := New(cfg, DefaultTuning())
	g.Step()
	g.Render(canvas)
	before := canvas.At(cfg.Width/2, cfg.Height-5)

	for g.Phase() == Running && g.Step() {
	}
	g.Render(canvas)
	after := canvas.At(cfg.Width/2, cfg.Height-5)

	if int(after.R) >= int(before.R) {
		t.Errorf("overlay should darken the frame: before %v after %v", before, after)
	}
}
