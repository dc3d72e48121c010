package sim

import (
	"fmt"
	"math"

	"github.com/vovakirdan/autododge/internal/core"
	"github.com/vovakirdan/autododge/internal/render"
)

// Layout constants, in pixels.
const (
	gridSpacing = 50

	chatMarginX = 20
	chatOffsetY = 220 // From the bottom edge
	chatW       = 250
	chatH       = 200
	chatLineH   = 25
	chatFont    = 16

	camOffsetX = 180 // From the right edge
	camOffsetY = 140 // From the bottom edge
	camW       = 160
	camH       = 120

	hugeFont  = 80
	bigFont   = 50
	scoreTopY = 20
)

var (
	obstacleFill = core.RGB{R: 20, G: 10, B: 20}
	agentShadow  = core.RGB{R: 0, G: 100, B: 100}
	agentShine   = core.RGB{R: 200, G: 255, B: 255}
	antennaGray  = core.RGB{R: 100, G: 100, B: 100}
	chatUserGray = core.RGB{R: 200, G: 200, B: 200}
	camPanel     = core.RGB{R: 10, G: 10, B: 15}
	camShirt     = core.RGB{R: 50, G: 50, B: 60}
	camSkin      = core.RGB{R: 200, G: 180, B: 150}
	camEarCup    = core.RGB{R: 30, G: 30, B: 30}
)

// Render draws the current frame. It never touches the simulation RNG.
func (g *Game) Render(c *render.Canvas) {
	w, h := float64(g.cfg.Width), float64(g.cfg.Height)
	theme := g.cfg.Theme

	c.Clear(theme.Background)

	// Scrolling grid
	frame := g.frame
	if frame < 0 {
		frame = 0
	}
	off := math.Mod(float64(frame)*g.speed, gridSpacing)
	for x := -off; x < w; x += gridSpacing {
		c.Line(x, 0, x, h, 1, theme.Grid, 255)
	}

	for _, o := range g.field.Obstacles() {
		drawObstacle(c, o)
	}

	if g.phase == Running {
		g.drawAgent(c)
	}

	for _, p := range g.particles.List() {
		c.FillCircle(p.X+3, p.Y+3, 3, p.Color, g.particles.Alpha(p))
	}

	c.Text(fmt.Sprintf("%d", g.score), w/2, scoreTopY, bigFont, render.Bold, render.TopCenter, core.NeonYellow, 255)

	if g.flashVisible {
		scale := 1.0 + math.Sin(float64(g.flashRemaining)*0.2)*0.2
		c.Text(fmt.Sprintf("LEVEL %d", g.progress.Level), w/2, h/3, hugeFont*scale,
			render.Bold, render.TopCenter, g.progress.Color(), 255)
	}

	g.drawChat(c, chatMarginX, h-chatOffsetY)
	g.drawAvatar(c, w-camOffsetX, h-camOffsetY)

	if g.phase != Running {
		c.FillRect(0, 0, w, h, core.Black, 180)
		c.Text("WASTED", w/2, h/2-60, fitSize(c, "WASTED", hugeFont, w), render.Bold, render.TopCenter, core.NeonRed, 255)
		final := fmt.Sprintf("FINAL SCORE: %d", g.score)
		c.Text(final, w/2, h/2+40, fitSize(c, final, bigFont, w), render.Bold, render.TopCenter, core.NeonCyan, 255)
	}
}

// fitSize shrinks a font size until s fits in 90% of maxW.
func fitSize(c *render.Canvas, s string, size, maxW float64) float64 {
	tw, _ := c.MeasureText(s, size, render.Bold)
	if tw <= maxW*0.9 || tw == 0 {
		return size
	}
	return math.Floor(size * maxW * 0.9 / tw)
}

func drawObstacle(c *render.Canvas, o Obstacle) {
	r := o.Rect
	x, y, w, h := float64(r.X), float64(r.Y), float64(r.W), float64(r.H)
	c.FillRect(x, y, w, h, obstacleFill, 255)
	c.StrokeRect(x+1.5, y+1.5, w-3, h-3, 3, o.Color, 255)
	cx := x + w/2
	c.Line(cx, y, cx, y+h, 1, core.White, 255)
}

func (g *Game) drawAgent(c *render.Canvas) {
	a := g.agent
	for i, t := range a.Trail() {
		alpha := uint8(150 * i / g.tuning.TrailMax)
		c.FillCircle(float64(t.X), float64(t.Y), float64(t.Radius), core.NeonCyan, alpha)
	}

	px, py := a.Rect.Center()
	cx, cy := float64(px), float64(py)+a.wobble

	c.FillCircle(cx, cy, 28, agentShadow, 255)
	c.FillCircle(cx, cy, 24, core.NeonCyan, 255)
	c.FillCircle(cx-8, cy-8, 8, agentShine, 255)

	if a.Blinking() {
		c.Line(cx+6, cy-2, cx+14, cy-2, 3, core.Black, 255)
	} else {
		c.FillCircle(cx+10, cy-2, 4, core.Black, 255)
	}
	c.FillCircle(cx+18, cy-2, 3, core.Black, 255)
	c.Arc(cx+13, cy+7, 5, 0, math.Pi, 2, core.Black, 255)

	c.Line(cx, cy-24, cx, cy-35, 2, antennaGray, 255)
	c.FillCircle(cx, cy-35, 4, core.NeonRed, 255)
}

func (g *Game) drawChat(c *render.Canvas, x, y float64) {
	c.VerticalGradient(x, y, chatW, chatH, core.Black, core.Black, 0, 150)

	lineY := y + chatH - 20
	msgs := g.chat.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		alpha := uint8(core.Clamp(m.Alpha, 0, 255))
		sx := x + float64(m.Slide)

		c.FillCircle(sx+15, lineY+8, 8, m.Color, 255)
		c.Text(m.User, sx+30, lineY, chatFont, render.Bold, render.TopLeft, chatUserGray, alpha)
		uw, _ := c.MeasureText(m.User, chatFont, render.Bold)
		c.Text(m.Text, sx+30+uw+10, lineY, chatFont, render.Bold, render.TopLeft, core.White, alpha)

		lineY -= chatLineH
		if lineY < y {
			break
		}
	}
}

func (g *Game) drawAvatar(c *render.Canvas, x, y float64) {
	a := g.avatar
	border := a.Border()

	c.FillRect(x, y, camW, camH, camPanel, 255)
	c.StrokeRect(x+1.5, y+1.5, camW-3, camH-3, 3, border, 255)

	cx := x + camW/2 + float64(a.Shake)
	cy := y + camH + math.Sin(a.Bob)*5

	c.FillCircle(cx, cy+20, 40, camShirt, 255)
	headY := math.Floor(cy - 30)
	c.FillCircle(cx, headY, 25, camSkin, 255)

	switch {
	case a.Mood == MoodScared:
		for _, dx := range []float64{-8, 8} {
			c.FillCircle(cx+dx, headY, 6, core.White, 255)
			c.FillCircle(cx+dx, headY, 2, core.Black, 255)
		}
	case a.Mood == MoodHype:
		for _, ex := range []float64{-10, 4} {
			c.Line(cx+ex, headY-3, cx+ex+6, headY+3, 2, core.Black, 255)
			c.Line(cx+ex, headY+3, cx+ex+6, headY-3, 2, core.Black, 255)
		}
	case a.Blinking():
		c.Line(cx-10, headY, cx-4, headY, 2, core.Black, 255)
		c.Line(cx+4, headY, cx+10, headY, 2, core.Black, 255)
	default:
		c.FillCircle(cx-7, headY, 3, core.Black, 255)
		c.FillCircle(cx+7, headY, 3, core.Black, 255)
	}

	// Headphones
	c.Arc(cx, headY, 27, math.Pi, 2*math.Pi, 4, border, 255)
	c.FillRect(cx-30, headY-5, 10, 20, camEarCup, 255)
	c.FillRect(cx+20, headY-5, 10, 20, camEarCup, 255)
}
