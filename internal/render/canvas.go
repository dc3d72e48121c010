// Package render provides the raster canvas frames are drawn on and the
// packed RGB24 export the encoder consumes.
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/vovakirdan/autododge/internal/core"
)

// Weight selects a font face.
type Weight int

const (
	Regular Weight = iota
	Bold
)

// Anchor positions text relative to its (x, y) point.
// X: 0 left, 0.5 centre, 1 right. Y: 0 top, 0.5 middle, 1 bottom.
type Anchor struct {
	X, Y float64
}

// Common anchors.
var (
	TopLeft   = Anchor{0, 0}
	TopCenter = Anchor{0.5, 0}
	Center    = Anchor{0.5, 0.5}
	MidLeft   = Anchor{0, 0.5}
)

type faceKey struct {
	weight Weight
	size   int
}

// Canvas is a fixed-size RGBA drawing surface.
type Canvas struct {
	dc      *gg.Context
	regular *truetype.Font
	bold    *truetype.Font
	faces   map[faceKey]font.Face
}

// NewCanvas creates a canvas of the given size with the embedded Go fonts loaded.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid canvas size %dx%d", width, height)
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: parse bold font: %w", err)
	}
	return &Canvas{
		dc:      gg.NewContext(width, height),
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.dc.Width() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.dc.Height() }

// FrameSize returns the byte size of one RGB24 export.
func (c *Canvas) FrameSize() int { return c.Width() * c.Height() * 3 }

// Clear fills the whole canvas with an opaque color.
func (c *Canvas) Clear(col core.RGB) {
	c.dc.SetColor(col.RGBA(255))
	c.dc.Clear()
}

// FillRect fills an axis-aligned rectangle.
func (c *Canvas) FillRect(x, y, w, h float64, col core.RGB, alpha uint8) {
	c.dc.DrawRectangle(x, y, w, h)
	c.fill(col, alpha)
}

// StrokeRect outlines an axis-aligned rectangle.
func (c *Canvas) StrokeRect(x, y, w, h, lineWidth float64, col core.RGB, alpha uint8) {
	c.dc.DrawRectangle(x, y, w, h)
	c.stroke(lineWidth, col, alpha)
}

// FillRoundedRect fills a rectangle with rounded corners.
func (c *Canvas) FillRoundedRect(x, y, w, h, r float64, col core.RGB, alpha uint8) {
	c.dc.DrawRoundedRectangle(x, y, w, h, r)
	c.fill(col, alpha)
}

// StrokeRoundedRect outlines a rectangle with rounded corners.
func (c *Canvas) StrokeRoundedRect(x, y, w, h, r, lineWidth float64, col core.RGB, alpha uint8) {
	c.dc.DrawRoundedRectangle(x, y, w, h, r)
	c.stroke(lineWidth, col, alpha)
}

// Line draws a straight segment.
func (c *Canvas) Line(x1, y1, x2, y2, lineWidth float64, col core.RGB, alpha uint8) {
	c.dc.DrawLine(x1, y1, x2, y2)
	c.stroke(lineWidth, col, alpha)
}

// FillCircle fills a circle.
func (c *Canvas) FillCircle(x, y, r float64, col core.RGB, alpha uint8) {
	if r <= 0 {
		return
	}
	c.dc.DrawCircle(x, y, r)
	c.fill(col, alpha)
}

// FillEllipse fills an axis-aligned ellipse centred at (x, y).
func (c *Canvas) FillEllipse(x, y, rx, ry float64, col core.RGB, alpha uint8) {
	if rx <= 0 || ry <= 0 {
		return
	}
	c.dc.DrawEllipse(x, y, rx, ry)
	c.fill(col, alpha)
}

// Arc strokes a circular arc between two angles in radians.
func (c *Canvas) Arc(x, y, r, from, to, lineWidth float64, col core.RGB, alpha uint8) {
	c.dc.DrawArc(x, y, r, from, to)
	c.stroke(lineWidth, col, alpha)
}

// VerticalGradient fills a rectangle blending from top to bottom.
func (c *Canvas) VerticalGradient(x, y, w, h float64, top, bottom core.RGB, topAlpha, bottomAlpha uint8) {
	grad := gg.NewLinearGradient(x, y, x, y+h)
	grad.AddColorStop(0, top.RGBA(topAlpha))
	grad.AddColorStop(1, bottom.RGBA(bottomAlpha))
	c.dc.SetFillStyle(grad)
	c.dc.DrawRectangle(x, y, w, h)
	c.dc.Fill()
}

// Text draws a single line of text anchored at (x, y).
func (c *Canvas) Text(s string, x, y, size float64, weight Weight, anchor Anchor, col core.RGB, alpha uint8) {
	c.dc.SetFontFace(c.face(weight, size))
	c.dc.SetColor(col.RGBA(alpha))
	// gg measures ay from the baseline upwards
	c.dc.DrawStringAnchored(s, x, y, anchor.X, 1-anchor.Y)
}

// MeasureText returns the rendered width and height of s.
func (c *Canvas) MeasureText(s string, size float64, weight Weight) (w, h float64) {
	c.dc.SetFontFace(c.face(weight, size))
	return c.dc.MeasureString(s)
}

// face returns a cached font face. Sizes are rounded to whole points so
// pulsing text does not allocate a face per frame.
func (c *Canvas) face(weight Weight, size float64) font.Face {
	key := faceKey{weight: weight, size: int(math.Max(1, math.Round(size)))}
	if f, ok := c.faces[key]; ok {
		return f
	}
	ttf := c.regular
	if weight == Bold {
		ttf = c.bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: float64(key.size)})
	c.faces[key] = f
	return f
}

func (c *Canvas) fill(col core.RGB, alpha uint8) {
	c.dc.SetColor(col.RGBA(alpha))
	c.dc.Fill()
}

func (c *Canvas) stroke(lineWidth float64, col core.RGB, alpha uint8) {
	c.dc.SetColor(col.RGBA(alpha))
	c.dc.SetLineWidth(lineWidth)
	c.dc.Stroke()
}

// Image returns the current canvas contents.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// At returns the opaque color at (x, y).
func (c *Canvas) At(x, y int) core.RGB {
	r, g, b, _ := c.dc.Image().At(x, y).RGBA()
	return core.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// RGB24 packs the canvas into row-major RGB triplets, reusing dst when it is large enough.
// The canvas is cleared opaque every frame, so alpha is dropped without unpremultiplying.
func (c *Canvas) RGB24(dst []byte) []byte {
	size := c.FrameSize()
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]

	img := c.dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		w, h := c.Width(), c.Height()
		for y := 0; y < h; y++ {
			src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
			row := dst[y*w*3 : (y+1)*w*3]
			for x := 0; x < w; x++ {
				row[x*3] = src[x*4]
				row[x*3+1] = src[x*4+1]
				row[x*3+2] = src[x*4+2]
			}
		}
		return dst
	}

	i := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			dst[i], dst[i+1], dst[i+2] = uint8(r>>8), uint8(g>>8), uint8(bl>>8)
			i += 3
		}
	}
	return dst
}
