// Package raster implements render.Canvas on an in-memory RGBA image so
// worlds can be rendered headless and encoded as PNG.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/zeusync/robosim/internal/core/render"
	"github.com/zeusync/robosim/internal/core/systems/physics"
)

var _ render.Canvas = (*Canvas)(nil)

// curveSegments is how many segments approximate a full ellipse.
const curveSegments = 48

// affine maps (x,y) to (a·x + b·y + c, d·x + e·y + f).
type affine struct {
	a, b, c float64
	d, e, f float64
}

func (m affine) apply(x, y float64) physics.Point {
	return physics.Point{X: m.a*x + m.b*y + m.c, Y: m.d*x + m.e*y + m.f}
}

// then returns m applied after n.
func (m affine) then(n affine) affine {
	return affine{
		a: m.a*n.a + m.b*n.d, b: m.a*n.b + m.b*n.e, c: m.a*n.c + m.b*n.f + m.c,
		d: m.d*n.a + m.e*n.d, e: m.d*n.b + m.e*n.e, f: m.d*n.c + m.e*n.f + m.f,
	}
}

// scale is the length one world unit has on the device.
func (m affine) scale() float64 {
	return math.Sqrt(math.Abs(m.a*m.e - m.b*m.d))
}

// Canvas rasterizes drawing calls into an image. World units are multiplied
// by the scale given to New.
type Canvas struct {
	img  *image.RGBA
	rast *vector.Rasterizer

	fill        *render.Color
	stroke      *render.Color
	strokeWidth float64

	m     affine
	stack []affine
	path  []physics.Point
}

// New returns a width x height pixel canvas drawing world units at scale
// pixels each.
func New(width, height int, scale float64) *Canvas {
	if scale <= 0 {
		scale = 1
	}
	black := render.Gray(0)
	return &Canvas{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		rast:        vector.NewRasterizer(width, height),
		fill:        &black,
		strokeWidth: 1,
		m:           affine{a: scale, e: scale},
	}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// At reads a device pixel back as a straight-alpha color.
func (c *Canvas) At(x, y int) render.Color {
	n := color.NRGBAModel.Convert(c.img.At(x, y)).(color.NRGBA)
	return render.RGBA(n.R, n.G, n.B, n.A)
}

// EncodePNG writes the current image as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (c *Canvas) Fill(col render.Color) { c.fill = &col }
func (c *Canvas) NoFill()               { c.fill = nil }

func (c *Canvas) Stroke(col render.Color, width float64) {
	c.stroke = &col
	c.strokeWidth = width
}

func (c *Canvas) NoStroke() { c.stroke = nil }

func (c *Canvas) BeginShape() { c.path = c.path[:0] }

func (c *Canvas) Vertex(x, y float64) {
	c.path = append(c.path, c.m.apply(x, y))
}

func (c *Canvas) EndShape() {
	c.shape(c.path, true)
	c.path = c.path[:0]
}

func (c *Canvas) StrokeShape() {
	c.strokePath(c.path, false)
	c.path = c.path[:0]
}

func (c *Canvas) Line(x1, y1, x2, y2 float64) {
	c.strokePath([]physics.Point{c.m.apply(x1, y1), c.m.apply(x2, y2)}, false)
}

func (c *Canvas) Rect(x, y, width, height float64) {
	c.shape([]physics.Point{
		c.m.apply(x, y),
		c.m.apply(x+width, y),
		c.m.apply(x+width, y+height),
		c.m.apply(x, y+height),
	}, true)
}

func (c *Canvas) Ellipse(x, y, radiusX, radiusY float64) {
	pts := make([]physics.Point, 0, curveSegments)
	for i := 0; i < curveSegments; i++ {
		a := 2 * math.Pi * float64(i) / curveSegments
		pts = append(pts, c.m.apply(x+radiusX*math.Cos(a), y+radiusY*math.Sin(a)))
	}
	c.shape(pts, true)
}

func (c *Canvas) Arc(x, y, radius, startAngle, endAngle float64) {
	steps := int(math.Ceil(math.Abs(endAngle-startAngle) / (2 * math.Pi) * curveSegments))
	if steps < 1 {
		steps = 1
	}
	pts := make([]physics.Point, 0, steps+2)
	pts = append(pts, c.m.apply(x, y))
	for i := 0; i <= steps; i++ {
		a := startAngle + (endAngle-startAngle)*float64(i)/float64(steps)
		pts = append(pts, c.m.apply(x+radius*math.Cos(a), y+radius*math.Sin(a)))
	}
	c.shape(pts, true)
}

// Text draws s with its baseline starting at (x,y), in the fill color.
func (c *Canvas) Text(s string, x, y float64) {
	col := render.Gray(0)
	if c.fill != nil {
		col = *c.fill
	}
	p := c.m.apply(x, y)
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col.NRGBA()),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(int(math.Round(p.X))), Y: fixed.I(int(math.Round(p.Y)))},
	}
	d.DrawString(s)
}

// Picture copies pic to device pixel (x,y), each source pixel becoming a
// scale x scale block.
func (c *Canvas) Picture(pic *render.Picture, x, y, scale int) {
	if scale < 1 {
		scale = 1
	}
	for j := 0; j < pic.Height; j++ {
		for i := 0; i < pic.Width; i++ {
			px := pic.Get(i, j).NRGBA()
			block := image.Rect(x+i*scale, y+j*scale, x+(i+1)*scale, y+(j+1)*scale)
			draw.Draw(c.img, block, image.NewUniform(px), image.Point{}, draw.Src)
		}
	}
}

func (c *Canvas) PushMatrix() { c.stack = append(c.stack, c.m) }

func (c *Canvas) PopMatrix() {
	if len(c.stack) == 0 {
		return
	}
	c.m = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) Translate(x, y float64) {
	c.m = c.m.then(affine{a: 1, c: x, e: 1, f: y})
}

func (c *Canvas) Rotate(angle float64) {
	cos, sin := math.Cos(angle), math.Sin(angle)
	c.m = c.m.then(affine{a: cos, b: -sin, d: sin, e: cos})
}

// shape fills the polygon and strokes its outline with the current styles.
func (c *Canvas) shape(pts []physics.Point, closed bool) {
	if len(pts) >= 3 && c.fill != nil {
		c.rast.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
		c.rast.MoveTo(float32(pts[0].X), float32(pts[0].Y))
		for _, p := range pts[1:] {
			c.rast.LineTo(float32(p.X), float32(p.Y))
		}
		c.rast.ClosePath()
		c.paint(*c.fill)
	}
	c.strokePath(pts, closed)
}

// strokePath draws each segment as a quad of the current stroke width.
func (c *Canvas) strokePath(pts []physics.Point, closed bool) {
	if c.stroke == nil || len(pts) < 2 {
		return
	}
	half := math.Max(c.strokeWidth*c.m.scale(), 1) / 2

	c.rast.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	for i := 0; i < n; i++ {
		p, q := pts[i], pts[(i+1)%len(pts)]
		dx, dy := q.X-p.X, q.Y-p.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		c.rast.MoveTo(float32(p.X+nx), float32(p.Y+ny))
		c.rast.LineTo(float32(q.X+nx), float32(q.Y+ny))
		c.rast.LineTo(float32(q.X-nx), float32(q.Y-ny))
		c.rast.LineTo(float32(p.X-nx), float32(p.Y-ny))
		c.rast.ClosePath()
	}
	c.paint(*c.stroke)
}

func (c *Canvas) paint(col render.Color) {
	c.rast.DrawOp = draw.Over
	c.rast.Draw(c.img, c.img.Bounds(), image.NewUniform(col.NRGBA()), image.Point{})
}
