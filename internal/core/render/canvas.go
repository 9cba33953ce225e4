package render

// Canvas is the drawing surface the simulation renders into. Vertices and
// shapes are expressed in world units and pass through the current transform;
// Picture blits are in device pixels and ignore it.
type Canvas interface {
	Clear()

	Fill(c Color)
	NoFill()
	Stroke(c Color, width float64)
	NoStroke()

	// BeginShape starts a new path. EndShape closes and fills it,
	// StrokeShape strokes it as an open polyline.
	BeginShape()
	Vertex(x, y float64)
	EndShape()
	StrokeShape()

	Line(x1, y1, x2, y2 float64)
	Rect(x, y, width, height float64)
	Ellipse(x, y, radiusX, radiusY float64)
	// Arc draws a filled pie slice and its outline, angles in radians.
	Arc(x, y, radius, startAngle, endAngle float64)
	Text(s string, x, y float64)

	// Picture blits pic at (x,y) scaled by an integer factor with
	// nearest-neighbor sampling.
	Picture(pic *Picture, x, y, scale int)

	PushMatrix()
	PopMatrix()
	Translate(x, y float64)
	Rotate(angle float64)
}
