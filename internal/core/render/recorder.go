package render

var _ Canvas = (*Recorder)(nil)

// Op is one recorded canvas call.
type Op struct {
	Name  string    `json:"op"`
	Args  []float64 `json:"args,omitempty"`
	Color *Color    `json:"color,omitempty"`
	Text  string    `json:"text,omitempty"`
}

// Recorder is a Canvas that keeps the calls it receives. It backs tests and
// lets a remote host replay a frame on its own drawing surface.
type Recorder struct {
	Ops []Op
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Reset drops recorded ops and keeps the allocated storage.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

// Count returns how many ops with the given name were recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

func (r *Recorder) add(name string, args ...float64) {
	r.Ops = append(r.Ops, Op{Name: name, Args: args})
}

func (r *Recorder) addColor(name string, c Color, args ...float64) {
	r.Ops = append(r.Ops, Op{Name: name, Args: args, Color: &c})
}

func (r *Recorder) Clear()                        { r.add("clear") }
func (r *Recorder) Fill(c Color)                  { r.addColor("fill", c) }
func (r *Recorder) NoFill()                       { r.add("noFill") }
func (r *Recorder) Stroke(c Color, width float64) { r.addColor("stroke", c, width) }
func (r *Recorder) NoStroke()                     { r.add("noStroke") }
func (r *Recorder) BeginShape()                   { r.add("beginShape") }
func (r *Recorder) Vertex(x, y float64)           { r.add("vertex", x, y) }
func (r *Recorder) EndShape()                     { r.add("endShape") }
func (r *Recorder) StrokeShape()                  { r.add("strokeShape") }
func (r *Recorder) PushMatrix()                   { r.add("pushMatrix") }
func (r *Recorder) PopMatrix()                    { r.add("popMatrix") }
func (r *Recorder) Translate(x, y float64)        { r.add("translate", x, y) }
func (r *Recorder) Rotate(angle float64)          { r.add("rotate", angle) }

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.add("line", x1, y1, x2, y2)
}

func (r *Recorder) Rect(x, y, width, height float64) {
	r.add("rect", x, y, width, height)
}

func (r *Recorder) Ellipse(x, y, radiusX, radiusY float64) {
	r.add("ellipse", x, y, radiusX, radiusY)
}

func (r *Recorder) Arc(x, y, radius, startAngle, endAngle float64) {
	r.add("arc", x, y, radius, startAngle, endAngle)
}

func (r *Recorder) Text(s string, x, y float64) {
	r.Ops = append(r.Ops, Op{Name: "text", Args: []float64{x, y}, Text: s})
}

func (r *Recorder) Picture(pic *Picture, x, y, scale int) {
	r.add("picture", float64(x), float64(y), float64(pic.Width), float64(pic.Height), float64(scale))
}
