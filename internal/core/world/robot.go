package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/creasty/defaults"

	"github.com/zeusync/robosim/internal/core/events/bus"
	"github.com/zeusync/robosim/internal/core/observability/log"
	"github.com/zeusync/robosim/internal/core/render"
	"github.com/zeusync/robosim/internal/core/sensors"
	"github.com/zeusync/robosim/internal/core/systems/physics"
)

// HalfDiagonal is the distance from a robot's center to the corners of its
// bounding box.
const HalfDiagonal = 10.0

var _ sensors.Body = (*Robot)(nil)

// RobotOptions are the recognized robot settings.
type RobotOptions struct {
	Name      string      `json:"name" yaml:"name" default:"Robbie"`
	X         float64     `json:"x" yaml:"x" default:"100"`
	Y         float64     `json:"y" yaml:"y" default:"100"`
	Direction float64     `json:"direction" yaml:"direction"`
	Color     []int       `json:"color" yaml:"color" default:"[255,0,0]"`
	Body      [][]float64 `json:"body" yaml:"body"`

	Cameras      []sensors.CameraOptions `json:"cameras" yaml:"cameras"`
	RangeSensors []sensors.RangeOptions  `json:"rangeSensors" yaml:"rangeSensors"`

	Trace          *bool `json:"trace,omitempty" yaml:"trace,omitempty" default:"true"`
	MaxTraceLength int   `json:"maxTraceLength" yaml:"maxTraceLength" default:"1000"`
	Debug          bool  `json:"debug" yaml:"debug"`
}

// Robot is a differential-drive body with a rotated square bounding box and
// the sensors mounted on it.
type Robot struct {
	name  string
	index int

	x, y, direction float64
	// vx is surge, vy lateral and va turn velocity, per tick.
	vx, vy, va float64
	stalled    bool
	time       float64

	// bounds are shared with the robot's wall in the world.
	bounds [4]*physics.Line
	body   []physics.Point
	color  render.Color

	doTrace bool
	trace   *trace
	debug   bool

	rangeSensors []*sensors.RangeSensor
	cameras      []sensors.Camera

	world  *World
	logger log.Log
}

// NewRobot builds a robot from opts. Camera entries of unknown type are
// logged and dropped.
func NewRobot(opts RobotOptions, logger log.Log) (*Robot, error) {
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("robot defaults: %w", err)
	}
	if opts.MaxTraceLength < 0 {
		return nil, fmt.Errorf("robot %s: negative max trace length %d", opts.Name, opts.MaxTraceLength)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	r := &Robot{
		name:      opts.Name,
		index:     -1,
		x:         opts.X,
		y:         opts.Y,
		direction: opts.Direction,
		color:     render.FromTriple(opts.Color),
		doTrace:   *opts.Trace,
		trace:     newTrace(opts.MaxTraceLength),
		debug:     opts.Debug,
		logger:    logger.With(log.String("robot", opts.Name)),
	}
	for i := range r.bounds {
		r.bounds[i] = &physics.Line{}
	}
	r.updateBoundingBox(r.x, r.y, r.direction)

	for i, pt := range opts.Body {
		if len(pt) < 2 {
			return nil, fmt.Errorf("robot %s: body point %d needs x and y", r.name, i)
		}
		r.body = append(r.body, physics.Point{X: pt[0], Y: pt[1]})
	}

	for _, co := range opts.Cameras {
		camera, err := sensors.NewCamera(r, co)
		if errors.Is(err, sensors.ErrUnknownCameraType) {
			r.logger.Warn("unknown camera type, camera dropped", log.String("type", co.Type))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("robot %s: %w", r.name, err)
		}
		r.cameras = append(r.cameras, camera)
	}

	for _, ro := range opts.RangeSensors {
		s, err := sensors.NewRangeSensor(r, ro)
		if err != nil {
			return nil, fmt.Errorf("robot %s: %w", r.name, err)
		}
		r.rangeSensors = append(r.rangeSensors, s)
	}

	return r, nil
}

func (r *Robot) Forward(vx float64)  { r.vx = vx }
func (r *Robot) Backward(vx float64) { r.vx = -vx }
func (r *Robot) Turn(va float64)     { r.va = va }

func (r *Robot) Stop() {
	r.vx = 0
	r.vy = 0
	r.va = 0
}

// Update moves the robot unless the proposed bounding box crosses a wall,
// then refreshes range sensors and cameras.
func (r *Robot) Update(time float64) {
	r.time = time

	if r.doTrace {
		r.trace.push(physics.Point{X: r.x, Y: r.y})
	}

	heading := -r.direction + math.Pi/2
	tvx := r.vx*math.Sin(heading) + r.vy*math.Cos(heading)
	tvy := r.vx*math.Cos(heading) - r.vy*math.Sin(heading)

	px := r.x + tvx
	py := r.y + tvy
	pdirection := r.direction - r.va

	// the box keeps the proposed pose even when the move is rejected
	r.updateBoundingBox(px, py, pdirection)

	r.stalled = r.collides()
	if !r.stalled {
		r.x, r.y, r.direction = px, py, pdirection
	}

	for _, s := range r.rangeSensors {
		s.Update(time)
	}
	for _, c := range r.cameras {
		c.Update(time)
	}
}

func (r *Robot) collides() bool {
	if r.world == nil {
		return false
	}
	for _, wall := range r.world.walls {
		if wall.Robot == r {
			continue
		}
		for _, l := range wall.Lines {
			for _, edge := range r.bounds {
				if physics.SegmentsIntersect(edge.P1, edge.P2, l.P1, l.P2) {
					return true
				}
			}
		}
	}
	return false
}

func (r *Robot) corners(x, y, direction float64) [4]physics.Point {
	var c [4]physics.Point
	for k := range c {
		c[k] = physics.RotateAround(x, y, HalfDiagonal, direction+math.Pi/4+float64(k)*math.Pi/2)
	}
	return c
}

// updateBoundingBox rewrites the bounding lines in place so the world wall
// sharing them sees the change.
func (r *Robot) updateBoundingBox(x, y, direction float64) {
	c := r.corners(x, y, direction)
	for k, l := range r.bounds {
		l.Set(c[k], c[(k+1)%4])
	}
}

// CastRay returns the closest wall hit along the ray. With seeRobots the
// other robots' boxes count and this robot's own box is ignored; without it
// only static walls count.
func (r *Robot) CastRay(x, y, angle, maxRange float64, seeRobots bool) (physics.Hit, bool) {
	return physics.MinHit(r.cast(x, y, angle, maxRange, func(w *Wall) bool {
		if seeRobots {
			return w.Robot != r
		}
		return w.Robot == nil
	}))
}

// CastRayRobots returns every hit against other robots' boxes.
func (r *Robot) CastRayRobots(x, y, angle, maxRange float64) []physics.Hit {
	return r.cast(x, y, angle, maxRange, func(w *Wall) bool {
		return w.Robot != nil && w.Robot != r
	})
}

func (r *Robot) cast(x, y, angle, maxRange float64, keep func(*Wall) bool) []physics.Hit {
	if r.world == nil {
		return nil
	}
	start := physics.Point{X: x, Y: y}
	end := physics.RayEnd(x, y, angle, maxRange)

	var hits []physics.Hit
	for i, wall := range r.world.walls {
		if !keep(wall) {
			continue
		}
		for _, l := range wall.Lines {
			p, ok := physics.SegmentIntersectionPoint(start, end, l.P1, l.P2)
			if !ok {
				continue
			}
			hits = append(hits, physics.Hit{
				Distance: physics.Distance(p.X, p.Y, x, y),
				X:        p.X,
				Y:        p.Y,
				StartX:   x,
				StartY:   y,
				Color:    wall.Color,
				Height:   1,
				Wall:     i,
			})
		}
	}
	return hits
}

func (r *Robot) Pose() (float64, float64, float64) {
	return r.x, r.y, r.direction
}

func (r *Robot) ArenaSize() (float64, float64) {
	if r.world == nil {
		return 0, 0
	}
	return r.world.width, r.world.height
}

var (
	traceColor   = render.RGB(200, 200, 200)
	stalledColor = render.Gray(128)
	wheelColor   = render.Gray(0)
	holeColor    = render.RGB(0, 64, 0)
)

// Draw renders the trace, the debug box, the body in the robot's frame and
// the range sensor cones.
func (r *Robot) Draw(c render.Canvas) {
	if r.doTrace && r.trace.len() > 0 {
		c.Stroke(traceColor, 1)
		c.BeginShape()
		for _, p := range r.trace.list() {
			c.Vertex(p.X, p.Y)
		}
		c.StrokeShape()
	}

	if r.debug {
		c.Stroke(render.Gray(255), 1)
		for _, l := range r.bounds {
			c.Line(l.P1.X, l.P1.Y, l.P2.X, l.P2.Y)
		}
		c.NoStroke()
		c.Fill(render.Gray(255))
		c.Text(r.name, r.x+HalfDiagonal, r.y-HalfDiagonal)
	}

	c.PushMatrix()
	c.Translate(r.x, r.y)
	c.Rotate(r.direction)

	if r.stalled {
		c.Fill(stalledColor)
		c.Stroke(render.Gray(255), 1)
	} else {
		c.Fill(r.color)
		c.NoStroke()
	}
	c.BeginShape()
	for _, p := range r.body {
		c.Vertex(p.X, p.Y)
	}
	c.EndShape()
	c.NoStroke()

	// wheels
	c.Fill(wheelColor)
	c.Rect(-3.33, -7.67, 6.33, 1.67)
	c.Rect(-3.33, 6.0, 6.33, 1.67)

	c.Fill(holeColor)
	c.NoStroke()
	c.Ellipse(0, 0, 1.67, 1.67)

	for _, cam := range r.cameras {
		cam.Draw(c)
	}
	c.PopMatrix()

	for _, s := range r.rangeSensors {
		s.Draw(c)
	}
}

func (r *Robot) Name() string        { return r.name }
func (r *Robot) Index() int          { return r.index }
func (r *Robot) Stalled() bool       { return r.stalled }
func (r *Robot) Color() render.Color { return r.color }
func (r *Robot) Time() float64       { return r.time }

func (r *Robot) Velocity() (vx, vy, va float64) { return r.vx, r.vy, r.va }

// BoundingLines returns the four live bounding lines.
func (r *Robot) BoundingLines() []*physics.Line { return r.bounds[:] }

func (r *Robot) RangeSensors() []*sensors.RangeSensor { return r.rangeSensors }
func (r *Robot) Cameras() []sensors.Camera            { return r.cameras }

// Trace returns the recorded positions, oldest first.
func (r *Robot) Trace() []physics.Point { return r.trace.list() }

func (r *Robot) SetDebug(on bool) { r.debug = on }

// SetTrace toggles tracing; turning it off clears the history.
func (r *Robot) SetTrace(on bool) {
	r.doTrace = on
	if !on {
		r.trace.reset()
	}
}

func (r *Robot) data() bus.RobotData {
	return bus.RobotData{Index: r.index, Name: r.name, X: r.x, Y: r.y, Dir: r.direction}
}
