// Package world holds the arena, its walls and the robots moving in it, and
// drives the per-tick simulation step.
//
// A World is not safe for concurrent use; hosts serialize Update, Draw and
// robot commands.
package world

import (
	"errors"
	"fmt"

	"github.com/creasty/defaults"

	"github.com/zeusync/robosim/internal/core/events/bus"
	"github.com/zeusync/robosim/internal/core/observability/log"
	"github.com/zeusync/robosim/internal/core/render"
	"github.com/zeusync/robosim/internal/core/systems/physics"
)

var (
	ErrInvalidWorldSize       = errors.New("world: invalid size")
	ErrRobotAlreadyRegistered = errors.New("world: robot already registered")
	ErrNoLines                = errors.New("world: wall has no lines")
)

// BoxOptions is an axis-aligned box obstacle.
type BoxOptions struct {
	Color []int         `json:"color" yaml:"color" default:"[0,0,0]"`
	P1    physics.Point `json:"p1" yaml:"p1"`
	P2    physics.Point `json:"p2" yaml:"p2"`
}

// Options are the recognized world settings.
type Options struct {
	Width         float64      `json:"width" yaml:"width" default:"500"`
	Height        float64      `json:"height" yaml:"height" default:"250"`
	Boxes         []BoxOptions `json:"boxes" yaml:"boxes"`
	BoundaryColor []int        `json:"boundaryColor,omitempty" yaml:"boundaryColor,omitempty" default:"[128,0,128]"`
	GroundColor   []int        `json:"groundColor,omitempty" yaml:"groundColor,omitempty" default:"[0,128,0]"`
}

func (o *Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidWorldSize, o.Width, o.Height)
	}
	return nil
}

// Wall is a colored list of segments. Robot is nil for static geometry; for a
// robot's bounding wall, Lines are the robot's own bounding lines.
type Wall struct {
	Color render.Color
	Robot *Robot
	Lines []*physics.Line
}

type World struct {
	time   float64
	ticks  uint64
	atX    float64
	atY    float64
	width  float64
	height float64

	robots []*Robot
	walls  []*Wall

	boundaryColor render.Color
	groundColor   render.Color

	logger log.Log
	events bus.EventBus
}

// New builds a world surrounded by four single-line boundary walls followed
// by the configured boxes. logger and events may be nil.
func New(opts Options, logger log.Log, events bus.EventBus) (*World, error) {
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("world defaults: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}

	w := &World{
		width:         opts.Width,
		height:        opts.Height,
		boundaryColor: render.FromTriple(opts.BoundaryColor),
		groundColor:   render.FromTriple(opts.GroundColor),
		logger:        logger.With(log.String("component", "world")),
		events:        events,
	}

	// four single-line walls rather than one box
	p1 := physics.Point{X: 0, Y: 0}
	p2 := physics.Point{X: 0, Y: w.height}
	p3 := physics.Point{X: w.width, Y: w.height}
	p4 := physics.Point{X: w.width, Y: 0}
	_ = w.AddWall(w.boundaryColor, nil, &physics.Line{P1: p1, P2: p2})
	_ = w.AddWall(w.boundaryColor, nil, &physics.Line{P1: p2, P2: p3})
	_ = w.AddWall(w.boundaryColor, nil, &physics.Line{P1: p3, P2: p4})
	_ = w.AddWall(w.boundaryColor, nil, &physics.Line{P1: p4, P2: p1})

	for _, b := range opts.Boxes {
		if err := defaults.Set(&b); err != nil {
			return nil, fmt.Errorf("box defaults: %w", err)
		}
		w.AddBox(render.FromTriple(b.Color), b.P1.X, b.P1.Y, b.P2.X, b.P2.Y)
	}

	w.logger.Debug("world created",
		log.Float64("width", w.width),
		log.Float64("height", w.height),
		log.Int("walls", len(w.walls)),
	)
	return w, nil
}

// AddWall appends a wall made of lines. The lines are kept, not copied.
func (w *World) AddWall(c render.Color, robot *Robot, lines ...*physics.Line) error {
	if len(lines) == 0 {
		return ErrNoLines
	}
	w.walls = append(w.walls, &Wall{Color: c, Robot: robot, Lines: lines})
	return nil
}

// AddBox adds the axis-aligned box with corners (x1,y1) and (x2,y2).
func (w *World) AddBox(c render.Color, x1, y1, x2, y2 float64) {
	p1 := physics.Point{X: x1, Y: y1}
	p2 := physics.Point{X: x2, Y: y1}
	p3 := physics.Point{X: x2, Y: y2}
	p4 := physics.Point{X: x1, Y: y2}
	_ = w.AddWall(c, nil,
		&physics.Line{P1: p1, P2: p2},
		&physics.Line{P1: p2, P2: p3},
		&physics.Line{P1: p3, P2: p4},
		&physics.Line{P1: p4, P2: p1},
	)
}

// AddRobot registers r and exposes its bounding box as a wall other robots
// collide with and see.
func (w *World) AddRobot(r *Robot) error {
	if r.world != nil {
		return fmt.Errorf("%w: %s", ErrRobotAlreadyRegistered, r.name)
	}
	r.world = w
	r.index = len(w.robots)
	w.robots = append(w.robots, r)
	_ = w.AddWall(r.color, r, r.bounds[:]...)

	w.logger.Debug("robot registered", log.String("robot", r.name), log.Int("index", r.index))
	w.publish(bus.EventRobotAdded, r.data())
	return nil
}

// Update advances every robot one step in registration order. A robot
// updated later sees the new bounding boxes of those before it.
func (w *World) Update(time float64) {
	w.time = time
	stalled := 0
	for _, r := range w.robots {
		was := r.stalled
		r.Update(time)
		if r.stalled {
			stalled++
		}
		switch {
		case r.stalled && !was:
			r.logger.Debug("robot stalled", log.Float64("x", r.x), log.Float64("y", r.y))
			w.publish(bus.EventRobotStalled, r.data())
		case !r.stalled && was:
			r.logger.Debug("robot freed", log.Float64("x", r.x), log.Float64("y", r.y))
			w.publish(bus.EventRobotFreed, r.data())
		}
	}
	w.ticks++
	w.publish(bus.EventTick, bus.TickData{Tick: w.ticks, Time: time, Robots: len(w.robots), Stalled: stalled})
}

func (w *World) publish(typ string, data any) {
	if w.events == nil {
		return
	}
	if err := w.events.PublishToTopic(bus.TopicSimulation, bus.NewEvent(typ, "world", data, nil)); err != nil {
		w.logger.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}

// Draw renders ground, static walls, boundary strokes and then every robot.
func (w *World) Draw(c render.Canvas) {
	c.Clear()
	c.NoStroke()
	c.Fill(w.groundColor)
	c.Rect(w.atX, w.atY, w.width, w.height)

	for _, wall := range w.walls {
		if wall.Robot != nil {
			continue
		}
		c.NoStroke()
		c.Fill(wall.Color)
		c.BeginShape()
		for _, l := range wall.Lines {
			c.Vertex(l.P1.X, l.P1.Y)
			c.Vertex(l.P2.X, l.P2.Y)
		}
		c.EndShape()
	}

	for _, wall := range w.walls {
		if len(wall.Lines) != 1 {
			continue
		}
		l := wall.Lines[0]
		c.Stroke(wall.Color, 3)
		c.Line(l.P1.X, l.P1.Y, l.P2.X, l.P2.Y)
		c.NoStroke()
	}

	for _, r := range w.robots {
		r.Draw(c)
	}
}

func (w *World) Time() float64   { return w.time }
func (w *World) Ticks() uint64   { return w.ticks }
func (w *World) Width() float64  { return w.width }
func (w *World) Height() float64 { return w.height }

// Robots returns the registered robots in registration order.
func (w *World) Robots() []*Robot { return w.robots }

// Walls returns every wall: the four boundaries, boxes, then robot walls in
// the order they were added.
func (w *World) Walls() []*Wall { return w.walls }

// Robot looks a robot up by name.
func (w *World) Robot(name string) (*Robot, bool) {
	for _, r := range w.robots {
		if r.name == name {
			return r, true
		}
	}
	return nil, false
}
