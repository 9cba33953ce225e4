package sensors

import (
	"fmt"
	"math"

	"github.com/creasty/defaults"

	"github.com/zeusync/robosim/internal/core/render"
	"github.com/zeusync/robosim/internal/core/systems/physics"
)

// RangeOptions are the recognized range sensor settings. Angles are radians.
type RangeOptions struct {
	// Position is the mount distance from the robot center.
	Position *float64 `json:"position,omitempty" yaml:"position,omitempty" default:"10"`
	// Direction is the mount angle relative to the robot heading.
	Direction float64 `json:"direction" yaml:"direction"`
	Max       float64 `json:"max" yaml:"max" default:"100"`
	// Width is the cone aperture. Zero casts a single ray.
	Width *float64 `json:"width,omitempty" yaml:"width,omitempty" default:"1.0"`
}

func (o *RangeOptions) Validate() error {
	if o.Max <= 0 || math.IsNaN(o.Max) || math.IsInf(o.Max, 0) {
		return fmt.Errorf("%w: max must be positive, got %v", ErrInvalidRange, o.Max)
	}
	if o.Width != nil && *o.Width < 0 {
		return fmt.Errorf("%w: width must not be negative, got %v", ErrInvalidRange, *o.Width)
	}
	return nil
}

// RangeSensor reports the distance to the closest obstacle in a narrow cone.
// Reading is distance/max, so 1 means nothing was seen within max.
type RangeSensor struct {
	body Body

	position  float64
	direction float64
	width     float64
	max       float64

	reading  float64
	distance float64
	time     float64
}

func NewRangeSensor(body Body, opts RangeOptions) (*RangeSensor, error) {
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("range sensor defaults: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &RangeSensor{
		body:      body,
		position:  *opts.Position,
		direction: opts.Direction,
		width:     *opts.Width,
		max:       opts.Max,
	}
	s.setReading(1)
	return s, nil
}

// Update re-reads the sensor from the body's current pose.
func (s *RangeSensor) Update(time float64) {
	s.time = time
	s.setReading(1)

	p := s.Mount()
	_, _, dir := s.body.Pose()
	heading := -dir + math.Pi/2 - s.direction

	offsets := []float64{0}
	if s.width != 0 {
		offsets = []float64{-s.width / 2, 0, s.width / 2}
	}
	for _, incr := range offsets {
		hit, ok := s.body.CastRay(p.X, p.Y, heading+incr, s.max, true)
		if ok && hit.Distance < s.distance {
			s.setDistance(hit.Distance)
		}
	}
}

// Mount is the sensor's position in world coordinates.
func (s *RangeSensor) Mount() physics.Point {
	x, y, dir := s.body.Pose()
	return physics.RotateAround(x, y, s.position, dir+s.direction)
}

func (s *RangeSensor) Draw(c render.Canvas) {
	if s.reading < 1 {
		c.Stroke(render.Gray(255), 1)
	} else {
		c.Stroke(render.Gray(0), 1)
	}
	c.Fill(render.RGBA(128, 0, 128, 64))

	p := s.Mount()
	_, _, dir := s.body.Pose()
	heading := dir + s.direction
	if s.width > 0 {
		c.Arc(p.X, p.Y, s.distance, heading-s.width/2, heading+s.width/2)
		return
	}
	end := physics.RotateAround(p.X, p.Y, s.distance, heading)
	c.Line(p.X, p.Y, end.X, end.Y)
}

func (s *RangeSensor) Reading() float64  { return s.reading }
func (s *RangeSensor) Distance() float64 { return s.distance }
func (s *RangeSensor) Max() float64      { return s.max }
func (s *RangeSensor) Width() float64    { return s.width }
func (s *RangeSensor) Time() float64     { return s.time }

func (s *RangeSensor) setDistance(distance float64) {
	s.distance = distance
	s.reading = distance / s.max
}

func (s *RangeSensor) setReading(reading float64) {
	s.reading = reading
	s.distance = reading * s.max
}
