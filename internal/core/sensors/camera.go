package sensors

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/creasty/defaults"

	"github.com/zeusync/robosim/internal/core/render"
	"github.com/zeusync/robosim/internal/core/systems/physics"
	"github.com/zeusync/robosim/pkg/concurrent"
)

const (
	TypeCamera      = "Camera"
	TypeDepthCamera = "DepthCamera"
)

// robotStripHeight is the strip height, in pixels, of a robot seen at zero
// distance.
const robotStripHeight = 30

var (
	skyColor    = render.RGB(0, 0, 128)
	groundColor = render.RGB(0, 128, 0)
	lensColor   = render.RGB(0, 64, 0)
)

// CameraOptions are the recognized camera settings. Angle is in degrees.
type CameraOptions struct {
	Type                   string  `json:"type" yaml:"type"`
	Width                  int     `json:"width" yaml:"width" default:"256"`
	Height                 int     `json:"height" yaml:"height" default:"128"`
	Angle                  float64 `json:"angle" yaml:"angle" default:"60"`
	ColorsFadeWithDistance float64 `json:"colorsFadeWithDistance" yaml:"colorsFadeWithDistance" default:"1.0"`
	MaxRange               float64 `json:"maxRange" yaml:"maxRange" default:"1000"`
	// ReflectGround and ReflectSky only affect DepthCamera.
	ReflectGround *bool `json:"reflectGround,omitempty" yaml:"reflectGround,omitempty" default:"true"`
	ReflectSky    *bool `json:"reflectSky,omitempty" yaml:"reflectSky,omitempty" default:"false"`
	// Workers bounds the goroutines casting columns; 0 or 1 sweeps sequentially.
	Workers int `json:"workers" yaml:"workers"`
}

func (o *CameraOptions) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidCameraShape, o.Width, o.Height)
	}
	if o.MaxRange <= 0 {
		return fmt.Errorf("%w: camera max range must be positive, got %v", ErrInvalidRange, o.MaxRange)
	}
	return nil
}

// Camera is a wide-angle sensor that synthesizes a pseudo-3D image from
// one ray per pixel column.
type Camera interface {
	Type() string
	Update(time float64)
	TakePicture() *render.Picture
	// Draw marks the lens in the robot's local frame.
	Draw(c render.Canvas)
	Shape() (width, height int)
	// Column returns the cached hits of one column from the last Update.
	Column(i int) (wall physics.Hit, hasWall bool, robots []physics.Hit)
}

// NewCamera builds the camera named by opts.Type. An unrecognized type
// yields ErrUnknownCameraType.
func NewCamera(body Body, opts CameraOptions) (Camera, error) {
	if opts.Type != TypeCamera && opts.Type != TypeDepthCamera {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCameraType, opts.Type)
	}
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("camera defaults: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	sw := newSweep(body, opts)
	if opts.Type == TypeDepthCamera {
		return &DepthCamera{
			sweep:         sw,
			reflectGround: *opts.ReflectGround,
			reflectSky:    *opts.ReflectSky,
		}, nil
	}
	return &RGBCamera{sweep: sw}, nil
}

type column struct {
	wall    physics.Hit
	hasWall bool
	robots  []physics.Hit
}

// sweep is the column ray casting both camera variants share.
type sweep struct {
	body Body

	width, height int
	angle         float64
	fade          float64
	maxRange      float64
	workers       int

	columns []column
	time    float64
}

func newSweep(body Body, opts CameraOptions) *sweep {
	return &sweep{
		body:     body,
		width:    opts.Width,
		height:   opts.Height,
		angle:    opts.Angle,
		fade:     opts.ColorsFadeWithDistance,
		maxRange: opts.MaxRange,
		workers:  opts.Workers,
		columns:  make([]column, opts.Width),
	}
}

func (s *sweep) Update(time float64) {
	s.time = time
	x, y, dir := s.body.Pose()
	workers := s.workers
	if workers == 0 {
		workers = 1
	}
	// columns share no state, any worker count yields the same picture
	_ = concurrent.ForEach(context.Background(), s.width, workers, func(_ context.Context, i int) error {
		a := float64(i)/float64(s.width)*s.angle - s.angle/2
		heading := math.Pi/2 - dir - a*math.Pi/180
		wall, ok := s.body.CastRay(x, y, heading, s.maxRange, false)
		s.columns[i] = column{
			wall:    wall,
			hasWall: ok,
			robots:  s.body.CastRayRobots(x, y, heading, s.maxRange),
		}
		return nil
	})
}

func (s *sweep) Shape() (int, int) { return s.width, s.height }

func (s *sweep) Column(i int) (physics.Hit, bool, []physics.Hit) {
	if i < 0 || i >= len(s.columns) {
		return physics.Hit{}, false, nil
	}
	c := s.columns[i]
	return c.wall, c.hasWall, c.robots
}

func (s *sweep) Draw(c render.Canvas) {
	c.Fill(lensColor)
	c.NoStroke()
	c.Rect(5.0, -3.33, 1.33, 6.33)
}

// shade returns the proximity s and the faded color scale sc for a distance.
func (s *sweep) shade(distance, size float64) (float64, float64) {
	return clamp01(1 - distance/size), clamp01(1 - distance/size*s.fade)
}

// palette specializes the pixel colors of a sweep picture.
type palette interface {
	wall(hit physics.Hit, sc float64) render.Color
	robot(hit physics.Hit, sc float64) render.Color
	sky(row int) (render.Color, bool)
	ground(row int) (render.Color, bool)
}

func (s *sweep) picture(p palette) *render.Picture {
	pic := render.NewPicture(s.width, s.height)
	aw, ah := s.body.ArenaSize()
	size := math.Max(aw, ah)
	h := float64(s.height)

	for i, col := range s.columns {
		high := 0.0
		var wallColor render.Color
		if col.hasWall {
			prox, sc := s.shade(col.wall.Distance, size)
			wallColor = p.wall(col.wall, sc)
			high = (1 - prox) * h
		}
		for j := 0; j < s.height; j++ {
			row := float64(j)
			switch {
			case row < high/2:
				if c, ok := p.sky(j); ok {
					pic.Set(i, j, c)
				}
			case row < h-high/2:
				if col.hasWall {
					pic.Set(i, j, wallColor)
				}
			default:
				if c, ok := p.ground(j); ok {
					pic.Set(i, j, c)
				}
			}
		}
		s.compositeRobots(pic, i, col, size, p)
	}
	return pic
}

// compositeRobots paints the nearest robot visible in a column over the wall
// bands, back to front. Robots behind the column's wall are occluded.
func (s *sweep) compositeRobots(pic *render.Picture, i int, col column, size float64, p palette) {
	visible := make([]physics.Hit, 0, len(col.robots))
	for _, hit := range col.robots {
		if col.hasWall && hit.Distance > col.wall.Distance {
			continue
		}
		visible = append(visible, hit)
	}
	nearest, ok := physics.MinHit(visible)
	if !ok {
		return
	}

	sort.SliceStable(visible, func(a, b int) bool { return visible[a].Distance > visible[b].Distance })
	h := float64(s.height)
	for _, hit := range visible {
		if hit.Wall != nearest.Wall {
			continue
		}
		prox, sc := s.shade(hit.Distance, size)
		lift := int(roundHalfUp(h / 2 * (1 - prox)))
		strip := robotStripHeight * prox
		c := p.robot(hit, sc)
		for j := 0; float64(j) < strip; j++ {
			pic.Set(i, s.height-j-1-lift, c)
		}
	}
}

// RGBCamera renders walls and robots in their own colors over a blue sky and
// green ground.
type RGBCamera struct {
	*sweep
}

func (c *RGBCamera) Type() string { return TypeCamera }

func (c *RGBCamera) TakePicture() *render.Picture {
	return c.picture(rgbPalette{})
}

type rgbPalette struct{}

func (rgbPalette) wall(hit physics.Hit, sc float64) render.Color  { return hit.Color.Scale(sc) }
func (rgbPalette) robot(hit physics.Hit, sc float64) render.Color { return hit.Color.Scale(sc) }
func (rgbPalette) sky(int) (render.Color, bool)                   { return skyColor, true }
func (rgbPalette) ground(int) (render.Color, bool)                { return groundColor, true }

// DepthCamera renders distance as gray levels, brighter when closer, and
// optionally shades the sky and ground bands with a gradient toward the
// horizon.
type DepthCamera struct {
	*sweep
	reflectGround bool
	reflectSky    bool
}

func (c *DepthCamera) Type() string { return TypeDepthCamera }

func (c *DepthCamera) ReflectGround() bool { return c.reflectGround }
func (c *DepthCamera) ReflectSky() bool    { return c.reflectSky }

func (c *DepthCamera) TakePicture() *render.Picture {
	return c.picture(depthPalette{camera: c})
}

type depthPalette struct {
	camera *DepthCamera
}

func (depthPalette) wall(_ physics.Hit, sc float64) render.Color  { return render.GrayLevel(255 * sc) }
func (depthPalette) robot(_ physics.Hit, sc float64) render.Color { return render.GrayLevel(255 * sc) }

func (p depthPalette) sky(row int) (render.Color, bool) {
	if !p.camera.reflectSky {
		return render.Color{}, false
	}
	horizon := float64(p.camera.height) / 2
	v := clamp01(1 - float64(row)/horizon*p.camera.fade)
	return render.GrayLevel(255 - 255*v), true
}

func (p depthPalette) ground(row int) (render.Color, bool) {
	if !p.camera.reflectGround {
		return render.Color{}, false
	}
	horizon := float64(p.camera.height) / 2
	v := clamp01((float64(row) - horizon) / horizon * p.camera.fade)
	return render.GrayLevel(255 * v), true
}
