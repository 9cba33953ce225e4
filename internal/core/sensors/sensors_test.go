package sensors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/robosim/internal/core/render"
	"github.com/zeusync/robosim/internal/core/systems/physics"
)

type fakeWall struct {
	color render.Color
	robot bool
	lines []*physics.Line
}

// fakeBody casts rays against a fixed wall list.
type fakeBody struct {
	x, y, dir float64
	w, h      float64
	walls     []fakeWall
}

func newFakeBody(x, y, dir float64) *fakeBody {
	return &fakeBody{x: x, y: y, dir: dir, w: 500, h: 250}
}

func (b *fakeBody) Pose() (float64, float64, float64) { return b.x, b.y, b.dir }
func (b *fakeBody) ArenaSize() (float64, float64)     { return b.w, b.h }

func (b *fakeBody) addWall(c render.Color, lines ...*physics.Line) {
	b.walls = append(b.walls, fakeWall{color: c, lines: lines})
}

func (b *fakeBody) addRobotBox(c render.Color, x1, y1, x2, y2 float64) {
	b.walls = append(b.walls, fakeWall{color: c, robot: true, lines: box(x1, y1, x2, y2)})
}

func box(x1, y1, x2, y2 float64) []*physics.Line {
	return []*physics.Line{
		physics.NewLine(x1, y1, x2, y1),
		physics.NewLine(x2, y1, x2, y2),
		physics.NewLine(x2, y2, x1, y2),
		physics.NewLine(x1, y2, x1, y1),
	}
}

func (b *fakeBody) cast(x, y, a, maxRange float64, keep func(fakeWall) bool) []physics.Hit {
	start := physics.Point{X: x, Y: y}
	end := physics.RayEnd(x, y, a, maxRange)
	var hits []physics.Hit
	for i, w := range b.walls {
		if !keep(w) {
			continue
		}
		for _, l := range w.lines {
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
				Color:    w.color,
				Height:   1,
				Wall:     i,
			})
		}
	}
	return hits
}

func (b *fakeBody) CastRay(x, y, a, maxRange float64, seeRobots bool) (physics.Hit, bool) {
	return physics.MinHit(b.cast(x, y, a, maxRange, func(w fakeWall) bool { return seeRobots || !w.robot }))
}

func (b *fakeBody) CastRayRobots(x, y, a, maxRange float64) []physics.Hit {
	return b.cast(x, y, a, maxRange, func(w fakeWall) bool { return w.robot })
}

func ptr[T any](v T) *T { return &v }

func TestRangeSensorDefaults(t *testing.T) {
	s, err := NewRangeSensor(newFakeBody(100, 100, 0), RangeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, s.Max())
	assert.Equal(t, 1.0, s.Width())
	assert.Equal(t, 1.0, s.Reading())
	assert.Equal(t, 100.0, s.Distance())
	assert.InDelta(t, 110, s.Mount().X, 1e-9)
	assert.InDelta(t, 100, s.Mount().Y, 1e-9)

	s, err = NewRangeSensor(newFakeBody(100, 100, 0), RangeOptions{Width: ptr(0.0), Position: ptr(0.0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Width(), "explicit zero width is kept")
	assert.InDelta(t, 100, s.Mount().X, 1e-9)
}

func TestRangeSensorInvalid(t *testing.T) {
	_, err := NewRangeSensor(newFakeBody(0, 0, 0), RangeOptions{Max: -5})
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = NewRangeSensor(newFakeBody(0, 0, 0), RangeOptions{Width: ptr(-1.0)})
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestRangeSensorStraightLine(t *testing.T) {
	for _, width := range []float64{0, 1.0} {
		body := newFakeBody(100, 100, 0)
		body.addWall(render.RGB(255, 255, 0), physics.NewLine(160, 0, 160, 250))

		s, err := NewRangeSensor(body, RangeOptions{Max: 100, Width: ptr(width)})
		require.NoError(t, err)
		s.Update(1)

		assert.InDelta(t, 50, s.Distance(), 0.2, "width %v", width)
		assert.InDelta(t, 0.5, s.Reading(), 0.002, "width %v", width)
		assert.Equal(t, 1.0, s.Time())
	}
}

func TestRangeSensorNoHit(t *testing.T) {
	body := newFakeBody(100, 100, 0)
	body.addWall(render.RGB(255, 255, 0), physics.NewLine(400, 0, 400, 250))
	s, err := NewRangeSensor(body, RangeOptions{Max: 100})
	require.NoError(t, err)
	s.Update(0)
	assert.Equal(t, 1.0, s.Reading())
	assert.Equal(t, 100.0, s.Distance())
}

func TestRangeSensorDirectionOffset(t *testing.T) {
	// a sensor pointing left of the heading sees the wall above the robot
	body := newFakeBody(100, 100, 0)
	body.addWall(render.Gray(0), physics.NewLine(0, 140, 500, 140))
	s, err := NewRangeSensor(body, RangeOptions{Direction: math.Pi / 2, Width: ptr(0.0)})
	require.NoError(t, err)
	assert.InDelta(t, 100, s.Mount().X, 1e-9)
	assert.InDelta(t, 110, s.Mount().Y, 1e-9)

	s.Update(0)
	assert.InDelta(t, 30, s.Distance(), 1e-6)
}

func TestRangeSensorSeesRobots(t *testing.T) {
	body := newFakeBody(100, 100, 0)
	body.addRobotBox(render.RGB(0, 0, 255), 130, 90, 150, 110)
	s, err := NewRangeSensor(body, RangeOptions{Width: ptr(0.0)})
	require.NoError(t, err)
	s.Update(0)
	assert.InDelta(t, 20, s.Distance(), 1e-6)
}

func TestRangeSensorDraw(t *testing.T) {
	body := newFakeBody(100, 100, 0)
	rec := render.NewRecorder()

	s, err := NewRangeSensor(body, RangeOptions{})
	require.NoError(t, err)
	s.Draw(rec)
	require.Equal(t, 1, rec.Count("arc"))
	assert.Equal(t, render.Gray(0), *rec.Ops[0].Color, "black outline when nothing is in range")

	body.addWall(render.Gray(0), physics.NewLine(150, 0, 150, 250))
	s, err = NewRangeSensor(body, RangeOptions{Width: ptr(0.0)})
	require.NoError(t, err)
	s.Update(0)
	rec.Reset()
	s.Draw(rec)
	require.Equal(t, 1, rec.Count("line"))
	assert.Equal(t, render.Gray(255), *rec.Ops[0].Color)
	line := rec.Ops[len(rec.Ops)-1]
	assert.InDelta(t, 150, line.Args[2], 1e-6)
}

func TestNewCameraTypes(t *testing.T) {
	body := newFakeBody(100, 100, 0)

	_, err := NewCamera(body, CameraOptions{Type: "Periscope"})
	require.ErrorIs(t, err, ErrUnknownCameraType)

	_, err = NewCamera(body, CameraOptions{Type: TypeCamera, Width: -1})
	require.ErrorIs(t, err, ErrInvalidCameraShape)

	c, err := NewCamera(body, CameraOptions{Type: TypeCamera})
	require.NoError(t, err)
	assert.Equal(t, TypeCamera, c.Type())
	w, h := c.Shape()
	assert.Equal(t, 256, w)
	assert.Equal(t, 128, h)

	c, err = NewCamera(body, CameraOptions{Type: TypeDepthCamera})
	require.NoError(t, err)
	depth, ok := c.(*DepthCamera)
	require.True(t, ok)
	assert.True(t, depth.ReflectGround())
	assert.False(t, depth.ReflectSky())
}

// smallCamera has four columns; column 2 looks straight along the heading.
func smallCamera(t *testing.T, body Body, typ string, opts ...func(*CameraOptions)) Camera {
	t.Helper()
	o := CameraOptions{Type: typ, Width: 4, Height: 10}
	for _, f := range opts {
		f(&o)
	}
	c, err := NewCamera(body, o)
	require.NoError(t, err)
	return c
}

func TestCameraWallBands(t *testing.T) {
	body := newFakeBody(100, 100, 0)
	body.addWall(render.RGB(200, 100, 50), physics.NewLine(290, 0, 290, 250))

	c := smallCamera(t, body, TypeCamera)
	c.Update(0)
	wall, ok, robots := c.Column(2)
	require.True(t, ok)
	require.Empty(t, robots)
	assert.InDelta(t, 190, wall.Distance, 1e-9)

	pic := c.TakePicture()
	wallColor := render.RGB(124, 62, 31)
	for j := 0; j < 10; j++ {
		switch {
		case j < 2:
			assert.Equal(t, render.RGB(0, 0, 128), pic.Get(2, j), "sky row %d", j)
		case j < 9:
			assert.Equal(t, wallColor, pic.Get(2, j), "wall row %d", j)
		default:
			assert.Equal(t, render.RGB(0, 128, 0), pic.Get(2, j), "ground row %d", j)
		}
	}
}

func TestCameraColumnWithoutHitIsBlank(t *testing.T) {
	c := smallCamera(t, newFakeBody(100, 100, 0), TypeCamera)
	c.Update(0)
	assert.Equal(t, render.NewPicture(4, 10).Digest(), c.TakePicture().Digest())
}

func TestCameraRobotOcclusion(t *testing.T) {
	body := newFakeBody(100, 100, 0)
	body.addWall(render.RGB(200, 100, 50), physics.NewLine(290, 0, 290, 250))
	body.addRobotBox(render.RGB(255, 0, 0), 143, 93, 157, 107)
	body.addRobotBox(render.RGB(0, 255, 255), 193, 93, 207, 107)
	body.addRobotBox(render.RGB(0, 0, 255), 343, 93, 357, 107)

	c := smallCamera(t, body, TypeCamera)
	c.Update(0)
	_, _, robots := c.Column(2)
	require.Len(t, robots, 6)

	pic := c.TakePicture()
	nearest := render.RGB(255, 0, 0).Scale(1 - 43.0/500)
	for j := 0; j < 10; j++ {
		px := pic.Get(2, j)
		assert.Equal(t, nearest, px, "row %d", j)
		assert.False(t, px.Green > 0 && px.Blue > 0, "farther robot leaked into row %d", j)
	}
}

func TestCameraRobotBehindWallHidden(t *testing.T) {
	body := newFakeBody(100, 100, 0)
	body.addWall(render.RGB(200, 100, 50), physics.NewLine(290, 0, 290, 250))
	body.addRobotBox(render.RGB(0, 0, 255), 343, 93, 357, 107)

	c := smallCamera(t, body, TypeCamera)
	c.Update(0)
	pic := c.TakePicture()

	wallOnly := newFakeBody(100, 100, 0)
	wallOnly.addWall(render.RGB(200, 100, 50), physics.NewLine(290, 0, 290, 250))
	ref := smallCamera(t, wallOnly, TypeCamera)
	ref.Update(0)
	assert.Equal(t, ref.TakePicture().Digest(), pic.Digest())
}

func TestCameraParallelSweepMatchesSequential(t *testing.T) {
	body := newFakeBody(120, 80, 0.4)
	body.addWall(render.RGB(128, 0, 128), box(0, 0, 500, 250)...)
	body.addWall(render.RGB(10, 200, 30), box(250, 40, 300, 120)...)
	body.addRobotBox(render.RGB(255, 0, 0), 200, 100, 214, 114)

	seq := smallCamera(t, body, TypeCamera, func(o *CameraOptions) { o.Width, o.Height = 64, 32 })
	par := smallCamera(t, body, TypeCamera, func(o *CameraOptions) { o.Width, o.Height, o.Workers = 64, 32, 8 })
	seq.Update(0)
	par.Update(0)
	assert.Equal(t, seq.TakePicture().Digest(), par.TakePicture().Digest())
}

func TestDepthCameraBands(t *testing.T) {
	body := newFakeBody(100, 100, 0)
	body.addWall(render.RGB(200, 100, 50), physics.NewLine(290, 0, 290, 250))

	c := smallCamera(t, body, TypeDepthCamera)
	c.Update(0)
	pic := c.TakePicture()

	assert.Equal(t, render.Color{}, pic.Get(2, 0), "sky stays blank")
	assert.Equal(t, render.Color{}, pic.Get(2, 1))
	for j := 2; j < 9; j++ {
		assert.Equal(t, render.Gray(158), pic.Get(2, j), "wall row %d", j)
	}
	assert.Equal(t, render.Gray(204), pic.Get(2, 9), "ground gradient")

	sky := smallCamera(t, body, TypeDepthCamera, func(o *CameraOptions) {
		o.ReflectSky = ptr(true)
		o.ReflectGround = ptr(false)
	})
	sky.Update(0)
	pic = sky.TakePicture()
	assert.Equal(t, render.Gray(0), pic.Get(2, 0))
	assert.Equal(t, render.Gray(51), pic.Get(2, 1))
	assert.Equal(t, render.Color{}, pic.Get(2, 9), "ground stays blank")
}

func TestDepthCameraRobotIsGray(t *testing.T) {
	body := newFakeBody(100, 100, 0)
	body.addRobotBox(render.RGB(255, 0, 0), 143, 93, 157, 107)

	c := smallCamera(t, body, TypeDepthCamera)
	c.Update(0)
	px := c.TakePicture().Get(2, 5)
	assert.Equal(t, render.GrayLevel(255*(1-43.0/500)), px)
}

func TestCameraDrawMarksLens(t *testing.T) {
	rec := render.NewRecorder()
	smallCamera(t, newFakeBody(0, 0, 0), TypeCamera).Draw(rec)
	require.Equal(t, 1, rec.Count("rect"))
	assert.Equal(t, []float64{5.0, -3.33, 1.33, 6.33}, rec.Ops[2].Args)
}
