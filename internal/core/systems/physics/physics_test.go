package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) Point { return Point{X: x, Y: y} }

func TestCCW(t *testing.T) {
	assert.True(t, CCW(pt(0, 0), pt(1, 0), pt(1, 1)))
	assert.False(t, CCW(pt(0, 0), pt(1, 1), pt(1, 0)))
	assert.False(t, CCW(pt(0, 0), pt(1, 1), pt(2, 2)), "collinear is not ccw")
}

func TestSegmentsIntersect(t *testing.T) {
	t.Run("crossing", func(t *testing.T) {
		assert.True(t, SegmentsIntersect(pt(0, 0), pt(10, 10), pt(0, 10), pt(10, 0)))
	})
	t.Run("disjoint", func(t *testing.T) {
		assert.False(t, SegmentsIntersect(pt(0, 0), pt(1, 1), pt(5, 0), pt(6, 1)))
	})
	t.Run("parallel", func(t *testing.T) {
		assert.False(t, SegmentsIntersect(pt(0, 0), pt(10, 0), pt(0, 1), pt(10, 1)))
	})
}

func TestSegmentsIntersectSymmetric(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	coord := func() float64 { return float64(r.Intn(41) - 20) }
	for i := 0; i < 5000; i++ {
		a, b, c, d := pt(coord(), coord()), pt(coord(), coord()), pt(coord(), coord()), pt(coord(), coord())
		require.Equal(t, SegmentsIntersect(a, b, c, d), SegmentsIntersect(c, d, a, b),
			"a=%v b=%v c=%v d=%v", a, b, c, d)
	}
}

func TestLineCoefficients(t *testing.T) {
	c := LineCoefficients(pt(1, 2), pt(4, 6))
	assert.Equal(t, Coefficients{A: -4, B: 3, C: 2}, c)
	// both endpoints satisfy A·x + B·y = C
	assert.Equal(t, c.C, c.A*1+c.B*2)
	assert.Equal(t, c.C, c.A*4+c.B*6)
}

func TestSolveIntersection(t *testing.T) {
	p, ok := SolveIntersection(LineCoefficients(pt(0, 0), pt(2, 2)), LineCoefficients(pt(0, 2), pt(2, 0)))
	require.True(t, ok)
	assert.InDelta(t, 1, p.X, 1e-12)
	assert.InDelta(t, 1, p.Y, 1e-12)

	_, ok = SolveIntersection(LineCoefficients(pt(0, 0), pt(1, 1)), LineCoefficients(pt(0, 1), pt(1, 2)))
	require.False(t, ok, "parallel lines have no unique solution")
}

func TestSegmentIntersectionPointAccuracy(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		cross := pt(r.Float64()*200-100, r.Float64()*200-100)
		a1 := r.Float64() * math.Pi
		a2 := a1 + 0.2 + r.Float64()*(math.Pi-0.4)
		d1 := pt(math.Cos(a1), math.Sin(a1))
		d2 := pt(math.Cos(a2), math.Sin(a2))
		l1, l2, l3, l4 := 1+r.Float64()*50, 1+r.Float64()*50, 1+r.Float64()*50, 1+r.Float64()*50

		p1 := pt(cross.X-d1.X*l1, cross.Y-d1.Y*l1)
		p2 := pt(cross.X+d1.X*l2, cross.Y+d1.Y*l2)
		p3 := pt(cross.X-d2.X*l3, cross.Y-d2.Y*l3)
		p4 := pt(cross.X+d2.X*l4, cross.Y+d2.Y*l4)

		got, ok := SegmentIntersectionPoint(p1, p2, p3, p4)
		require.True(t, ok, "iteration %d", i)
		require.InDelta(t, cross.X, got.X, 0.1)
		require.InDelta(t, cross.Y, got.Y, 0.1)
	}
}

func TestSegmentIntersectionPointParallel(t *testing.T) {
	for _, off := range []float64{0.05, 0.5, 1, 3, 10, 100} {
		_, ok := SegmentIntersectionPoint(pt(0, 0), pt(10, 0), pt(0, off), pt(10, off))
		assert.False(t, ok, "horizontal offset %v", off)

		_, ok = SegmentIntersectionPoint(pt(0, 0), pt(10, 10), pt(0, off), pt(10, 10+off))
		assert.False(t, ok, "diagonal offset %v", off)
	}
}

func TestSegmentIntersectionPointOutsideSegments(t *testing.T) {
	// lines cross at (5,5) but the second segment stops at x=3
	_, ok := SegmentIntersectionPoint(pt(0, 0), pt(10, 10), pt(0, 10), pt(3, 7))
	assert.False(t, ok)
}

func TestSegmentIntersectionPointSlack(t *testing.T) {
	// the vertical segment ends 0.05 short of the horizontal one
	p, ok := SegmentIntersectionPoint(pt(0, 0), pt(10, 0), pt(5, 0.05), pt(5, 10))
	require.True(t, ok)
	assert.InDelta(t, 5, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)

	_, ok = SegmentIntersectionPoint(pt(0, 0), pt(10, 0), pt(5, 0.5), pt(5, 10))
	assert.False(t, ok)
}

func TestRotateAroundAndRayEnd(t *testing.T) {
	p := RotateAround(10, 10, 5, 0)
	assert.InDelta(t, 15, p.X, 1e-12)
	assert.InDelta(t, 10, p.Y, 1e-12)

	p = RotateAround(10, 10, 5, math.Pi/2)
	assert.InDelta(t, 10, p.X, 1e-12)
	assert.InDelta(t, 15, p.Y, 1e-12)

	e := RayEnd(0, 0, 0, 7)
	assert.InDelta(t, 0, e.X, 1e-12)
	assert.InDelta(t, 7, e.Y, 1e-12)

	// a ray at π/2 - d points the same way as RotateAround at d
	d := 0.3
	e = RayEnd(0, 0, math.Pi/2-d, 1)
	q := RotateAround(0, 0, 1, d)
	assert.InDelta(t, q.X, e.X, 1e-12)
	assert.InDelta(t, q.Y, e.Y, 1e-12)
}

func TestLineSetSharesStorage(t *testing.T) {
	l := NewLine(0, 0, 1, 1)
	shared := []*Line{l}
	l.Set(pt(2, 2), pt(3, 3))
	assert.Equal(t, pt(2, 2), shared[0].P1)
	assert.Equal(t, 5.0, Distance(0, 0, 3, 4))
}

func TestMinHit(t *testing.T) {
	_, ok := MinHit(nil)
	require.False(t, ok)

	h, ok := MinHit([]Hit{{Distance: 3, Wall: 0}, {Distance: 1, Wall: 1}, {Distance: 1, Wall: 2}})
	require.True(t, ok)
	assert.Equal(t, 1, h.Wall, "first of equal distances wins")
}
