package physics

import "math"

// SegmentSlack inflates each segment's bounding box when accepting an
// intersection point, absorbing float error at shared vertices. Sensor and
// collision behavior is tuned against this value.
var SegmentSlack = 0.1

// CCW reports whether a→b→c turns counter-clockwise.
func CCW(a, b, c Point) bool {
	return (c.Y-a.Y)*(b.X-a.X) > (b.Y-a.Y)*(c.X-a.X)
}

// SegmentsIntersect is a topological crossing test for AB and CD. Collinear
// touching may report false.
func SegmentsIntersect(a, b, c, d Point) bool {
	return CCW(a, c, d) != CCW(b, c, d) && CCW(a, b, c) != CCW(a, b, d)
}

// Coefficients describes the implicit line A·x + B·y = C.
type Coefficients struct {
	A, B, C float64
}

// LineCoefficients converts the segment p1→p2 to its implicit line.
func LineCoefficients(p1, p2 Point) Coefficients {
	return Coefficients{
		A: p1.Y - p2.Y,
		B: p2.X - p1.X,
		C: -(p1.X*p2.Y - p2.X*p1.Y),
	}
}

// SolveIntersection intersects two implicit lines with Cramer's rule. Only an
// exactly zero determinant is rejected; near-parallel lines yield far points.
func SolveIntersection(l1, l2 Coefficients) (Point, bool) {
	d := l1.A*l2.B - l1.B*l2.A
	if d == 0 {
		return Point{}, false
	}
	dx := l1.C*l2.B - l1.B*l2.C
	dy := l1.A*l2.C - l1.C*l2.A
	return Point{X: dx / d, Y: dy / d}, true
}

// SegmentIntersectionPoint returns where segments p1p2 and p3p4 cross, if the
// crossing lies within both segments' slack-inflated bounding boxes.
func SegmentIntersectionPoint(p1, p2, p3, p4 Point) (Point, bool) {
	xy, ok := SolveIntersection(LineCoefficients(p1, p2), LineCoefficients(p3, p4))
	if !ok {
		return Point{}, false
	}
	if !withinSlack(xy, p1, p2) || !withinSlack(xy, p3, p4) {
		return Point{}, false
	}
	return xy, true
}

func withinSlack(p, a, b Point) bool {
	lowX := math.Min(a.X, b.X) - SegmentSlack
	highX := math.Max(a.X, b.X) + SegmentSlack
	lowY := math.Min(a.Y, b.Y) - SegmentSlack
	highY := math.Max(a.Y, b.Y) + SegmentSlack
	return lowX <= p.X && p.X <= highX && lowY <= p.Y && p.Y <= highY
}
