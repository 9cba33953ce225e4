// Package physics holds the 2D geometry the simulation runs on: points,
// directed segments, the segment intersection kernel and ray hits.
//
// Angles follow the screen convention used throughout the simulation:
// a ray of length r at angle a from (x0,y0) ends at (x0+r·sin a, y0+r·cos a),
// while RotateAround (poses, mounts, bounding corners) uses (cos a, sin a).
package physics

import "math"

// Point is a plain 2D coordinate.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Line is a directed segment from P1 to P2. Lines are shared by pointer when
// several owners must observe the same geometry, so endpoints are updated in
// place rather than reallocated.
type Line struct {
	P1 Point
	P2 Point
}

func NewLine(x1, y1, x2, y2 float64) *Line {
	return &Line{P1: Point{X: x1, Y: y1}, P2: Point{X: x2, Y: y2}}
}

// Set moves both endpoints.
func (l *Line) Set(p1, p2 Point) {
	l.P1 = p1
	l.P2 = p2
}

// Distance computes Euclidean distance between two 2D points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt((x1-x2)*(x1-x2) + (y1-y2)*(y1-y2))
}

// RotateAround returns the point at distance length from (x,y) along angle.
func RotateAround(x, y, length, angle float64) Point {
	return Point{
		X: x + length*math.Cos(-angle),
		Y: y - length*math.Sin(-angle),
	}
}

// RayEnd returns the far end of a ray cast from (x,y) at angle a.
func RayEnd(x, y, a, maxRange float64) Point {
	return Point{
		X: math.Sin(a)*maxRange + x,
		Y: math.Cos(a)*maxRange + y,
	}
}
