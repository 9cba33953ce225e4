// Package sensors implements the proximity and vision sensors mounted on
// robots. Sensors only see the world through the Body they are attached to.
package sensors

import (
	"errors"
	"math"

	"github.com/zeusync/robosim/internal/core/systems/physics"
)

var (
	ErrInvalidRange       = errors.New("sensors: invalid range")
	ErrInvalidCameraShape = errors.New("sensors: invalid camera shape")
	ErrUnknownCameraType  = errors.New("sensors: unknown camera type")
)

// Body is what a sensor is mounted on.
type Body interface {
	// Pose returns position and heading in radians.
	Pose() (x, y, direction float64)
	// CastRay returns the closest hit along the ray. With seeRobots the
	// bounding boxes of other robots count as walls, otherwise only static
	// walls are considered.
	CastRay(x, y, angle, maxRange float64, seeRobots bool) (physics.Hit, bool)
	// CastRayRobots returns every hit against other robots, unordered.
	CastRayRobots(x, y, angle, maxRange float64) []physics.Hit
	// ArenaSize is the width and height of the world the body lives in.
	ArenaSize() (width, height float64)
}

func clamp01(v float64) float64 {
	return math.Max(math.Min(v, 1), 0)
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
