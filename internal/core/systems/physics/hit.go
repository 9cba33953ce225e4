package physics

import "github.com/zeusync/robosim/internal/core/render"

// Hit records one ray striking one wall segment. Hits are values and are
// never mutated after a cast returns them.
type Hit struct {
	// Distance from the ray origin to the hit point.
	Distance float64
	X, Y     float64
	// StartX, StartY is the ray origin.
	StartX, StartY float64
	Color          render.Color
	// Height is reserved for 3D use; casts always set 1.
	Height float64
	// Wall is the index of the struck wall in its world.
	Wall int
}

// MinHit returns the hit with the smallest distance; ties keep the earliest.
// It reports false for an empty slice.
func MinHit(hits []Hit) (Hit, bool) {
	if len(hits) == 0 {
		return Hit{}, false
	}
	minimum := hits[0]
	for _, h := range hits[1:] {
		if h.Distance < minimum.Distance {
			minimum = h
		}
	}
	return minimum, true
}
