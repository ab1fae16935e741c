package caster

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"
)

// MaxCircleSteps is the maximum number of refinement steps made toward a
// circle for a single ray.
const MaxCircleSteps = 4096

// IntersectCircle marches along the ray toward the circle surface and
// returns the first point closer than accuracy to it, or nil when the ray
// leaves its length before that.
//
// Each step advances by the current distance to the surface, which never
// overshoots it. The returned point is the marching point, not the exact
// surface point, and its Len is initialLen plus the marched distance.
func IntersectCircle(r Ray, c Circle, accuracy float64, initialLen float64) (*Intersection, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if err := ValidateAccuracy(accuracy); err != nil {
		return nil, err
	}

	if !isFinite(c.X, c.Y, c.Radius) {
		return nil, errors.New("circle is not finite").
			WithType(ErrTypeDegenerateGeometry).
			WithTag("circle", c)
	}

	if c.Radius < 0 {
		return nil, errors.New("negative circle radius").
			WithType(ErrTypeInvalidInput).
			WithTag("circle", c)
	}

	if !isFinite(initialLen) || initialLen < 0 {
		return nil, errors.New("invalid initial length").
			WithType(ErrTypeInvalidInput).
			WithTag("initial_len", initialLen)
	}

	center := c.center()
	dir := direction(r.Angle)
	current := r.origin()
	length := initialLen

	steps := circleSteps(r.MaxLength-initialLen, accuracy)
	for i := 0; i < steps; i++ {
		if length > r.MaxLength {
			return nil, nil
		}

		toSurface := math.Abs(r2.Norm(r2.Sub(current, center)) - c.Radius)
		if toSurface <= accuracy {
			return &Intersection{
				X:   current.X,
				Y:   current.Y,
				Len: length,
			}, nil
		}

		current = r2.Add(current, r2.Scale(toSurface, dir))
		length += toSurface
	}

	if length > r.MaxLength {
		return nil, nil
	}

	return nil, errors.New("circle refinement did not converge").
		WithType(ErrTypeIterationLimit).
		WithTag("circle", c).
		WithTag("steps", steps).
		WithTag("len", length)
}

// circleSteps returns the number of steps needed to march distance when each
// step advances by more than accuracy, capped to MaxCircleSteps.
func circleSteps(distance float64, accuracy float64) int {
	steps := math.Ceil(distance/accuracy) + 2
	switch {
	case steps < 1:
		return 1

	case steps > MaxCircleSteps:
		return MaxCircleSteps

	default:
		return int(steps)
	}
}
