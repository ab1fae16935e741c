package caster

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"
)

// IntersectSegment returns where the ray strikes the segment, or nil when it
// doesn't within r.MaxLength.
//
// A ray parallel to the segment never strikes it, even when both are
// collinear and overlap.
func IntersectSegment(r Ray, s Segment) (*Intersection, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if !isFinite(s.X1, s.Y1, s.X2, s.Y2) {
		return nil, errors.New("segment is not finite").
			WithType(ErrTypeDegenerateGeometry).
			WithTag("segment", s)
	}

	start, end := s.endpoints()
	edge := r2.Sub(end, start)
	edgeLen := r2.Norm(edge)
	if edgeLen == 0 {
		return nil, errors.New("segment has no length").
			WithType(ErrTypeDegenerateGeometry).
			WithTag("segment", s)
	}

	origin := r.origin()
	dir := direction(r.Angle)

	hit, ok := lineThrough(origin, dir).intersect(lineThrough(start, edge), parallelEpsilon*edgeLen)
	if !ok {
		return nil, nil
	}

	if !InRangeWithEpsilon(hit.X, math.Min(s.X1, s.X2), math.Max(s.X1, s.X2), boundsEpsilon) ||
		!InRangeWithEpsilon(hit.Y, math.Min(s.Y1, s.Y2), math.Max(s.Y1, s.Y2), boundsEpsilon) {
		return nil, nil
	}

	length := VectorLen(origin.X, origin.Y, hit.X, hit.Y)
	if length > r.MaxLength {
		return nil, nil
	}

	// A hit on the origin has no direction.
	if length == 0 {
		return nil, nil
	}

	rayEnd := r2.Add(origin, r2.Scale(r.MaxLength, dir))
	if cos := VectorsCos(origin.X, origin.Y, rayEnd.X, rayEnd.Y, hit.X, hit.Y, r.MaxLength, length); cos <= 0 {
		return nil, nil
	}

	return &Intersection{
		X:   hit.X,
		Y:   hit.Y,
		Len: length,
	}, nil
}
