package caster

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// Tolerance applied to the segment bounding box test so that axis aligned
	// segments are not rejected by rounding.
	boundsEpsilon = 1e-9

	// Relative tolerance under which a ray and a segment are considered
	// parallel.
	parallelEpsilon = 1e-12
)

func EqualWithEpsilon(a float64, b float64, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

func InRangeWithEpsilon(value float64, min float64, max float64, epsilon float64) bool {
	return value+epsilon >= min && value-epsilon <= max
}

// VectorLen returns the euclidean distance between (x1, y1) and (x2, y2).
func VectorLen(x1, y1, x2, y2 float64) float64 {
	return r2.Norm(r2.Sub(r2.Vec{X: x1, Y: y1}, r2.Vec{X: x2, Y: y2}))
}

// VectorsCos returns the cosine of the angle between the vectors going from
// (x, y) to (x1, y1) and from (x, y) to (x2, y2). len1 and len2 are the
// lengths of these vectors.
func VectorsCos(x, y, x1, y1, x2, y2, len1, len2 float64) float64 {
	origin := r2.Vec{X: x, Y: y}
	a := r2.Sub(r2.Vec{X: x1, Y: y1}, origin)
	b := r2.Sub(r2.Vec{X: x2, Y: y2}, origin)
	return r2.Dot(a, b) / (len1 * len2)
}

func direction(angle float64) r2.Vec {
	return r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
}

func isFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// line is an infinite line in general form: a·x + b·y = c.
type line struct {
	a float64
	b float64
	c float64
}

// lineThrough returns the line passing through p along dir.
func lineThrough(p r2.Vec, dir r2.Vec) line {
	a, b := dir.Y, -dir.X
	return line{
		a: a,
		b: b,
		c: a*p.X + b*p.Y,
	}
}

// intersect returns the point where both lines cross. ok is false when the
// lines are parallel or coincide, which is decided by comparing the
// determinant with epsilon.
func (l line) intersect(o line, epsilon float64) (p r2.Vec, ok bool) {
	det := l.a*o.b - o.a*l.b
	if det == 0 || math.Abs(det) <= epsilon {
		return r2.Vec{}, false
	}

	return r2.Vec{
		X: (l.c*o.b - o.c*l.b) / det,
		Y: (l.a*o.c - o.a*l.c) / det,
	}, true
}
