package caster

import "gonum.org/v1/gonum/spatial/r2"

// Point is a position in the plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Intersection is the place where a ray strikes a shape. Len is the distance
// between the ray origin and the hit point.
type Intersection struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Len float64 `json:"len"`
}

// Point returns the hit point.
func (i Intersection) Point() Point {
	return Point{X: i.X, Y: i.Y}
}

// Ray is a half line starting at (X, Y), oriented by Angle (radians) and
// limited to MaxLength.
//
// Rays produced by a fan carry their nearest Intersection, nil when nothing
// was hit, and the faults met while evaluating the scene.
type Ray struct {
	X            float64       `json:"x"`
	Y            float64       `json:"y"`
	Angle        float64       `json:"angle"`
	MaxLength    float64       `json:"-"`
	Intersection *Intersection `json:"intersection"`
	Faults       Faults        `json:"-"`
}

func (r Ray) origin() r2.Vec {
	return r2.Vec{X: r.X, Y: r.Y}
}

// Segment is a line segment going from (X1, Y1) to (X2, Y2).
type Segment struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

func (s Segment) endpoints() (r2.Vec, r2.Vec) {
	return r2.Vec{X: s.X1, Y: s.Y1}, r2.Vec{X: s.X2, Y: s.Y2}
}

// Circle is a circle centered on (X, Y).
type Circle struct {
	X      float64
	Y      float64
	Radius float64
}

func (c Circle) center() r2.Vec {
	return r2.Vec{X: c.X, Y: c.Y}
}

// Scene is the set of shapes rays are cast against. A scene is owned by the
// caller and is never modified.
type Scene struct {
	Segments []Segment
	Circles  []Circle
}

// Shapes returns the number of shapes within the scene.
func (s Scene) Shapes() int {
	return len(s.Segments) + len(s.Circles)
}
