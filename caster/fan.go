// Package caster computes where rays emitted from a point strike a set of
// line segments and circles.
//
// Everything is brute force: each ray is tested against each shape. Calls
// don't share any state, which makes every ray of a fan independent from the
// others.
package caster

// Sampling defines how the rays of a fan are spread over its field of view.
type Sampling int

const (
	// The rays sample [ViewAngle-FOV/2, ViewAngle+FOV/2): the first ray is
	// on the left edge and the last one stops one step before the right edge.
	SamplingHalfOpen Sampling = iota

	// The rays sample [ViewAngle-FOV/2, ViewAngle+FOV/2] so that the fan is
	// symmetric around ViewAngle.
	SamplingClosed
)

func (s Sampling) String() string {
	switch s {
	case SamplingHalfOpen:
		return "half_open"

	case SamplingClosed:
		return "closed"

	default:
		return "unknown"
	}
}

// Fan describes rays emitted from (X, Y) over a field of view of FOV radians
// centered on ViewAngle.
type Fan struct {
	ViewAngle      float64
	FOV            float64
	RayCount       int
	X              float64
	Y              float64
	MaxLength      float64
	CircleAccuracy float64
	Sampling       Sampling
}

// Angles returns the angle of each ray of the fan, in emission order.
func (f Fan) Angles() []float64 {
	if f.RayCount <= 0 {
		return nil
	}

	angleOffset := f.ViewAngle - f.FOV/2
	angles := make([]float64, f.RayCount)

	for i := range angles {
		switch {
		case f.Sampling == SamplingClosed && f.RayCount == 1:
			angles[i] = f.ViewAngle

		case f.Sampling == SamplingClosed:
			angles[i] = float64(i)/float64(f.RayCount-1)*f.FOV + angleOffset

		default:
			angles[i] = float64(i)/float64(f.RayCount)*f.FOV + angleOffset
		}
	}

	return angles
}

func (f Fan) castRay(angle float64, scene Scene) Ray {
	r := Ray{
		X:         f.X,
		Y:         f.Y,
		Angle:     angle,
		MaxLength: f.MaxLength,
	}

	r.Intersection, r.Faults = Intersect(r, scene, f.CircleAccuracy)
	return r
}

// CastFan casts the rays of the fan against the scene and returns them in
// emission order, each with its closest intersection.
//
// An error is returned only when the fan is invalid. Shapes that can't be
// evaluated are reported within each ray faults.
func CastFan(f Fan, scene Scene) ([]Ray, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	angles := f.Angles()
	rays := make([]Ray, len(angles))
	for i, angle := range angles {
		rays[i] = f.castRay(angle, scene)
	}

	return rays, nil
}
