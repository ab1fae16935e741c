package caster

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	// The geometry can't produce a meaningful answer: zero length segment or
	// non-finite coordinates.
	ErrTypeDegenerateGeometry = "degenerate_geometry"

	// The arguments are out of their domain: negative lengths, non-positive
	// accuracy, empty fan.
	ErrTypeInvalidInput = "invalid_input"

	// The circle refinement ran out of steps before reaching a verdict.
	ErrTypeIterationLimit = "iteration_limit"
)

// Shape identifies the kind of shape a fault originates from.
type Shape string

const (
	ShapeSegment Shape = "segment"
	ShapeCircle  Shape = "circle"
)

// Fault describes a shape that could not be evaluated against a ray. The
// shape is skipped and the other shapes are still evaluated.
type Fault struct {
	Shape Shape
	Index int
	Err   error
}

func (f Fault) Error() string {
	return f.Err.Error()
}

func (f Fault) Unwrap() error {
	return f.Err
}

// Faults is the list of faults met while casting a ray.
type Faults []Fault

// Err returns an error summarizing the faults, or nil when there are none.
func (f Faults) Err() error {
	if len(f) == 0 {
		return nil
	}

	return errors.New("shapes could not be evaluated").
		WithType(errors.Type(f[0].Err)).
		WithTag("fault_count", len(f)).
		WithTag("first_shape", f[0].Shape).
		WithTag("first_index", f[0].Index).
		Wrap(f[0].Err)
}
