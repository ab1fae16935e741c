package caster

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Validate reports whether the ray can be cast. The returned error has the
// ErrTypeDegenerateGeometry or ErrTypeInvalidInput type.
func (r Ray) Validate() error {
	if !isFinite(r.X, r.Y, r.Angle, r.MaxLength) {
		return errors.New("ray is not finite").
			WithType(ErrTypeDegenerateGeometry).
			WithTag("x", r.X).
			WithTag("y", r.Y).
			WithTag("angle", r.Angle).
			WithTag("max_length", r.MaxLength)
	}

	if r.MaxLength < 0 {
		return errors.New("negative ray length").
			WithType(ErrTypeInvalidInput).
			WithTag("max_length", r.MaxLength)
	}

	return nil
}

// ValidateAccuracy reports whether accuracy can be used to refine circle
// intersections.
func ValidateAccuracy(accuracy float64) error {
	if !isFinite(accuracy) || accuracy <= 0 {
		return errors.New("circle accuracy must be positive").
			WithType(ErrTypeInvalidInput).
			WithTag("accuracy", accuracy)
	}
	return nil
}

// Validate reports whether the fan can be cast. Any returned error has the
// ErrTypeInvalidInput type.
func (f Fan) Validate() error {
	if f.RayCount <= 0 {
		return errors.New("ray count must be positive").
			WithType(ErrTypeInvalidInput).
			WithTag("ray_count", f.RayCount)
	}

	if !isFinite(f.ViewAngle, f.FOV, f.X, f.Y, f.MaxLength) {
		return errors.New("fan is not finite").
			WithType(ErrTypeInvalidInput).
			WithTag("view_angle", f.ViewAngle).
			WithTag("fov", f.FOV).
			WithTag("x", f.X).
			WithTag("y", f.Y).
			WithTag("max_length", f.MaxLength)
	}

	if f.MaxLength < 0 {
		return errors.New("negative ray length").
			WithType(ErrTypeInvalidInput).
			WithTag("max_length", f.MaxLength)
	}

	if f.Sampling != SamplingHalfOpen && f.Sampling != SamplingClosed {
		return errors.New("unknown sampling").
			WithType(ErrTypeInvalidInput).
			WithTag("sampling", f.Sampling)
	}

	return ValidateAccuracy(f.CircleAccuracy)
}
