package models

import (
	"github.com/aukilabs/caster/caster"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// CastRequest is a request to cast a fan of rays against a scene.
//
// Segments are encoded as [x1, y1, x2, y2] and circles as [x, y, radius].
type CastRequest struct {
	RequestID      uint32       `json:"request_id,omitempty"`
	ViewAngle      float64      `json:"view_angle"`
	FOV            float64      `json:"fov"`
	RayCount       int          `json:"ray_count"`
	OriginX        float64      `json:"origin_x"`
	OriginY        float64      `json:"origin_y"`
	MaxLength      float64      `json:"max_length"`
	Segments       [][4]float64 `json:"segments,omitempty"`
	Circles        [][3]float64 `json:"circles,omitempty"`
	CircleAccuracy float64      `json:"circle_accuracy"`
	Sampling       string       `json:"sampling,omitempty"`
}

// Fan returns the fan described by the request. An empty sampling falls back
// to defaultSampling.
func (r CastRequest) Fan(defaultSampling caster.Sampling) (caster.Fan, error) {
	sampling := defaultSampling
	if r.Sampling != "" {
		s, err := ParseSampling(r.Sampling)
		if err != nil {
			return caster.Fan{}, err
		}
		sampling = s
	}

	return caster.Fan{
		ViewAngle:      r.ViewAngle,
		FOV:            r.FOV,
		RayCount:       r.RayCount,
		X:              r.OriginX,
		Y:              r.OriginY,
		MaxLength:      r.MaxLength,
		CircleAccuracy: r.CircleAccuracy,
		Sampling:       sampling,
	}, nil
}

func (r CastRequest) Scene() caster.Scene {
	return newScene(r.Segments, r.Circles)
}

// IntersectRequest is a request to find where a single ray strikes a scene.
type IntersectRequest struct {
	RequestID      uint32       `json:"request_id,omitempty"`
	X              float64      `json:"x"`
	Y              float64      `json:"y"`
	Angle          float64      `json:"angle"`
	MaxLength      float64      `json:"max_length"`
	Segments       [][4]float64 `json:"segments,omitempty"`
	Circles        [][3]float64 `json:"circles,omitempty"`
	CircleAccuracy float64      `json:"circle_accuracy"`
}

func (r IntersectRequest) Ray() caster.Ray {
	return caster.Ray{
		X:         r.X,
		Y:         r.Y,
		Angle:     r.Angle,
		MaxLength: r.MaxLength,
	}
}

func (r IntersectRequest) Scene() caster.Scene {
	return newScene(r.Segments, r.Circles)
}

// ParseSampling returns the sampling named s.
func ParseSampling(s string) (caster.Sampling, error) {
	for _, sampling := range []caster.Sampling{caster.SamplingHalfOpen, caster.SamplingClosed} {
		if sampling.String() == s {
			return sampling, nil
		}
	}

	return 0, errors.New("unknown sampling").
		WithType(caster.ErrTypeInvalidInput).
		WithTag("sampling", s)
}

func newScene(segments [][4]float64, circles [][3]float64) caster.Scene {
	scene := caster.Scene{
		Segments: make([]caster.Segment, len(segments)),
		Circles:  make([]caster.Circle, len(circles)),
	}

	for i, s := range segments {
		scene.Segments[i] = caster.Segment{X1: s[0], Y1: s[1], X2: s[2], Y2: s[3]}
	}

	for i, c := range circles {
		scene.Circles[i] = caster.Circle{X: c[0], Y: c[1], Radius: c[2]}
	}

	return scene
}
