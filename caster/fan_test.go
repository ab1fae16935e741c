package caster

import (
	"math"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFanAngles(t *testing.T) {
	t.Run("half open sampling", func(t *testing.T) {
		fan := Fan{ViewAngle: 1, FOV: 0.5, RayCount: 5}

		angles := fan.Angles()
		require.Len(t, angles, 5)
		require.Equal(t, fan.ViewAngle-fan.FOV/2, angles[0])
		require.InDelta(t, fan.ViewAngle-fan.FOV/2+fan.FOV*4/5, angles[4], 1e-12)
		require.Less(t, angles[4], fan.ViewAngle+fan.FOV/2)

		for i := 1; i < len(angles); i++ {
			require.InDelta(t, fan.FOV/5, angles[i]-angles[i-1], 1e-12)
		}
	})

	t.Run("closed sampling", func(t *testing.T) {
		fan := Fan{ViewAngle: 1, FOV: 0.5, RayCount: 5, Sampling: SamplingClosed}

		angles := fan.Angles()
		require.Len(t, angles, 5)
		require.InDelta(t, fan.ViewAngle-fan.FOV/2, angles[0], 1e-12)
		require.InDelta(t, fan.ViewAngle+fan.FOV/2, angles[4], 1e-12)
		require.InDelta(t, fan.ViewAngle, angles[2], 1e-12)

		for i := range angles {
			require.InDelta(t, fan.ViewAngle-angles[i], angles[len(angles)-1-i]-fan.ViewAngle, 1e-12)
		}
	})

	t.Run("single ray without field of view", func(t *testing.T) {
		for _, sampling := range []Sampling{SamplingHalfOpen, SamplingClosed} {
			fan := Fan{ViewAngle: 0.3, FOV: 0, RayCount: 1, Sampling: sampling}
			require.Equal(t, []float64{0.3}, fan.Angles())
		}
	})

	t.Run("empty fan", func(t *testing.T) {
		require.Empty(t, Fan{}.Angles())
	})
}

func TestFanValidate(t *testing.T) {
	valid := Fan{RayCount: 3, FOV: 1, MaxLength: 10, CircleAccuracy: 0.01}
	require.NoError(t, valid.Validate())

	tests := []struct {
		scenario string
		update   func(f *Fan)
	}{
		{
			scenario: "no rays",
			update:   func(f *Fan) { f.RayCount = 0 },
		},
		{
			scenario: "negative ray length",
			update:   func(f *Fan) { f.MaxLength = -1 },
		},
		{
			scenario: "zero accuracy",
			update:   func(f *Fan) { f.CircleAccuracy = 0 },
		},
		{
			scenario: "non-finite view angle",
			update:   func(f *Fan) { f.ViewAngle = math.NaN() },
		},
		{
			scenario: "unknown sampling",
			update:   func(f *Fan) { f.Sampling = 42 },
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			fan := valid
			test.update(&fan)

			err := fan.Validate()
			require.Error(t, err)
			require.Equal(t, ErrTypeInvalidInput, errors.Type(err))

			rays, err := CastFan(fan, Scene{})
			require.Error(t, err)
			require.Nil(t, rays)
		})
	}
}

func TestCastFan(t *testing.T) {
	wall := Scene{
		Segments: []Segment{{X1: 5, Y1: -10, X2: 5, Y2: 10}},
	}

	t.Run("every ray strikes the wall", func(t *testing.T) {
		fan := Fan{ViewAngle: 0, FOV: math.Pi / 2, RayCount: 8, MaxLength: 20, CircleAccuracy: 0.01}

		rays, err := CastFan(fan, wall)
		require.NoError(t, err)
		require.Len(t, rays, 8)

		angles := fan.Angles()
		for i, r := range rays {
			require.Equal(t, angles[i], r.Angle)
			require.Zero(t, r.X)
			require.Zero(t, r.Y)
			require.Empty(t, r.Faults)
			require.NotNil(t, r.Intersection)
			require.InDelta(t, 5, r.Intersection.X, 1e-9)
			require.InDelta(t, 5/math.Cos(r.Angle), r.Intersection.Len, 1e-9)
		}
	})

	t.Run("fan looking away from the shapes", func(t *testing.T) {
		scene := Scene{
			Segments: wall.Segments,
			Circles:  []Circle{{X: 10, Y: 0, Radius: 2}},
		}
		fan := Fan{ViewAngle: math.Pi, FOV: math.Pi / 2, RayCount: 16, MaxLength: 20, CircleAccuracy: 0.01}

		rays, err := CastFan(fan, scene)
		require.NoError(t, err)
		require.Len(t, rays, 16)
		for _, r := range rays {
			require.Nil(t, r.Intersection)
		}
	})

	t.Run("single ray", func(t *testing.T) {
		fan := Fan{ViewAngle: 0, FOV: 0, RayCount: 1, MaxLength: 20, CircleAccuracy: 0.01}

		rays, err := CastFan(fan, Scene{Circles: []Circle{{X: 10, Y: 0, Radius: 2}}})
		require.NoError(t, err)
		require.Len(t, rays, 1)
		require.Equal(t, float64(0), rays[0].Angle)
		require.NotNil(t, rays[0].Intersection)
		require.InDelta(t, 8, rays[0].Intersection.Len, 0.01)
	})

	t.Run("faults are attached to each ray", func(t *testing.T) {
		scene := Scene{
			Segments: append([]Segment{{X1: 1, Y1: 1, X2: 1, Y2: 1}}, wall.Segments...),
		}
		fan := Fan{ViewAngle: 0, FOV: 0.5, RayCount: 4, MaxLength: 20, CircleAccuracy: 0.01}

		rays, err := CastFan(fan, scene)
		require.NoError(t, err)
		for _, r := range rays {
			require.Len(t, r.Faults, 1)
			require.NotNil(t, r.Intersection)
		}
	})
}
