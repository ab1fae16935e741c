package caster

import (
	"math"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestIntersectSegment(t *testing.T) {
	tests := []struct {
		scenario string
		ray      Ray
		segment  Segment
		expected *Intersection
	}{
		{
			scenario: "ray strikes a vertical segment",
			ray:      Ray{X: 0, Y: 0, Angle: 0, MaxLength: 10},
			segment:  Segment{X1: 5, Y1: -5, X2: 5, Y2: 5},
			expected: &Intersection{X: 5, Y: 0, Len: 5},
		},
		{
			scenario: "vertical ray strikes a horizontal segment",
			ray:      Ray{X: 0, Y: 0, Angle: math.Pi / 2, MaxLength: 10},
			segment:  Segment{X1: -5, Y1: 3, X2: 5, Y2: 3},
			expected: &Intersection{X: 0, Y: 3, Len: 3},
		},
		{
			scenario: "diagonal ray strikes a vertical segment",
			ray:      Ray{X: 0, Y: 0, Angle: math.Pi / 4, MaxLength: 10},
			segment:  Segment{X1: 3, Y1: -10, X2: 3, Y2: 10},
			expected: &Intersection{X: 3, Y: 3, Len: 3 * math.Sqrt2},
		},
		{
			scenario: "ray strikes a slanted segment from a shifted origin",
			ray:      Ray{X: 1, Y: 1, Angle: 0, MaxLength: 10},
			segment:  Segment{X1: 2, Y1: 0, X2: 4, Y2: 4},
			expected: &Intersection{X: 2.5, Y: 1, Len: 1.5},
		},
		{
			scenario: "segment endpoint is included",
			ray:      Ray{X: 0, Y: 0, Angle: 0, MaxLength: 10},
			segment:  Segment{X1: 5, Y1: 0, X2: 5, Y2: 5},
			expected: &Intersection{X: 5, Y: 0, Len: 5},
		},
		{
			scenario: "segment behind the ray",
			ray:      Ray{X: 0, Y: 0, Angle: math.Pi, MaxLength: 10},
			segment:  Segment{X1: 5, Y1: -5, X2: 5, Y2: 5},
		},
		{
			scenario: "segment out of reach",
			ray:      Ray{X: 0, Y: 0, Angle: 0, MaxLength: 4},
			segment:  Segment{X1: 5, Y1: -5, X2: 5, Y2: 5},
		},
		{
			scenario: "ray passes beside the segment",
			ray:      Ray{X: 0, Y: 0, Angle: 0, MaxLength: 10},
			segment:  Segment{X1: 5, Y1: 1, X2: 5, Y2: 5},
		},
		{
			scenario: "parallel segment",
			ray:      Ray{X: 0, Y: 0, Angle: 0, MaxLength: 10},
			segment:  Segment{X1: 1, Y1: 1, X2: 5, Y2: 1},
		},
		{
			scenario: "collinear overlapping segment",
			ray:      Ray{X: 0, Y: 0, Angle: 0, MaxLength: 10},
			segment:  Segment{X1: 1, Y1: 0, X2: 5, Y2: 0},
		},
		{
			scenario: "segment touching the origin",
			ray:      Ray{X: 0, Y: 0, Angle: 0, MaxLength: 10},
			segment:  Segment{X1: 0, Y1: -1, X2: 0, Y2: 1},
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			hit, err := IntersectSegment(test.ray, test.segment)
			require.NoError(t, err)

			if test.expected == nil {
				require.Nil(t, hit)
				return
			}

			require.NotNil(t, hit)
			require.InDelta(t, test.expected.X, hit.X, 1e-9)
			require.InDelta(t, test.expected.Y, hit.Y, 1e-9)
			require.InDelta(t, test.expected.Len, hit.Len, 1e-9)
			require.LessOrEqual(t, hit.Len, test.ray.MaxLength)
		})
	}
}

func TestIntersectSegmentErrors(t *testing.T) {
	ray := Ray{X: 0, Y: 0, Angle: 0, MaxLength: 10}

	t.Run("zero length segment", func(t *testing.T) {
		hit, err := IntersectSegment(ray, Segment{X1: 5, Y1: 0, X2: 5, Y2: 0})
		require.Error(t, err)
		require.Nil(t, hit)
		require.Equal(t, ErrTypeDegenerateGeometry, errors.Type(err))
	})

	t.Run("non-finite segment", func(t *testing.T) {
		hit, err := IntersectSegment(ray, Segment{X1: 5, Y1: math.NaN(), X2: 5, Y2: 3})
		require.Error(t, err)
		require.Nil(t, hit)
		require.Equal(t, ErrTypeDegenerateGeometry, errors.Type(err))
	})

	t.Run("non-finite ray", func(t *testing.T) {
		hit, err := IntersectSegment(Ray{Angle: math.Inf(1), MaxLength: 10}, Segment{X1: 5, Y1: -5, X2: 5, Y2: 5})
		require.Error(t, err)
		require.Nil(t, hit)
		require.Equal(t, ErrTypeDegenerateGeometry, errors.Type(err))
	})

	t.Run("negative ray length", func(t *testing.T) {
		hit, err := IntersectSegment(Ray{MaxLength: -1}, Segment{X1: 5, Y1: -5, X2: 5, Y2: 5})
		require.Error(t, err)
		require.Nil(t, hit)
		require.Equal(t, ErrTypeInvalidInput, errors.Type(err))
	})
}
