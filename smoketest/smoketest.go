package smoketest

import (
	"context"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/aukilabs/caster/caster"
	"github.com/aukilabs/caster/models"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	httpcmn "github.com/aukilabs/hagall-common/http"
	"github.com/segmentio/encoding/json"
)

const (
	// A smoke test scenario returned an unexpected result.
	ErrTypeUnexpectedResult = "unexpected_result"

	defaultTimeout = time.Second * 5
)

// Scenario is a known cast with a known outcome.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, c models.Caster) error
}

// Scenarios returns the scenarios run by the smoke test.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name: "segment_hit",
			Run: func(ctx context.Context, c models.Caster) error {
				res, err := c.Intersect(ctx, models.IntersectRequest{
					MaxLength:      10,
					Segments:       [][4]float64{{5, -5, 5, 5}},
					CircleAccuracy: 0.01,
				})
				if err != nil {
					return err
				}
				return expectHit(res.Intersection, 5, 1e-9)
			},
		},
		{
			Name: "circle_hit",
			Run: func(ctx context.Context, c models.Caster) error {
				res, err := c.Intersect(ctx, models.IntersectRequest{
					MaxLength:      20,
					Circles:        [][3]float64{{10, 0, 2}},
					CircleAccuracy: 0.01,
				})
				if err != nil {
					return err
				}
				return expectHit(res.Intersection, 8, 0.01)
			},
		},
		{
			Name: "shapes_behind",
			Run: func(ctx context.Context, c models.Caster) error {
				res, err := c.Cast(ctx, models.CastRequest{
					ViewAngle:      math.Pi,
					FOV:            math.Pi / 2,
					RayCount:       16,
					MaxLength:      20,
					Segments:       [][4]float64{{5, -5, 5, 5}},
					Circles:        [][3]float64{{10, 0, 2}},
					CircleAccuracy: 0.01,
				})
				if err != nil {
					return err
				}

				for i, r := range res.Rays {
					if r.Intersection != nil {
						return errors.New("ray struck a shape behind it").
							WithType(ErrTypeUnexpectedResult).
							WithTag("ray_index", i).
							WithTag("intersection", r.Intersection)
					}
				}
				return nil
			},
		},
		{
			Name: "closest_segment",
			Run: func(ctx context.Context, c models.Caster) error {
				segments := [][4]float64{{3, -1, 3, 1}, {7, -1, 7, 1}}

				for _, s := range [][][4]float64{segments, {segments[1], segments[0]}} {
					res, err := c.Intersect(ctx, models.IntersectRequest{
						MaxLength:      10,
						Segments:       s,
						CircleAccuracy: 0.01,
					})
					if err != nil {
						return err
					}

					if err := expectHit(res.Intersection, 3, 1e-9); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name: "single_ray_fan",
			Run: func(ctx context.Context, c models.Caster) error {
				res, err := c.Cast(ctx, models.CastRequest{
					ViewAngle:      0.3,
					FOV:            0,
					RayCount:       1,
					MaxLength:      10,
					CircleAccuracy: 0.01,
				})
				if err != nil {
					return err
				}

				if len(res.Rays) != 1 || res.Rays[0].Angle != 0.3 {
					return errors.New("single ray is not cast at the view angle").
						WithType(ErrTypeUnexpectedResult).
						WithTag("rays", res.Rays)
				}
				return nil
			},
		},
	}
}

func expectHit(hit *caster.Intersection, length, tolerance float64) error {
	if hit == nil {
		return errors.New("no intersection").
			WithType(ErrTypeUnexpectedResult).
			WithTag("expected_len", length)
	}

	if math.Abs(hit.Len-length) > tolerance {
		return errors.New("unexpected intersection length").
			WithType(ErrTypeUnexpectedResult).
			WithTag("expected_len", length).
			WithTag("len", hit.Len)
	}
	return nil
}

// Result is the outcome of a scenario.
type Result struct {
	Scenario        string  `json:"scenario"`
	Passed          bool    `json:"passed"`
	Error           string  `json:"error,omitempty"`
	LatencyMilliSec float64 `json:"latency_ms"`
}

type Results struct {
	Passed    bool      `json:"passed"`
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

// Run runs the scenarios against the caster.
func Run(ctx context.Context, c models.Caster, scenarios ...Scenario) Results {
	res := Results{
		Passed:    true,
		StartedAt: time.Now(),
		Results:   make([]Result, 0, len(scenarios)),
	}

	for _, s := range scenarios {
		start := time.Now()
		err := s.Run(ctx, c)

		result := Result{
			Scenario:        s.Name,
			Passed:          err == nil,
			LatencyMilliSec: float64(time.Since(start).Microseconds()) / 1000,
		}
		if err != nil {
			result.Error = err.Error()
			res.Passed = false
		}
		res.Results = append(res.Results, result)
	}

	return res
}

// Readiness reports whether the last smoke test passed.
type Readiness struct {
	passed atomic.Bool
}

func (r *Readiness) Ready() bool {
	return r.passed.Load()
}

func (r *Readiness) Set(res Results) {
	r.passed.Store(res.Passed)
}

type Options struct {
	// The caster the scenarios are run against.
	Caster models.Caster

	// The maximum duration of a smoke test. Defaults to 5s.
	Timeout time.Duration

	// Updated with the result of each smoke test when set.
	Readiness *Readiness

	// Called with the result of each smoke test when set.
	SendResult func(context.Context, Results) error
}

// RunWithOptions runs the smoke test scenarios and reports their results.
func RunWithOptions(ctx context.Context, opts Options) Results {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := Run(ctx, opts.Caster, Scenarios()...)

	if opts.Readiness != nil {
		opts.Readiness.Set(res)
	}

	entry := logs.WithTag("passed", res.Passed).
		WithTag("scenarios", len(res.Results))
	if res.Passed {
		entry.Info("smoke test passed")
	} else {
		entry.WithTag("results", res.Results).Warn(errors.New("smoke test failed"))
	}

	if opts.SendResult != nil {
		if err := opts.SendResult(ctx, res); err != nil {
			logs.Warn(errors.New("sending smoke test result failed").Wrap(err))
		}
	}

	return res
}

// HandleSmokeTest runs the smoke test and responds with its results. The
// status code is 200 when every scenario passed, 500 otherwise.
func HandleSmokeTest(ctx context.Context, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		res := RunWithOptions(ctx, opts)

		b, err := json.Marshal(res)
		if err != nil {
			httpcmn.InternalServerError(w, errors.New("encoding smoke test results failed").Wrap(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if res.Passed {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
		w.Write(b)
	}
}
