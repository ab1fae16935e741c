package models

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/aukilabs/caster/caster"
	"github.com/aukilabs/caster/featureflag"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Caster runs cast and intersect requests.
type Caster interface {
	Cast(ctx context.Context, req CastRequest) (CastResponse, error)
	Intersect(ctx context.Context, req IntersectRequest) (IntersectResponse, error)
}

// Engine runs cast and intersect requests against the caster.
type Engine struct {
	// The pool used to cast fans. Fans are cast on the calling goroutine when
	// nil.
	Pool *caster.Pool

	FeatureFlags featureflag.FeatureFlag

	// The maximum number of rays in a fan. Zero means no limit.
	MaxRayCount int

	// The maximum number of shapes in a scene. Zero means no limit.
	MaxShapes int

	requestIDs RequestIDGenerator
}

// Cast casts the fan described by the request. Requests without a request id
// get one.
func (e *Engine) Cast(ctx context.Context, req CastRequest) (CastResponse, error) {
	start := time.Now()
	req.RequestID = e.requestIDs.Ensure(req.RequestID)

	rays, err := e.castFan(ctx, req)
	if err != nil {
		instrumentError(methodCast, err)
		return CastResponse{}, err
	}

	res := CastResponse{
		RequestID: req.RequestID,
		Rays:      rays,
	}

	for i, r := range rays {
		res.FaultCount += len(r.Faults)
		e.reportFaults(methodCast, req.RequestID, i, r.Faults)
	}

	instrumentRays(methodCast, len(rays), res.Hits(), time.Since(start))
	return res, nil
}

func (e *Engine) castFan(ctx context.Context, req CastRequest) ([]caster.Ray, error) {
	defaultSampling := caster.SamplingHalfOpen
	e.FeatureFlags.IfSet(featureflag.FlagSymmetricFan, func() {
		defaultSampling = caster.SamplingClosed
	})

	fan, err := req.Fan(defaultSampling)
	if err != nil {
		return nil, err
	}

	if e.MaxRayCount > 0 && fan.RayCount > e.MaxRayCount {
		return nil, errors.New("too many rays").
			WithType(caster.ErrTypeInvalidInput).
			WithTag("ray_count", fan.RayCount).
			WithTag("max_ray_count", e.MaxRayCount)
	}

	scene := req.Scene()
	if err := e.checkShapes(scene); err != nil {
		return nil, err
	}

	if e.Pool == nil || e.FeatureFlags.IsSet(featureflag.FlagSequentialCast) {
		return caster.CastFan(fan, scene)
	}
	return e.Pool.CastFan(ctx, fan, scene)
}

// Intersect casts the single ray described by the request.
func (e *Engine) Intersect(ctx context.Context, req IntersectRequest) (IntersectResponse, error) {
	start := time.Now()
	req.RequestID = e.requestIDs.Ensure(req.RequestID)

	r := req.Ray()
	scene := req.Scene()

	err := r.Validate()
	if err == nil {
		err = caster.ValidateAccuracy(req.CircleAccuracy)
	}
	if err == nil {
		err = e.checkShapes(scene)
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		instrumentError(methodIntersect, err)
		return IntersectResponse{}, err
	}

	hit, faults := caster.Intersect(r, scene, req.CircleAccuracy)
	e.reportFaults(methodIntersect, req.RequestID, 0, faults)

	var hits int
	if hit != nil {
		hits = 1
	}
	instrumentRays(methodIntersect, 1, hits, time.Since(start))

	return IntersectResponse{
		RequestID:    req.RequestID,
		Intersection: hit,
		FaultCount:   len(faults),
	}, nil
}

func (e *Engine) checkShapes(scene caster.Scene) error {
	if e.MaxShapes > 0 && scene.Shapes() > e.MaxShapes {
		return errors.New("too many shapes").
			WithType(caster.ErrTypeInvalidInput).
			WithTag("shapes", scene.Shapes()).
			WithTag("max_shapes", e.MaxShapes)
	}
	return nil
}

func (e *Engine) reportFaults(method string, requestID uint32, rayIndex int, faults caster.Faults) {
	if len(faults) == 0 {
		return
	}

	instrumentFaults(faults)

	e.FeatureFlags.IfNotSet(featureflag.FlagDisableFaultLogs, func() {
		logs.WithTag("method", method).
			WithTag("request_id", requestID).
			WithTag("ray_index", rayIndex).
			Debug(faults.Err())
	})
}

// IsClientError reports whether err was caused by the content of a request.
func IsClientError(err error) bool {
	return errors.IsType(err, caster.ErrTypeInvalidInput) ||
		errors.IsType(err, caster.ErrTypeDegenerateGeometry) ||
		errors.IsType(err, ErrTypeMsgDecode)
}

// ErrorCode returns the code reported to clients for err.
func ErrorCode(err error) string {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return "canceled"

	case IsClientError(err):
		return errors.Type(err)

	default:
		return "internal_server_error"
	}
}
