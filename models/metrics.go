package models

import (
	"time"

	"github.com/aukilabs/caster/caster"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	methodLabel    = "method"
	errTypeLabel   = "error_type"
	shapeTypeLabel = "shape_type"

	methodCast      = "cast"
	methodIntersect = "intersect"
)

var (
	castRays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caster_rays_total",
		Help: "The total number of cast rays.",
	}, []string{methodLabel})

	castHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caster_hits_total",
		Help: "The total number of rays that struck a shape.",
	}, []string{methodLabel})

	castFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caster_faults_total",
		Help: "The total number of shapes that could not be evaluated against a ray.",
	}, []string{
		shapeTypeLabel,
		errTypeLabel,
	})

	castErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caster_errors_total",
		Help: "The total number of rejected requests.",
	}, []string{
		methodLabel,
		errTypeLabel,
	})

	castLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "caster_latency",
		Help: "The time to process a request.",
	}, []string{methodLabel})
)

func instrumentRays(method string, rays, hits int, duration time.Duration) {
	castRays.
		With(prometheus.Labels{methodLabel: method}).
		Add(float64(rays))

	castHits.
		With(prometheus.Labels{methodLabel: method}).
		Add(float64(hits))

	castLatency.
		With(prometheus.Labels{methodLabel: method}).
		Observe(duration.Seconds())
}

func instrumentFaults(faults caster.Faults) {
	for _, f := range faults {
		castFaults.
			With(prometheus.Labels{
				shapeTypeLabel: string(f.Shape),
				errTypeLabel:   errors.Type(f.Err),
			}).
			Inc()
	}
}

func instrumentError(method string, err error) {
	castErrors.
		With(prometheus.Labels{
			methodLabel:  method,
			errTypeLabel: errors.Type(err),
		}).
		Inc()
}
