package models

import (
	"github.com/aukilabs/caster/caster"
)

// CastResponse holds the rays of a cast fan in emission order.
type CastResponse struct {
	RequestID  uint32       `json:"request_id"`
	Rays       []caster.Ray `json:"rays"`
	FaultCount int          `json:"fault_count"`
}

// Hits returns the number of rays that struck a shape.
func (r CastResponse) Hits() int {
	var hits int
	for _, ray := range r.Rays {
		if ray.Intersection != nil {
			hits++
		}
	}
	return hits
}

type IntersectResponse struct {
	RequestID    uint32               `json:"request_id"`
	Intersection *caster.Intersection `json:"intersection"`
	FaultCount   int                  `json:"fault_count"`
}

// ErrorResponse describes why a request failed.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
