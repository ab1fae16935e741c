package models

import "sync"

// RequestIDGenerator hands out request ids to requests that don't carry one.
// Generated ids are never zero since zero means "no request id" on the wire.
type RequestIDGenerator struct {
	mutex     sync.Mutex
	currentID uint32
}

// New returns the next request id.
func (g *RequestIDGenerator) New() uint32 {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.currentID++
	if g.currentID == 0 {
		g.currentID++
	}
	return g.currentID
}

// Ensure returns id when it is set, otherwise a newly generated one.
func (g *RequestIDGenerator) Ensure(id uint32) uint32 {
	if id != 0 {
		return id
	}
	return g.New()
}
