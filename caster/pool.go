package caster

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool casts the rays of a fan on several goroutines. A zero Pool uses one
// worker per CPU.
type Pool struct {
	requested int

	initOnce sync.Once
	threads  int
}

// NewPool returns a pool that runs at most threads workers at once. A
// non-positive value means one worker per CPU.
func NewPool(threads int) *Pool {
	p := &Pool{requested: threads}
	p.Init()
	return p
}

// Init sets up the pool. It is safe to call it multiple times, only the
// first call has an effect.
func (p *Pool) Init() {
	p.initOnce.Do(func() {
		p.threads = p.requested
		if p.threads <= 0 {
			p.threads = runtime.NumCPU()
		}
	})
}

// Threads returns the maximum number of workers.
func (p *Pool) Threads() int {
	p.Init()
	return p.threads
}

// CastFan does the same as the CastFan function with the ray index range
// split between the pool workers. Rays are returned in emission order.
func (p *Pool) CastFan(ctx context.Context, f Fan, scene Scene) ([]Ray, error) {
	p.Init()

	if err := f.Validate(); err != nil {
		return nil, err
	}

	angles := f.Angles()
	rays := make([]Ray, len(angles))
	chunkSize := (len(angles) + p.threads - 1) / p.threads

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.threads)

	for start := 0; start < len(angles); start += chunkSize {
		end := min(start+chunkSize, len(angles))

		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rays[i] = f.castRay(angles[i], scene)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rays, nil
}
