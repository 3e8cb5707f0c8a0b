package executor

import "context"

// pool bounds the number of node attempts in flight. One pool is created per
// run, so a failed run can never leak slots into the next.
type pool struct {
	sem chan struct{}
}

func newPool(size int) *pool {
	return &pool{sem: make(chan struct{}, size)}
}

// acquire blocks until a slot frees up or ctx ends.
func (p *pool) acquire(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pool) release() {
	<-p.sem
}
