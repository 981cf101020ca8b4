package usecase

import (
	"context"
	"sync"
	"time"
)

// sessionCycle is one recording-to-result attempt. The controller holds at
// most one; a superseded cycle keeps running until its context cancellation
// lands, but its state writes are dropped.
type sessionCycle struct {
	id        string
	ctx       context.Context
	cancel    context.CancelFunc
	startedAt time.Time

	mu       sync.Mutex
	progress int
}

// clampProgress enforces the monotonic progress high-water mark for this
// cycle and returns the value to publish.
func (c *sessionCycle) clampProgress(p int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p < c.progress {
		return c.progress
	}
	c.progress = p
	return p
}
