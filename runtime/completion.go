package runtime

import (
	"context"
	"sync"
	"time"

	halcyon "github.com/halcyondb/halcyon-go"
	"github.com/halcyondb/halcyon-go/errors"
	"github.com/halcyondb/halcyon-go/ffi"
)

// completion is a signal-once future for one asynchronous boundary call.
// The library may deliver the callback from any goroutine, before, during
// or after the caller starts waiting; all three orderings resolve the same
// way. A second delivery is ignored.
type completion struct {
	done chan struct{}
	once sync.Once

	// Written exactly once before done is closed.
	wire ffi.WireError
	db   halcyon.Database
	err  error
}

func newCompletion() *completion {
	return &completion{done: make(chan struct{})}
}

// resolve records the outcome and wakes the waiter. Safe to call more than
// once; only the first call wins.
func (c *completion) resolve(wire ffi.WireError, db halcyon.Database, err error) {
	c.once.Do(func() {
		c.wire = wire
		c.db = db
		c.err = err
		close(c.done)
	})
}

// await blocks until the completion resolves, the deadline expires or ctx
// is done. A deadline expiry is a distinct timeout failure, never confused
// with a native error; the native call may still complete later and its
// late callback is discarded by the token check.
func (c *completion) await(ctx context.Context, op string, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.done:
		if c.err != nil {
			return c.err
		}
		return c.wire.Err()
	case <-timer.C:
		return errors.Timeout(op, timeout.Milliseconds())
	case <-ctx.Done():
		return errors.Wrap(errors.PhaseLifecycle, errors.KindTimeout, ctx.Err(), op+" abandoned")
	}
}
