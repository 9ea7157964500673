package runtime

import (
	"sync"
	"sync/atomic"

	halcyon "github.com/halcyondb/halcyon-go"
	"github.com/halcyondb/halcyon-go/errors"
)

// The native runtime supports at most one live instance per process.
// The slot enforces that: Start acquires it, reaching a terminal state
// releases it. Holding is tracked here rather than in the Runtime so a
// leaked Runtime cannot wedge the process.
var slot struct {
	mu    sync.Mutex
	owner *Runtime
}

func acquireSlot(r *Runtime) error {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.owner != nil {
		return errors.AlreadyRunning()
	}
	slot.owner = r
	return nil
}

// releaseSlot is idempotent and only releases the caller's own hold.
func releaseSlot(r *Runtime) {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.owner == r {
		slot.owner = nil
	}
}

// tokenCounter issues correlation tokens for completion callbacks. Tokens
// are process-unique and never reused, so a callback delivered late from an
// earlier call can always be told apart from the one being awaited.
var tokenCounter atomic.Uint64

func nextToken() halcyon.Token {
	return halcyon.Token(tokenCounter.Add(1))
}
