package runtime

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	halcyon "github.com/halcyondb/halcyon-go"
	"github.com/halcyondb/halcyon-go/errors"
	"github.com/halcyondb/halcyon-go/ffi"
)

// Runtime drives one native database runtime through its lifecycle:
// start, connect, operate, shut down. All methods are safe for concurrent
// use; the lifecycle itself is strictly ordered and a step that fails
// moves the Runtime to a terminal state.
type Runtime struct {
	lib  halcyon.Library
	opts *ffi.ConnectOptions

	logger           *zap.Logger
	startTimeout     time.Duration
	connectTimeout   time.Duration
	shutdownDuration time.Duration

	mu    sync.Mutex
	state State
	db    halcyon.Database
	hasDB bool
}

// New builds a Runtime over lib that will connect with opts. No native
// call is issued until Start.
func New(lib halcyon.Library, opts *ffi.ConnectOptions, options ...Option) (*Runtime, error) {
	if lib == nil {
		return nil, errors.InvalidData(errors.PhaseLifecycle, nil, "nil library")
	}
	if opts == nil {
		return nil, errors.InvalidData(errors.PhaseLifecycle, nil, "nil connect options")
	}
	r := &Runtime{
		lib:              lib,
		opts:             opts,
		logger:           zap.NewNop(),
		startTimeout:     defaultStartTimeout,
		connectTimeout:   defaultConnectTimeout,
		shutdownDuration: defaultShutdownDuration,
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

// State returns the current lifecycle state.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Database returns the bound connection handle. It fails unless the
// Runtime is operational.
func (r *Runtime) Database() (halcyon.Database, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateOperational {
		return 0, errors.NotOperational("database", r.state.String())
	}
	return r.db, nil
}

// Start boots the native runtime and connects the database described by
// the connect options. It returns once both completions have arrived or a
// step has failed; on failure the Runtime is terminal and the process-wide
// instance slot is released.
//
// Only one live instance may exist per process: Start fails immediately
// when another Runtime holds the slot.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateIdle {
		state := r.state
		r.mu.Unlock()
		return errors.NotOperational("start", state.String())
	}
	if err := acquireSlot(r); err != nil {
		r.mu.Unlock()
		return err
	}
	r.state = StateStarting
	r.mu.Unlock()

	if err := r.startRuntime(ctx); err != nil {
		return r.fail("runtime start", err)
	}
	r.setState(StateStarted)
	r.logger.Info("native runtime started")

	db, err := r.connect(ctx)
	if err != nil {
		// The connection never existed, there is no handle to free.
		return r.fail("database connect", err)
	}

	r.mu.Lock()
	r.db = db
	r.hasDB = true
	r.state = StateOperational
	r.mu.Unlock()
	r.logger.Info("database connected",
		zap.String("backend", r.opts.Backend.String()),
		zap.String("host", r.opts.Host))
	return nil
}

func (r *Runtime) startRuntime(ctx context.Context) error {
	token := nextToken()
	comp := newCompletion()
	r.lib.RuntimeStart(func(got halcyon.Token, errPtr uint32) {
		if got != token {
			r.discard("runtime start", got, token)
			return
		}
		wire, derr := r.decodeWire(errPtr)
		comp.resolve(wire, 0, derr)
	}, token)
	return comp.await(ctx, "runtime start", r.startTimeout)
}

func (r *Runtime) connect(ctx context.Context) (halcyon.Database, error) {
	r.setState(StateConnecting)

	list := ffi.NewAllocationList()
	defer list.FreeAndRelease(r.lib.Allocator())

	optionsPtr, err := ffi.StoreConnectOptions(r.lib.Memory(), r.lib.Allocator(), list, r.opts)
	if err != nil {
		return 0, err
	}

	token := nextToken()
	comp := newCompletion()
	r.lib.DBConnect(optionsPtr, func(got halcyon.Token, db halcyon.Database, errPtr uint32) {
		if got != token {
			r.discard("database connect", got, token)
			return
		}
		wire, derr := r.decodeWire(errPtr)
		comp.resolve(wire, db, derr)
	}, token)

	if err := comp.await(ctx, "database connect", r.connectTimeout); err != nil {
		return 0, err
	}
	return comp.db, nil
}

// Close frees the database connection and shuts the native runtime down,
// spending at most the configured duration on graceful teardown. The
// instance slot is released even when shutdown reports an error. Closing
// a terminal Runtime is a no-op.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	switch {
	case r.state.terminal():
		r.mu.Unlock()
		return nil
	case r.state == StateIdle:
		r.state = StateClosed
		r.mu.Unlock()
		return nil
	case r.state == StateStarting || r.state == StateConnecting:
		state := r.state
		r.mu.Unlock()
		return errors.NotOperational("close", state.String())
	}
	db, hasDB := r.db, r.hasDB
	r.state = StateShuttingDown
	r.mu.Unlock()

	if hasDB {
		r.lib.DBFree(db)
	} else {
		// Shutting down from the started state; nothing to free.
		r.logger.Debug("no database handle bound at shutdown")
	}

	token := nextToken()
	comp := newCompletion()
	r.lib.RuntimeShutdown(uint64(r.shutdownDuration.Milliseconds()), func(got halcyon.Token, errPtr uint32) {
		if got != token {
			r.discard("runtime shutdown", got, token)
			return
		}
		wire, derr := r.decodeWire(errPtr)
		comp.resolve(wire, 0, derr)
	}, token)

	err := comp.await(ctx, "runtime shutdown", r.shutdownDuration+shutdownGrace)

	r.mu.Lock()
	r.state = StateClosed
	r.hasDB = false
	r.mu.Unlock()
	releaseSlot(r)

	if err != nil {
		r.logger.Warn("shutdown reported error", zap.Error(err))
		return err
	}
	r.logger.Info("native runtime shut down")
	return nil
}

// decodeWire copies the wire error out of library memory inside the
// callback. A null pointer means success.
func (r *Runtime) decodeWire(errPtr uint32) (ffi.WireError, error) {
	if errPtr == 0 {
		return ffi.WireError{Tag: ffi.TagNoError}, nil
	}
	return ffi.DecodeError(r.lib.Memory(), errPtr)
}

// discard drops a completion whose token does not match the awaited call.
// Stale callbacks from abandoned calls land here.
func (r *Runtime) discard(op string, got, want halcyon.Token) {
	r.logger.Warn("stale completion discarded",
		zap.Error(errors.ContextMismatch(op, uint64(got), uint64(want))))
}

func (r *Runtime) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// fail moves the Runtime to the terminal failed state and releases the
// instance slot.
func (r *Runtime) fail(op string, err error) error {
	r.mu.Lock()
	r.state = StateFailed
	r.mu.Unlock()
	releaseSlot(r)
	r.logger.Error("lifecycle step failed", zap.String("op", op), zap.Error(err))
	return err
}
