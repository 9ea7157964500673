package sqlitelib

import (
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	halcyon "github.com/halcyondb/halcyon-go"
	"github.com/halcyondb/halcyon-go/ffi"
)

// Library is an in-process stand-in for the native database runtime,
// backed by SQLite. It speaks the exact binary contract: connect options
// and errors cross through its Arena, and every completion callback is
// delivered from the worker goroutine, never from the caller's.
type Library struct {
	arena  *Arena
	logger *zap.Logger

	jobs      chan func()
	closeOnce sync.Once
	stopped   chan struct{}

	mu      sync.Mutex
	started bool
	dbs     map[halcyon.Database]*sql.DB
	nextDB  uint64
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(lib *Library) {
		if l != nil {
			lib.logger = l
		}
	}
}

// New builds the library and boots its worker. The worker owns all SQLite
// state; boundary calls only enqueue work, mirroring how the native
// runtime completes calls on its own threads.
func New(options ...Option) *Library {
	l := &Library{
		arena:   NewArena(),
		logger:  zap.NewNop(),
		jobs:    make(chan func(), 16),
		stopped: make(chan struct{}),
		dbs:     make(map[halcyon.Database]*sql.DB),
	}
	for _, o := range options {
		o(l)
	}
	go l.worker()
	return l
}

func (l *Library) worker() {
	defer close(l.stopped)
	for job := range l.jobs {
		job()
	}
}

// Close stops the worker and closes any connections still open. Intended
// for teardown paths that bypass RuntimeShutdown.
func (l *Library) Close() {
	l.closeOnce.Do(func() {
		close(l.jobs)
	})
	<-l.stopped

	l.mu.Lock()
	defer l.mu.Unlock()
	for handle, db := range l.dbs {
		if err := db.Close(); err != nil {
			l.logger.Warn("close leaked connection", zap.Uint64("handle", uint64(handle)), zap.Error(err))
		}
		delete(l.dbs, handle)
	}
}

func (l *Library) Memory() halcyon.Memory       { return l.arena }
func (l *Library) Allocator() halcyon.Allocator { return l.arena }

// submit enqueues a job, running it inline if the worker is gone so
// callbacks are never silently dropped.
func (l *Library) submit(job func()) {
	defer func() {
		if recover() != nil {
			job()
		}
	}()
	select {
	case <-l.stopped:
		job()
	case l.jobs <- job:
	}
}

// storeError places a wire error into the arena, falling back to a null
// pointer if even that fails.
func (l *Library) storeError(tag ffi.ErrorTag, message string) uint32 {
	ptr, err := ffi.StoreError(l.arena, l.arena, nil, tag, message)
	if err != nil {
		l.logger.Error("store wire error", zap.Error(err))
		return 0
	}
	return ptr
}

func (l *Library) RuntimeStart(cb halcyon.StartFunc, token halcyon.Token) {
	l.submit(func() {
		l.mu.Lock()
		already := l.started
		l.started = true
		l.mu.Unlock()
		if already {
			cb(token, l.storeError(ffi.TagRuntimeError, "runtime already started"))
			return
		}
		l.logger.Debug("runtime started", zap.Uint64("token", uint64(token)))
		cb(token, 0)
	})
}

func (l *Library) DBConnect(optionsPtr uint32, cb halcyon.ConnectFunc, token halcyon.Token) {
	l.submit(func() {
		l.mu.Lock()
		started := l.started
		l.mu.Unlock()
		if !started {
			cb(token, 0, l.storeError(ffi.TagMissingRuntime, ""))
			return
		}

		opts, err := ffi.LoadConnectOptions(l.arena, optionsPtr)
		if err != nil {
			cb(token, 0, l.storeError(ffi.TagConfigurationError, err.Error()))
			return
		}
		if opts.Backend != ffi.BackendSQLite {
			cb(token, 0, l.storeError(ffi.TagConfigurationError,
				"backend "+opts.Backend.String()+" is not available in-process"))
			return
		}

		dsn := opts.Name
		if dsn == "" {
			dsn = ":memory:"
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			cb(token, 0, l.storeError(ffi.TagConfigurationError, err.Error()))
			return
		}
		db.SetMaxOpenConns(int(opts.MaxConnections))
		if err := db.Ping(); err != nil {
			_ = db.Close()
			cb(token, 0, l.storeError(ffi.TagDatabaseError, err.Error()))
			return
		}

		l.mu.Lock()
		l.nextDB++
		handle := halcyon.Database(l.nextDB)
		l.dbs[handle] = db
		l.mu.Unlock()

		l.logger.Debug("database connected",
			zap.Uint64("handle", uint64(handle)),
			zap.String("dsn", dsn))
		cb(token, handle, 0)
	})
}

func (l *Library) DBFree(db halcyon.Database) {
	l.submit(func() {
		l.mu.Lock()
		conn, ok := l.dbs[db]
		delete(l.dbs, db)
		l.mu.Unlock()
		if !ok {
			l.logger.Warn("free of unknown handle", zap.Uint64("handle", uint64(db)))
			return
		}
		if err := conn.Close(); err != nil {
			l.logger.Warn("close connection", zap.Error(err))
		}
	})
}

func (l *Library) RuntimeShutdown(maxDurationMillis uint64, cb halcyon.ShutdownFunc, token halcyon.Token) {
	l.submit(func() {
		deadline := time.Now().Add(time.Duration(maxDurationMillis) * time.Millisecond)

		l.mu.Lock()
		leaked := make(map[halcyon.Database]*sql.DB, len(l.dbs))
		for h, db := range l.dbs {
			leaked[h] = db
			delete(l.dbs, h)
		}
		l.started = false
		l.mu.Unlock()

		for handle, db := range leaked {
			if time.Now().After(deadline) {
				l.logger.Warn("shutdown budget exhausted",
					zap.Uint64("handle", uint64(handle)))
				cb(token, l.storeError(ffi.TagRuntimeError, "shutdown budget exhausted"))
				return
			}
			if err := db.Close(); err != nil {
				l.logger.Warn("close connection at shutdown", zap.Error(err))
			}
		}
		l.logger.Debug("runtime shut down", zap.Uint64("token", uint64(token)))
		cb(token, 0)
	})
}

// DB resolves a handle to its SQL connection. Helper for callers that mix
// lifecycle management with direct queries in tests and tooling.
func (l *Library) DB(handle halcyon.Database) (*sql.DB, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	db, ok := l.dbs[handle]
	return db, ok
}
