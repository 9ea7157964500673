package runtime

import (
	"time"

	"go.uber.org/zap"
)

const (
	defaultStartTimeout     = 10 * time.Second
	defaultConnectTimeout   = 30 * time.Second
	defaultShutdownDuration = 5 * time.Second

	// Extra time allowed for the shutdown completion to arrive after the
	// native-side budget has elapsed.
	shutdownGrace = 2 * time.Second
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStartTimeout bounds how long Start waits for the runtime-start
// completion.
func WithStartTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.startTimeout = d
		}
	}
}

// WithConnectTimeout bounds how long Start waits for the connect completion.
func WithConnectTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.connectTimeout = d
		}
	}
}

// WithShutdownDuration sets the graceful-teardown budget passed to the
// native runtime on shutdown.
func WithShutdownDuration(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.shutdownDuration = d
		}
	}
}
