package runtime

// State is the lifecycle position of a Runtime. Transitions are strictly
// ordered; see the package documentation for the full machine.
type State int32

const (
	// StateIdle is the initial state: no native call has been issued.
	StateIdle State = iota

	// StateStarting means RuntimeStart has been issued and its completion
	// is outstanding.
	StateStarting

	// StateStarted means the native runtime is up but no database is bound.
	StateStarted

	// StateConnecting means DBConnect has been issued and its completion
	// is outstanding.
	StateConnecting

	// StateOperational means a database handle is bound and queries may be
	// issued.
	StateOperational

	// StateShuttingDown means RuntimeShutdown has been issued.
	StateShuttingDown

	// StateClosed is terminal: the native runtime has been torn down.
	StateClosed

	// StateFailed is terminal: a lifecycle step failed and the native side
	// is in an unknown condition. No further calls are issued.
	StateFailed
)

var stateNames = [...]string{
	StateIdle:         "idle",
	StateStarting:     "starting",
	StateStarted:      "started",
	StateConnecting:   "connecting",
	StateOperational:  "operational",
	StateShuttingDown: "shutting-down",
	StateClosed:       "closed",
	StateFailed:       "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// terminal reports whether no further lifecycle calls may be issued.
func (s State) terminal() bool {
	return s == StateClosed || s == StateFailed
}
