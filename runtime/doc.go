// Package runtime turns the native library's callback-based lifecycle into
// ordered, awaitable operations.
//
// The native runtime completes start, connect and shutdown asynchronously,
// invoking callbacks from its own threads. A Runtime sequences those calls
// into a strict state machine:
//
//	idle -> starting -> started -> connecting -> operational
//	                                                 |
//	operational -> shutting-down -> closed           v
//	any step failure ------------------------------> failed
//
// closed and failed are terminal. Each asynchronous call carries a fresh
// process-unique token; a completion whose token does not match the awaited
// call is discarded, so callbacks from abandoned or timed-out calls can
// never resolve a later operation.
//
// At most one live Runtime exists per process. Start acquires the instance
// slot and reaching a terminal state releases it, including on failure, so
// a failed instance never blocks starting a fresh one.
//
// Every wait is deadline-bounded. A timeout is reported as a distinct
// failure and is never confused with an error the native side reported.
package runtime
