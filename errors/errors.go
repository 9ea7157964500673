package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode    Phase = "encode"    // Go to native memory
	PhaseDecode    Phase = "decode"    // native memory to Go
	PhaseValidate  Phase = "validate"  // eager construction-time validation
	PhaseLifecycle Phase = "lifecycle" // runtime start/connect/shutdown
	PhaseLibrary   Phase = "library"   // faults inside the native library
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch    Kind = "type_mismatch"
	KindArityMismatch   Kind = "arity_mismatch"
	KindOutOfRange      Kind = "out_of_range"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindOverflow        Kind = "overflow"
	KindInvalidUTF8     Kind = "invalid_utf8"
	KindInvalidData     Kind = "invalid_data"
	KindInvalidEnum     Kind = "invalid_enum"
	KindAllocation      Kind = "allocation"
	KindNotOperational  Kind = "not_operational"
	KindAlreadyRunning  Kind = "already_running"
	KindContextMismatch Kind = "context_mismatch"
	KindTimeout         Kind = "timeout"
	KindNative          Kind = "native"
)

// Error is the structured error type used throughout the bindings
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, expected string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Detail: "expected " + expected,
	}
}

// ArityMismatch creates a construction error for a condition node built with
// the wrong number of children
func ArityMismatch(node string, expected, actual int) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindArityMismatch,
		Detail: fmt.Sprintf("%s takes %d children, got %d", node, expected, actual),
		Value:  actual,
	}
}

// OutOfRange creates an error for a value that does not fit its target width
func OutOfRange(phase Phase, field string, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Path:   []string{field},
		Detail: fmt.Sprintf("value %v does not fit %s", value, target),
		Value:  value,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, offset, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("offset %d out of bounds (length %d)", offset, length),
		Value:  offset,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, value any, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Detail: fmt.Sprintf("invalid %s value %v", enumType, value),
		Value:  value,
	}
}

// NotOperational creates an error for an operation attempted before the
// runtime reached the Operational state
func NotOperational(op, state string) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindNotOperational,
		Detail: fmt.Sprintf("%s requires an operational runtime, current state %s", op, state),
	}
}

// AlreadyRunning creates an error for a second lifecycle started while one
// is live
func AlreadyRunning() *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindAlreadyRunning,
		Detail: "another runtime instance is already live in this process",
	}
}

// ContextMismatch creates a defensive error for a callback carrying a token
// that does not identify the currently registered runtime
func ContextMismatch(op string, got, want uint64) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindContextMismatch,
		Detail: fmt.Sprintf("callback %q delivered token %d, expected %d", op, got, want),
		Value:  got,
	}
}

// Timeout creates an error for a deadline-bounded wait that gave up. The
// native operation's outcome is still unknown when this fires.
func Timeout(op string, millis int64) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindTimeout,
		Detail: fmt.Sprintf("timed out after %dms waiting for %s completion", millis, op),
	}
}

// Native wraps an error reported by the library through the wire error
// channel
func Native(op string, cause error) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindNative,
		Detail: op + " failed",
		Cause:  cause,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
