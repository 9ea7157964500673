package ffi

import (
	"fmt"

	"github.com/halcyondb/halcyon-go/errors"
)

// ErrorTag is the discriminant of the wire error channel. Numeric values
// are part of the binary contract.
type ErrorTag int32

const (
	TagNoError ErrorTag = iota
	TagMissingRuntime
	TagRuntimeError
	TagInvalidString
	TagConfigurationError
	TagDatabaseError
	TagStreamExhausted
	TagColumnDecodeError
	TagColumnNotFound
	TagColumnIndexOutOfBounds
)

var errorTagNames = [...]string{
	TagNoError:                "no-error",
	TagMissingRuntime:         "missing-runtime",
	TagRuntimeError:           "runtime-error",
	TagInvalidString:          "invalid-string",
	TagConfigurationError:     "configuration-error",
	TagDatabaseError:          "database-error",
	TagStreamExhausted:        "stream-exhausted",
	TagColumnDecodeError:      "column-decode-error",
	TagColumnNotFound:         "column-not-found",
	TagColumnIndexOutOfBounds: "column-index-out-of-bounds",
}

func (t ErrorTag) String() string {
	if t >= 0 && int(t) < len(errorTagNames) {
		return errorTagNames[t]
	}
	return "unknown"
}

// carriesMessage reports whether the discriminant defines a message. Only
// the discriminant decides: other tags return absent even if the raw
// representation happens to carry bytes.
func (t ErrorTag) carriesMessage() bool {
	switch t {
	case TagRuntimeError, TagConfigurationError, TagDatabaseError:
		return true
	}
	return false
}

// WireError is a decoded boundary error. The message has already been
// copied out of library memory: a WireError stays valid after the callback
// that produced it returns.
type WireError struct {
	message string
	Tag     ErrorTag
}

// IsFailure is true for every discriminant except no-error.
func (e WireError) IsFailure() bool {
	return e.Tag != TagNoError
}

// Message returns the carried text, present only for the runtime,
// configuration and database error discriminants.
func (e WireError) Message() (string, bool) {
	if !e.Tag.carriesMessage() {
		return "", false
	}
	return e.message, true
}

// Err converts the wire error into a Go error, nil when no failure.
func (e WireError) Err() error {
	if !e.IsFailure() {
		return nil
	}
	detail := e.Tag.String()
	if msg, ok := e.Message(); ok && msg != "" {
		detail = fmt.Sprintf("%s: %s", e.Tag, msg)
	}
	return errors.New(errors.PhaseLibrary, errors.KindNative).
		Value(int32(e.Tag)).
		Detail("%s", detail).
		Build()
}

// DecodeError reads the wire error at addr, copying the message out of
// library memory. It must be called inside the completion callback that
// delivered addr; the underlying buffer is not guaranteed to outlive it.
func DecodeError(mem Memory, addr uint32) (WireError, error) {
	raw, err := mem.ReadU32(addr)
	if err != nil {
		return WireError{}, err
	}
	tag := ErrorTag(int32(raw))
	if tag < TagNoError || tag > TagColumnIndexOutOfBounds {
		return WireError{}, errors.InvalidEnum(errors.PhaseDecode, int32(raw), "error tag")
	}
	we := WireError{Tag: tag}
	if tag.carriesMessage() {
		data, err := readSeqAt(mem, addr+wireErrMsgOff)
		if err != nil {
			return WireError{}, err
		}
		we.message = string(data)
	}
	return we, nil
}

// StoreError writes a wire error into library memory. Used by in-process
// library implementations; the native library produces these itself.
func StoreError(mem Memory, alloc Allocator, list *AllocationList, tag ErrorTag, message string) (uint32, error) {
	addr, err := alloc.Alloc(wireErrSize, wireErrAlign)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, wireErrSize, wireErrAlign)
	}
	if list != nil {
		list.Add(addr, wireErrSize, wireErrAlign)
	}
	if err := mem.WriteU32(addr, uint32(tag)); err != nil {
		return 0, err
	}
	var msg []byte
	if tag.carriesMessage() {
		msg = []byte(message)
	}
	if err := storeBytesAt(mem, alloc, list, addr+wireErrMsgOff, msg, nil); err != nil {
		return 0, err
	}
	return addr, nil
}
