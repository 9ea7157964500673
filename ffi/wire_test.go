package ffi

import (
	"testing"

	"github.com/halcyondb/halcyon-go/errors"
)

func TestWireErrorRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		tag     ErrorTag
		message string
		wantMsg string
		carries bool
	}{
		{"no error", TagNoError, "", "", false},
		{"missing runtime", TagMissingRuntime, "", "", false},
		{"runtime error", TagRuntimeError, "thread pool exhausted", "thread pool exhausted", true},
		{"configuration error", TagConfigurationError, "unknown backend", "unknown backend", true},
		{"database error", TagDatabaseError, "connection refused", "connection refused", true},
		{"stream exhausted", TagStreamExhausted, "", "", false},
		{"column not found", TagColumnNotFound, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arena := newTestArena(1024)
			list := NewAllocationList()
			defer list.Release()

			addr, err := StoreError(arena, arena, list, tt.tag, tt.message)
			if err != nil {
				t.Fatal(err)
			}
			we, err := DecodeError(arena, addr)
			if err != nil {
				t.Fatal(err)
			}
			if we.Tag != tt.tag {
				t.Fatalf("tag = %s, want %s", we.Tag, tt.tag)
			}
			msg, ok := we.Message()
			if ok != tt.carries {
				t.Fatalf("message present = %v, want %v", ok, tt.carries)
			}
			if msg != tt.wantMsg {
				t.Fatalf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

// The discriminant alone decides whether a message exists. Bytes sitting in
// the message slot of a non-carrying tag are never surfaced.
func TestMessageGatedByDiscriminant(t *testing.T) {
	arena := newTestArena(1024)
	list := NewAllocationList()
	defer list.Release()

	addr, err := StoreError(arena, arena, list, TagRuntimeError, "stale detail")
	if err != nil {
		t.Fatal(err)
	}
	// Rewrite only the tag, leaving the message sequence in place.
	if err := arena.WriteU32(addr, uint32(TagStreamExhausted)); err != nil {
		t.Fatal(err)
	}
	we, err := DecodeError(arena, addr)
	if err != nil {
		t.Fatal(err)
	}
	if msg, ok := we.Message(); ok || msg != "" {
		t.Fatalf("non-carrying tag surfaced message %q", msg)
	}
	if !we.IsFailure() {
		t.Fatal("stream-exhausted must report failure")
	}
}

func TestStoreErrorDropsMessageForNonCarryingTag(t *testing.T) {
	arena := newTestArena(1024)
	list := NewAllocationList()
	defer list.Release()

	addr, err := StoreError(arena, arena, list, TagMissingRuntime, "ignored")
	if err != nil {
		t.Fatal(err)
	}
	ptr, _ := arena.ReadU32(addr + wireErrMsgOff + seqPtrOff)
	length, _ := arena.ReadU32(addr + wireErrMsgOff + seqLenOff)
	if ptr != 0 || length != 0 {
		t.Fatalf("message sequence = {%d, %d}, want {0, 0}", ptr, length)
	}
}

func TestWireErrorErr(t *testing.T) {
	ok := WireError{Tag: TagNoError}
	if err := ok.Err(); err != nil {
		t.Fatalf("no-error produced %v", err)
	}
	if ok.IsFailure() {
		t.Fatal("no-error reported as failure")
	}

	arena := newTestArena(1024)
	list := NewAllocationList()
	defer list.Release()

	addr, err := StoreError(arena, arena, list, TagDatabaseError, "deadlock")
	if err != nil {
		t.Fatal(err)
	}
	we, err := DecodeError(arena, addr)
	if err != nil {
		t.Fatal(err)
	}
	wireErr := we.Err()
	wantKind(t, wireErr, errors.KindNative)
	e := wireErr.(*errors.Error)
	if e.Phase != errors.PhaseLibrary {
		t.Fatalf("phase = %s, want %s", e.Phase, errors.PhaseLibrary)
	}
	if !containsStr(e.Detail, "deadlock") {
		t.Fatalf("detail %q does not carry the message", e.Detail)
	}
}

func TestDecodeErrorInvalidTag(t *testing.T) {
	arena := newTestArena(64)
	addr, _ := arena.Alloc(wireErrSize, wireErrAlign)
	if err := arena.WriteU32(addr, 250); err != nil {
		t.Fatal(err)
	}
	_, err := DecodeError(arena, addr)
	wantKind(t, err, errors.KindInvalidEnum)
}

// A decoded message is a copy: mutating library memory afterwards must not
// change it.
func TestDecodedMessageIsCopied(t *testing.T) {
	arena := newTestArena(1024)
	list := NewAllocationList()
	defer list.Release()

	addr, err := StoreError(arena, arena, list, TagRuntimeError, "original")
	if err != nil {
		t.Fatal(err)
	}
	we, err := DecodeError(arena, addr)
	if err != nil {
		t.Fatal(err)
	}
	msgPtr, _ := arena.ReadU32(addr + wireErrMsgOff + seqPtrOff)
	if err := arena.Write(msgPtr, []byte("clobbered")); err != nil {
		t.Fatal(err)
	}
	if msg, _ := we.Message(); msg != "original" {
		t.Fatalf("message changed after memory reuse: %q", msg)
	}
}
