package ffi

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/halcyondb/halcyon-go/errors"
)

func wantKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	if e.Kind != kind {
		t.Fatalf("expected kind %s, got %s: %v", kind, e.Kind, err)
	}
}

// testArena is a little-endian Memory plus bump Allocator used by the
// encoder tests. Address 0 is reserved so null pointers stay distinguishable.
type testArena struct {
	buf   []byte
	next  uint32
	frees int
}

func newTestArena(size uint32) *testArena {
	return &testArena{buf: make([]byte, size), next: 8}
}

func (a *testArena) check(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(a.buf)) {
		return fmt.Errorf("out of bounds: %d+%d > %d", offset, length, len(a.buf))
	}
	return nil
}

func (a *testArena) Read(offset, length uint32) ([]byte, error) {
	if err := a.check(offset, length); err != nil {
		return nil, err
	}
	return a.buf[offset : offset+length], nil
}

func (a *testArena) Write(offset uint32, data []byte) error {
	if err := a.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(a.buf[offset:], data)
	return nil
}

func (a *testArena) ReadU8(offset uint32) (uint8, error) {
	if err := a.check(offset, 1); err != nil {
		return 0, err
	}
	return a.buf[offset], nil
}

func (a *testArena) ReadU16(offset uint32) (uint16, error) {
	if err := a.check(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(a.buf[offset:]), nil
}

func (a *testArena) ReadU32(offset uint32) (uint32, error) {
	if err := a.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(a.buf[offset:]), nil
}

func (a *testArena) ReadU64(offset uint32) (uint64, error) {
	if err := a.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(a.buf[offset:]), nil
}

func (a *testArena) WriteU8(offset uint32, v uint8) error {
	if err := a.check(offset, 1); err != nil {
		return err
	}
	a.buf[offset] = v
	return nil
}

func (a *testArena) WriteU16(offset uint32, v uint16) error {
	if err := a.check(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(a.buf[offset:], v)
	return nil
}

func (a *testArena) WriteU32(offset uint32, v uint32) error {
	if err := a.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(a.buf[offset:], v)
	return nil
}

func (a *testArena) WriteU64(offset uint32, v uint64) error {
	if err := a.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(a.buf[offset:], v)
	return nil
}

func (a *testArena) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	ptr := (a.next + align - 1) &^ (align - 1)
	if uint64(ptr)+uint64(size) > uint64(len(a.buf)) {
		return 0, fmt.Errorf("arena exhausted: %d+%d > %d", ptr, size, len(a.buf))
	}
	a.next = ptr + size
	return ptr, nil
}

func (a *testArena) Free(ptr, size, align uint32) {
	a.frees++
}
