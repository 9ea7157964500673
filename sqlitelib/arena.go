package sqlitelib

import (
	"encoding/binary"
	"sync"

	"github.com/halcyondb/halcyon-go/errors"
)

const (
	initialArenaSize = 64 * 1024
	maxArenaSize     = 256 << 20
)

// Arena is the library's memory: a growable little-endian byte region with
// a bump allocator. Free is a no-op; boundary structures live until Reset.
// Address 0 is reserved so a null pointer never aliases real data.
type Arena struct {
	mu   sync.RWMutex
	buf  []byte
	next uint32
}

func NewArena() *Arena {
	return &Arena{buf: make([]byte, initialArenaSize), next: 8}
}

// grow must be called with mu held.
func (a *Arena) grow(needed uint64) error {
	if needed <= uint64(len(a.buf)) {
		return nil
	}
	size := uint64(len(a.buf))
	for size < needed {
		size *= 2
	}
	if size > maxArenaSize {
		return errors.AllocationFailed(errors.PhaseEncode, uint32(needed), 1)
	}
	next := make([]byte, size)
	copy(next, a.buf)
	a.buf = next
	return nil
}

func (a *Arena) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	ptr := (a.next + align - 1) &^ (align - 1)
	if err := a.grow(uint64(ptr) + uint64(size)); err != nil {
		return 0, err
	}
	a.next = ptr + size
	return ptr, nil
}

func (a *Arena) Free(ptr, size, align uint32) {}

// Reset reclaims all allocations at once. Only valid when no boundary
// structure is still referenced.
func (a *Arena) Reset() {
	a.mu.Lock()
	a.next = 8
	a.mu.Unlock()
}

func (a *Arena) check(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(a.buf)) {
		return errors.OutOfBounds(errors.PhaseDecode, nil, offset, length)
	}
	return nil
}

func (a *Arena) Read(offset, length uint32) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if err := a.check(offset, length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, a.buf[offset:])
	return out, nil
}

func (a *Arena) Write(offset uint32, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(a.buf[offset:], data)
	return nil
}

func (a *Arena) ReadU8(offset uint32) (uint8, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if err := a.check(offset, 1); err != nil {
		return 0, err
	}
	return a.buf[offset], nil
}

func (a *Arena) ReadU16(offset uint32) (uint16, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if err := a.check(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(a.buf[offset:]), nil
}

func (a *Arena) ReadU32(offset uint32) (uint32, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if err := a.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(a.buf[offset:]), nil
}

func (a *Arena) ReadU64(offset uint32) (uint64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if err := a.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(a.buf[offset:]), nil
}

func (a *Arena) WriteU8(offset uint32, v uint8) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(offset, 1); err != nil {
		return err
	}
	a.buf[offset] = v
	return nil
}

func (a *Arena) WriteU16(offset uint32, v uint16) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(a.buf[offset:], v)
	return nil
}

func (a *Arena) WriteU32(offset uint32, v uint32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(a.buf[offset:], v)
	return nil
}

func (a *Arena) WriteU64(offset uint32, v uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(a.buf[offset:], v)
	return nil
}
