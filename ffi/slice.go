package ffi

import (
	"unicode/utf8"

	"github.com/halcyondb/halcyon-go/errors"
	"github.com/halcyondb/halcyon-go/ffi/internal/abi"
)

// Counted sequences are borrowed views: { u32 ptr, u32 len }. The header
// never owns the bytes it points at, and a decode is bounded strictly by the
// carried length regardless of how large the backing allocation is.

// storeSeqData copies data into library memory and returns its address.
// Empty data is a valid zero-length sequence with a null pointer.
func storeSeqData(mem Memory, alloc Allocator, list *AllocationList, data []byte, path []string) (uint32, error) {
	n := uint32(len(data))
	if n == 0 {
		return 0, nil
	}
	if n > abi.MaxStringSize {
		return 0, errors.New(errors.PhaseEncode, errors.KindOverflow).
			Path(path...).
			Detail("sequence size %d exceeds maximum %d", n, abi.MaxStringSize).
			Build()
	}
	ptr, err := alloc.Alloc(n, 1)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, n, 1)
	}
	if list != nil {
		list.Add(ptr, n, 1)
	}
	if err := mem.Write(ptr, data); err != nil {
		return 0, err
	}
	return ptr, nil
}

func writeSeqAt(mem Memory, addr, ptr, length uint32) error {
	if err := mem.WriteU32(addr+seqPtrOff, ptr); err != nil {
		return err
	}
	return mem.WriteU32(addr+seqLenOff, length)
}

// storeBytesAt writes a sequence header for data at addr, allocating the
// data region behind it.
func storeBytesAt(mem Memory, alloc Allocator, list *AllocationList, addr uint32, data []byte, path []string) error {
	ptr, err := storeSeqData(mem, alloc, list, data, path)
	if err != nil {
		return err
	}
	return writeSeqAt(mem, addr, ptr, uint32(len(data)))
}

// readSeqAt reads the header at addr and copies out exactly length bytes.
func readSeqAt(mem Memory, addr uint32) ([]byte, error) {
	ptr, err := mem.ReadU32(addr + seqPtrOff)
	if err != nil {
		return nil, err
	}
	length, err := mem.ReadU32(addr + seqLenOff)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return []byte{}, nil
	}
	data, err := mem.Read(ptr, length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, data)
	return out, nil
}

// StoreBytes encodes data as a counted byte sequence and returns the address
// of the header.
func StoreBytes(mem Memory, alloc Allocator, list *AllocationList, data []byte) (uint32, error) {
	addr, err := alloc.Alloc(seqSize, seqAlign)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, seqSize, seqAlign)
	}
	if list != nil {
		list.Add(addr, seqSize, seqAlign)
	}
	if err := storeBytesAt(mem, alloc, list, addr, data, nil); err != nil {
		return 0, err
	}
	return addr, nil
}

// LoadBytes is the inverse of StoreBytes.
func LoadBytes(mem Memory, addr uint32) ([]byte, error) {
	return readSeqAt(mem, addr)
}

// StoreString encodes s as UTF-8 bytes. Go strings are not guaranteed to be
// valid UTF-8, so the check happens here rather than at the boundary.
func StoreString(mem Memory, alloc Allocator, list *AllocationList, s string) (uint32, error) {
	if !utf8.ValidString(s) {
		return 0, errors.InvalidUTF8(errors.PhaseEncode, nil, []byte(s))
	}
	return StoreBytes(mem, alloc, list, []byte(s))
}

// LoadString decodes a counted sequence as UTF-8 text. Invalid bytes are a
// distinct decode failure, never silently replaced.
func LoadString(mem Memory, addr uint32) (string, error) {
	data, err := readSeqAt(mem, addr)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, nil, data)
	}
	return string(data), nil
}

// StoreStringSeq encodes a homogeneous list of strings: a sequence whose
// elements are themselves sequence headers, laid out contiguously.
func StoreStringSeq(mem Memory, alloc Allocator, list *AllocationList, items []string) (uint32, error) {
	addr, err := alloc.Alloc(seqSize, seqAlign)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, seqSize, seqAlign)
	}
	if list != nil {
		list.Add(addr, seqSize, seqAlign)
	}

	n := uint32(len(items))
	if n == 0 {
		return addr, writeSeqAt(mem, addr, 0, 0)
	}
	if n > abi.MaxSeqLength {
		return 0, errors.New(errors.PhaseEncode, errors.KindOverflow).
			Detail("sequence length %d exceeds maximum %d", n, abi.MaxSeqLength).
			Build()
	}

	total, ok := abi.SafeMulU32(n, seqSize)
	if !ok {
		return 0, errors.New(errors.PhaseEncode, errors.KindOverflow).
			Detail("sequence data size overflow: %d * %d", n, seqSize).
			Build()
	}
	elems, err := alloc.Alloc(total, seqAlign)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, total, seqAlign)
	}
	if list != nil {
		list.Add(elems, total, seqAlign)
	}
	for i, s := range items {
		if !utf8.ValidString(s) {
			return 0, errors.InvalidUTF8(errors.PhaseEncode, nil, []byte(s))
		}
		if err := storeBytesAt(mem, alloc, list, elems+uint32(i)*seqSize, []byte(s), nil); err != nil {
			return 0, err
		}
	}
	return addr, writeSeqAt(mem, addr, elems, n)
}

// LoadStringSeq is the inverse of StoreStringSeq.
func LoadStringSeq(mem Memory, addr uint32) ([]string, error) {
	elems, err := mem.ReadU32(addr + seqPtrOff)
	if err != nil {
		return nil, err
	}
	n, err := mem.ReadU32(addr + seqLenOff)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		s, err := LoadString(mem, elems+i*seqSize)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
