// Package ffi encodes Go values into the fixed binary layouts the Halcyon
// native library reads directly out of its memory.
//
// # Memory Layout
//
// The contract is a 32-bit little-endian C ABI with natural alignment:
//
//	Type             Size    Layout
//	─────────────────────────────────────────────────────
//	sequence         8       { u32 ptr, u32 len }
//	value            16      { i32 tag, pad, union @8 }
//	condition        24      { i32 tag, pad, union @8 }
//	wire error       12      { i32 tag, sequence @4 }
//	connect options  48      see layout.go
//
// Counted sequences are borrowed views: the header never owns the bytes it
// points at, and decoding is bounded strictly by the carried length. An
// empty sequence is { 0, 0 }, which is valid on both sides.
//
// # Encoding Flow
//
// Values and condition trees are constructed and validated in Go first
// (NewValue, Binary, Conjunction, ...), then placed into library memory:
//
//	list := ffi.NewAllocationList()
//	defer list.FreeAndRelease(lib.Allocator())
//
//	addr, err := ffi.StoreCondition(lib.Memory(), lib.Allocator(), list, cond)
//
// Every allocation made while storing one structure is tracked in the
// AllocationList, so the whole tree lives exactly as long as the boundary
// call that consumes it.
//
// # Validation
//
// All validation is eager. Kind inference, explicit-kind range checks,
// condition arity and connect option ranges fail at construction; UTF-8 is
// checked on encode and on decode. Nothing malformed reaches the boundary,
// and nothing invalid is silently repaired on the way back.
package ffi
