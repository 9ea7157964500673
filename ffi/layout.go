package ffi

// Fixed 32-bit C ABI of the native library: pointers and sizes are u32,
// little-endian, natural alignment. These constants are the contract; the
// native side reads the structures directly, there is no parsing step.
const (
	// Counted sequence: { u32 ptr, u32 len }
	seqSize   = 8
	seqAlign  = 4
	seqPtrOff = 0
	seqLenOff = 4

	// Tagged value: { i32 tag, pad, union payload }
	// Payload alignment is 8 because of the i64/f64 variants.
	valueSize       = 16
	valueAlign      = 8
	valuePayloadOff = 8

	// Condition node: { i32 tag, pad, union payload }
	// The largest union members are the inline value (16 bytes) and the
	// ternary operator node (op + three child pointers, 16 bytes).
	condSize       = 24
	condAlign      = 8
	condPayloadOff = 8

	// Operator payloads inside a condition node, relative to node start:
	// { i32 op, u32 children[arity] }
	condOpOff    = condPayloadOff
	condChildOff = condPayloadOff + 4

	// Wire error: { i32 tag, seq message }
	wireErrSize   = 12
	wireErrAlign  = 4
	wireErrMsgOff = 4

	// Connect options: { i32 backend, seq name, seq host, u16 port,
	// pad, seq user, seq password, u32 min, u32 max }
	optionsSize        = 48
	optionsAlign       = 4
	optionsBackendOff  = 0
	optionsNameOff     = 4
	optionsHostOff     = 12
	optionsPortOff     = 20
	optionsUserOff     = 24
	optionsPasswordOff = 32
	optionsMinOff      = 40
	optionsMaxOff      = 44
)
