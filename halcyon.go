package halcyon

// Memory is the native library's memory as seen from the host.
// All FFI structures are written into it before a boundary call and
// read back out of it inside completion callbacks.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// Allocator allocates regions inside the library's memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Opaque native-owned handles. The host never inspects them, only passes
// them back to later calls. Zero is never a valid handle.
type (
	Database uint64
	Row      uint64
	Stream   uint64
)

// Token is a caller-supplied correlation value echoed back unmodified on
// every completion callback. It carries no native-side ownership.
type Token uint64

// Completion callbacks. The library may invoke them from any goroutine,
// before or after the caller starts waiting for the result. The wire Error
// at errPtr is only valid for the duration of the invocation; callers must
// decode it (copying the message out) before returning.
type (
	StartFunc    func(token Token, errPtr uint32)
	ConnectFunc  func(token Token, db Database, errPtr uint32)
	ShutdownFunc func(token Token, errPtr uint32)
)

// Library is the versioned call contract of the native database runtime.
//
// RuntimeStart, DBConnect and RuntimeShutdown are asynchronous: they return
// as soon as the call is issued and report their outcome through the given
// callback. DBFree is fire-and-forget. Ordering is the caller's burden:
// start must complete before connect is issued, and shutdown must not be
// issued while a connect is in flight.
type Library interface {
	// Memory returns the library's memory. Valid until Close.
	Memory() Memory

	// Allocator returns the library-side allocator used to place FFI
	// structures into Memory.
	Allocator() Allocator

	// RuntimeStart boots the runtime's internal workers.
	RuntimeStart(cb StartFunc, token Token)

	// DBConnect opens a database connection described by the ConnectOptions
	// structure at optionsPtr. The Database handle passed to cb is only
	// valid when the wire error reports no failure.
	DBConnect(optionsPtr uint32, cb ConnectFunc, token Token)

	// DBFree releases a connection handle. No completion is reported.
	DBFree(db Database)

	// RuntimeShutdown stops the runtime, spending at most maxDurationMillis
	// on graceful teardown.
	RuntimeShutdown(maxDurationMillis uint64, cb ShutdownFunc, token Token)
}
