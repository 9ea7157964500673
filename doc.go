// Package halcyon provides Go bindings for the Halcyon native database
// runtime, a library reachable only through a fixed, versioned binary
// calling convention.
//
// Two concerns dominate the boundary and shape this module:
//
//   - Cross-boundary data representation. A closed set of dynamic value
//     kinds and a recursive boolean predicate tree are encoded into binary
//     layouts the native side reads directly, without a parsing step.
//
//   - Asynchronous lifecycle. Starting the runtime, opening a database
//     connection and shutting the runtime down all complete via callbacks
//     delivered on threads the caller does not control. The bindings turn
//     those into ordered, awaitable, deadline-bounded operations.
//
// # Architecture Overview
//
//	halcyon/          Root package with Memory, Allocator and the Library contract
//	├── runtime/      Lifecycle controller: state machine, single-instance slot
//	├── ffi/          Boundary encoding: values, conditions, options, wire errors
//	├── engine/       wazero-backed Library for wasm builds of the native runtime
//	├── sqlitelib/    Pure-Go reference Library backed by modernc.org/sqlite
//	└── errors/       Structured error types
//
// # Quick Start
//
//	opts, err := ffi.NewConnectOptions(ffi.BackendSQLite, "app.db", "", 1, "", "", 1, 32)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	lib := sqlitelib.New()
//	rt, err := runtime.New(lib, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := rt.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
// # Thread Safety
//
// A Runtime is owned by one goroutine; completion callbacks may arrive on
// any goroutine and are synchronized internally. At most one Runtime may be
// live per process at a time.
package halcyon
