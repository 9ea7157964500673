// Package engine runs a wasm build of the Halcyon native runtime under
// wazero and adapts it to the boundary contract.
//
// The guest exports the lifecycle entry points (halcyon_runtime_start,
// halcyon_db_connect, halcyon_db_free, halcyon_runtime_shutdown) and its
// allocator (halcyon_alloc, halcyon_free). Completions travel the other
// way: the guest imports runtime_started, db_connected and runtime_stopped
// from the halcyon_host module and calls them when an operation finishes.
//
// Each lifecycle call is dispatched on its own goroutine and guest entry
// is serialized, so from the caller's side the Library behaves exactly
// like a native build completing calls on foreign threads.
package engine
