// Package sqlitelib is an in-process implementation of the native library
// contract, backed by SQLite.
//
// It exists for two reasons: it lets the full binding stack run without a
// native artifact, and it exercises the decode side of the binary contract
// that the native runtime normally performs. Connect options are read back
// out of the Arena exactly as a native implementation would read them, and
// failures are reported as wire errors written into the Arena.
//
// All completions are delivered from the library's worker goroutine, so
// callers see the same callback threading the native runtime produces.
// Only the sqlite backend is available; asking for any other backend is a
// configuration error.
package sqlitelib
