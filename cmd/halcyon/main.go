package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	halcyon "github.com/halcyondb/halcyon-go"
	"github.com/halcyondb/halcyon-go/engine"
	"github.com/halcyondb/halcyon-go/ffi"
	"github.com/halcyondb/halcyon-go/runtime"
	"github.com/halcyondb/halcyon-go/sqlitelib"
)

func main() {
	var (
		backend     = flag.String("backend", "sqlite", "Database backend (sqlite, mysql, postgres)")
		name        = flag.String("name", "", "Database name (sqlite: file path, empty for in-memory)")
		host        = flag.String("host", "localhost", "Database host")
		port        = flag.Uint("port", 5432, "Database port")
		user        = flag.String("user", "", "Database user")
		password    = flag.String("password", "", "Database password")
		minConns    = flag.Uint64("min", 1, "Minimum pool connections")
		maxConns    = flag.Uint64("max", 8, "Maximum pool connections")
		wasmFile    = flag.String("wasm", "", "Path to a Halcyon wasm build (default: in-process sqlite)")
		timeout     = flag.Duration("timeout", 30*time.Second, "Overall lifecycle timeout")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = l
		defer logger.Sync()
	}

	opts, err := ffi.NewConnectOptions(
		parseBackend(*backend), *name, *host, uint32(*port), *user, *password, *minConns, *maxConns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(opts, *wasmFile, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(opts, *wasmFile, *timeout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseBackend(s string) ffi.Backend {
	switch s {
	case "sqlite":
		return ffi.BackendSQLite
	case "mysql":
		return ffi.BackendMySQL
	case "postgres":
		return ffi.BackendPostgres
	}
	return ffi.BackendInvalid
}

// buildLibrary picks the library implementation: a wasm build under the
// engine when a path is given, the in-process sqlite library otherwise.
// The returned func tears the library down.
func buildLibrary(ctx context.Context, wasmFile string, logger *zap.Logger) (halcyon.Library, func(), error) {
	if wasmFile == "" {
		lib := sqlitelib.New(sqlitelib.WithLogger(logger))
		return lib, lib.Close, nil
	}

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read wasm: %w", err)
	}
	engine.SetLogger(logger)
	lib, err := engine.New(ctx, data, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("load wasm library: %w", err)
	}
	return lib, func() { lib.Close(ctx) }, nil
}

func run(opts *ffi.ConnectOptions, wasmFile string, timeout time.Duration, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	lib, teardown, err := buildLibrary(ctx, wasmFile, logger)
	if err != nil {
		return err
	}
	defer teardown()

	r, err := runtime.New(lib, opts, runtime.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Printf("Backend: %s\n", opts.Backend)
	fmt.Printf("State:   %s\n", r.State())

	if err := r.Start(ctx); err != nil {
		fmt.Printf("State:   %s\n", r.State())
		return fmt.Errorf("start: %w", err)
	}
	fmt.Printf("State:   %s\n", r.State())

	db, err := r.Database()
	if err != nil {
		return err
	}
	fmt.Printf("Database handle: %#x\n", uint64(db))

	if sqlite, ok := lib.(*sqlitelib.Library); ok {
		if conn, found := sqlite.DB(db); found {
			var version string
			if err := conn.QueryRow(`SELECT sqlite_version()`).Scan(&version); err == nil {
				fmt.Printf("SQLite version: %s\n", version)
			}
		}
	}

	if err := r.Close(ctx); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	fmt.Printf("State:   %s\n", r.State())
	return nil
}
