package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	halcyon "github.com/halcyondb/halcyon-go"
	"github.com/halcyondb/halcyon-go/ffi"
)

// Config holds configuration for library creation.
type Config struct {
	// MemoryLimitPages sets the maximum guest memory in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Library runs a wasm build of the native database runtime under wazero
// and exposes it through the boundary contract. Lifecycle calls are
// dispatched on their own goroutines; completions arrive through the
// halcyon_host import module, so the callback threading matches a real
// native library.
type Library struct {
	runtime wazero.Runtime
	module  api.Module
	memory  *wasmMemory
	alloc   *wasmAllocator

	// Serializes all guest calls; a module instance is single-threaded.
	callMu   sync.Mutex
	stackBuf []uint64

	cbMu      sync.Mutex
	starts    map[halcyon.Token]halcyon.StartFunc
	connects  map[halcyon.Token]halcyon.ConnectFunc
	shutdowns map[halcyon.Token]halcyon.ShutdownFunc
}

// New compiles and instantiates a Halcyon wasm build. The binary must
// export the halcyon_* lifecycle and allocator functions; its completion
// imports are bound before instantiation.
func New(ctx context.Context, wasmBytes []byte, cfg *Config) (*Library, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	l := &Library{
		runtime:   r,
		stackBuf:  make([]uint64, 8),
		starts:    make(map[halcyon.Token]halcyon.StartFunc),
		connects:  make(map[halcyon.Token]halcyon.ConnectFunc),
		shutdowns: make(map[halcyon.Token]halcyon.ShutdownFunc),
	}

	if err := l.bindHostModule(ctx); err != nil {
		r.Close(ctx)
		return nil, err
	}

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("compile failed: %w", err)
	}

	module, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiate failed: %w", err)
	}
	l.module = module

	for _, name := range requiredExports {
		if module.ExportedFunction(name) == nil {
			r.Close(ctx)
			return nil, fmt.Errorf("guest does not export %q", name)
		}
	}
	mem := module.Memory()
	if mem == nil {
		r.Close(ctx)
		return nil, fmt.Errorf("guest exports no memory")
	}

	l.memory = &wasmMemory{mem: mem}
	l.alloc = &wasmAllocator{
		callMu:   &l.callMu,
		allocFn:  module.ExportedFunction(exportAlloc),
		freeFn:   module.ExportedFunction(exportFree),
		stackBuf: make([]uint64, 4),
	}
	return l, nil
}

// bindHostModule registers the completion imports the guest calls back
// through.
func (l *Library) bindHostModule(ctx context.Context) error {
	_, err := l.runtime.NewHostModuleBuilder(hostModuleName).
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, token uint64, errPtr uint32) {
			l.completeStart(halcyon.Token(token), errPtr)
		}).
		Export(hostRuntimeStarted).
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, token uint64, db uint64, errPtr uint32) {
			l.completeConnect(halcyon.Token(token), halcyon.Database(db), errPtr)
		}).
		Export(hostDBConnected).
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, token uint64, errPtr uint32) {
			l.completeShutdown(halcyon.Token(token), errPtr)
		}).
		Export(hostRuntimeStopped).
		Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("bind host module: %w", err)
	}
	return nil
}

func (l *Library) Memory() halcyon.Memory       { return l.memory }
func (l *Library) Allocator() halcyon.Allocator { return l.alloc }

// Close tears the wazero runtime down. Use RuntimeShutdown for graceful
// teardown first; Close alone aborts the guest.
func (l *Library) Close(ctx context.Context) error {
	return l.runtime.Close(ctx)
}

// call invokes one guest export with the given stack words.
func (l *Library) call(name string, args ...uint64) error {
	l.callMu.Lock()
	defer l.callMu.Unlock()

	copy(l.stackBuf, args)
	fn := l.module.ExportedFunction(name)
	return fn.CallWithStack(context.Background(), l.stackBuf[:len(args)])
}

// synthError places a runtime-error with the given message into guest
// memory. Used when the guest itself trapped and could not report.
func (l *Library) synthError(message string) uint32 {
	ptr, err := ffi.StoreError(l.memory, l.alloc, nil, ffi.TagRuntimeError, message)
	if err != nil {
		Logger().Error("store synthesized error", zap.Error(err))
		return 0
	}
	return ptr
}

func (l *Library) RuntimeStart(cb halcyon.StartFunc, token halcyon.Token) {
	l.cbMu.Lock()
	l.starts[token] = cb
	l.cbMu.Unlock()

	go func() {
		if err := l.call(exportRuntimeStart, uint64(token)); err != nil {
			Logger().Error("runtime start trapped", zap.Error(err))
			l.completeStart(token, l.synthError(err.Error()))
		}
	}()
}

func (l *Library) DBConnect(optionsPtr uint32, cb halcyon.ConnectFunc, token halcyon.Token) {
	l.cbMu.Lock()
	l.connects[token] = cb
	l.cbMu.Unlock()

	go func() {
		if err := l.call(exportDBConnect, uint64(optionsPtr), uint64(token)); err != nil {
			Logger().Error("db connect trapped", zap.Error(err))
			l.completeConnect(token, 0, l.synthError(err.Error()))
		}
	}()
}

func (l *Library) DBFree(db halcyon.Database) {
	go func() {
		if err := l.call(exportDBFree, uint64(db)); err != nil {
			Logger().Warn("db free trapped", zap.Error(err))
		}
	}()
}

func (l *Library) RuntimeShutdown(maxDurationMillis uint64, cb halcyon.ShutdownFunc, token halcyon.Token) {
	l.cbMu.Lock()
	l.shutdowns[token] = cb
	l.cbMu.Unlock()

	go func() {
		if err := l.call(exportRuntimeShutdown, maxDurationMillis, uint64(token)); err != nil {
			Logger().Error("runtime shutdown trapped", zap.Error(err))
			l.completeShutdown(token, l.synthError(err.Error()))
		}
	}()
}

// Completion dispatch. Each token resolves at most once; a completion for
// an unknown token is logged and dropped.

func (l *Library) completeStart(token halcyon.Token, errPtr uint32) {
	l.cbMu.Lock()
	cb, ok := l.starts[token]
	delete(l.starts, token)
	l.cbMu.Unlock()
	if !ok {
		Logger().Warn("start completion for unknown token", zap.Uint64("token", uint64(token)))
		return
	}
	cb(token, errPtr)
}

func (l *Library) completeConnect(token halcyon.Token, db halcyon.Database, errPtr uint32) {
	l.cbMu.Lock()
	cb, ok := l.connects[token]
	delete(l.connects, token)
	l.cbMu.Unlock()
	if !ok {
		Logger().Warn("connect completion for unknown token", zap.Uint64("token", uint64(token)))
		return
	}
	cb(token, db, errPtr)
}

func (l *Library) completeShutdown(token halcyon.Token, errPtr uint32) {
	l.cbMu.Lock()
	cb, ok := l.shutdowns[token]
	delete(l.shutdowns, token)
	l.cbMu.Unlock()
	if !ok {
		Logger().Warn("shutdown completion for unknown token", zap.Uint64("token", uint64(token)))
		return
	}
	cb(token, errPtr)
}

var _ halcyon.Library = (*Library)(nil)
