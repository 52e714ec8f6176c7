// Package wasmhost loads and evaluates embedded WASM policy modules, the
// RegoWasm matcher's runtime home: a single compiled module, instantiated
// per evaluation, fuel- and memory-bounded, built on
// github.com/bytecodealliance/wasmtime-go/v3.
package wasmhost

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/bytecodealliance/wasmtime-go/v3"

	"github.com/polyglotscan/engine/internal/engineerr"
)

const (
	minModuleSize  = 8
	maxModuleSize  = 10 * 1024 * 1024
	fuelBudget     = 10_000_000
	memoryCapBytes = 10 * 1024 * 1024
	evalTimeout    = 2 * time.Second
)

var wasmMagic = []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}

// ValidateModule checks the size and header invariants of a compiled
// module, duplicated independently from internal/rules' own check since the
// two packages must not import each other.
func ValidateModule(data []byte) error {
	if len(data) < minModuleSize || len(data) > maxModuleSize {
		return errors.New("wasm module size out of bounds")
	}
	for i, b := range wasmMagic {
		if data[i] != b {
			return errors.New("wasm module missing \\0asm header")
		}
	}
	return nil
}

// compiledModule is the "warmed up" state for one module path: the engine
// and compiled module are expensive to build and are shared across every
// evaluation; a fresh Store+Instance pair is created per call since
// wasmtime Stores are not safe for concurrent reuse and carry per-call fuel
// state that must not leak between evaluations.
type compiledModule struct {
	engine *wasmtime.Engine
	module *wasmtime.Module
}

// Pool holds warmed (compiled) modules keyed by module path. Every Eval call
// is a fresh, non-blocking instantiation off the shared compiled module, so
// checkout contention is never observable.
type Pool struct {
	mu      sync.RWMutex
	modules map[string]*compiledModule
}

// NewPool returns an empty warm-up pool.
func NewPool() *Pool {
	return &Pool{modules: make(map[string]*compiledModule)}
}

// Warm validates and compiles the module at path, idempotently. Compiling
// is the expensive, one-time cost; Eval only has to instantiate afterwards.
func (p *Pool) Warm(path string, data []byte) error {
	if err := ValidateModule(data); err != nil {
		return &engineerr.RuleCompileError{Source: path, Err: err}
	}

	p.mu.RLock()
	_, ok := p.modules[path]
	p.mu.RUnlock()
	if ok {
		return nil
	}

	cfg := wasmtime.NewConfig()
	cfg.SetConsumeFuel(true)
	engine := wasmtime.NewEngineWithConfig(cfg)
	module, err := wasmtime.NewModule(engine, data)
	if err != nil {
		return &engineerr.RuleCompileError{Source: path, Err: err}
	}

	p.mu.Lock()
	p.modules[path] = &compiledModule{engine: engine, module: module}
	p.mu.Unlock()
	return nil
}

// entrypointCandidates returns the entrypoint fallback order: as given,
// stripped of a leading "data.", then with "." replaced by "/".
func entrypointCandidates(entrypoint string) []string {
	candidates := []string{entrypoint}
	stripped := entrypoint
	if len(stripped) > 5 && stripped[:5] == "data." {
		stripped = stripped[5:]
		candidates = append(candidates, stripped)
	}
	slashed := make([]byte, 0, len(stripped))
	for i := 0; i < len(stripped); i++ {
		if stripped[i] == '.' {
			slashed = append(slashed, '/')
		} else {
			slashed = append(slashed, stripped[i])
		}
	}
	if string(slashed) != stripped {
		candidates = append(candidates, string(slashed))
	}
	return candidates
}

// Eval instantiates a fresh Store/Instance for path and invokes the first
// working entrypoint candidate with input serialised as JSON, returning the
// decoded JSON output value. It never blocks longer than evalTimeout.
func (p *Pool) Eval(path string, input []byte, entrypoint string) (any, error) {
	p.mu.RLock()
	cm, ok := p.modules[path]
	p.mu.RUnlock()
	if !ok {
		return nil, &engineerr.RuleCompileError{Source: path, Err: errors.New("wasm module not warmed")}
	}

	type result struct {
		out any
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := evalOnce(cm, input, entrypoint)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		return r.out, r.err
	case <-time.After(evalTimeout):
		return nil, engineerr.ErrTimeout
	}
}

func evalOnce(cm *compiledModule, input []byte, entrypoint string) (any, error) {
	store := wasmtime.NewStore(cm.engine)
	if err := store.AddFuel(fuelBudget); err != nil {
		return nil, &engineerr.WasmError{Err: err}
	}
	store.Limiter(memoryCapBytes, -1, -1, -1, -1)

	linker := wasmtime.NewLinker(cm.engine)
	instance, err := linker.Instantiate(store, cm.module)
	if err != nil {
		return nil, &engineerr.WasmError{Err: err}
	}

	memExport := instance.GetExport(store, "memory")
	allocExport := instance.GetExport(store, "alloc")
	if memExport == nil || memExport.Memory() == nil || allocExport == nil || allocExport.Func() == nil {
		return nil, &engineerr.WasmError{Err: errors.New("module missing memory/alloc exports")}
	}
	mem := memExport.Memory()
	alloc := allocExport.Func()

	rawPtr, err := alloc.Call(store, int32(len(input)))
	if err != nil {
		return nil, &engineerr.WasmError{Err: err}
	}
	ptr, ok := rawPtr.(int32)
	if !ok {
		return nil, &engineerr.WasmError{Err: errors.New("alloc did not return an i32 pointer")}
	}

	data := mem.UnsafeData(store)
	if int(ptr)+len(input) > len(data) {
		return nil, &engineerr.WasmError{Err: errors.New("wasm memory too small for input")}
	}
	copy(data[ptr:], input)

	var lastErr error
	for _, candidate := range entrypointCandidates(entrypoint) {
		fnExport := instance.GetExport(store, candidate)
		if fnExport == nil || fnExport.Func() == nil {
			lastErr = engineerr.ErrEntrypointNotFound
			continue
		}
		packed, callErr := fnExport.Func().Call(store, ptr, int32(len(input)))
		if callErr != nil {
			return nil, &engineerr.WasmError{Err: callErr}
		}
		packedVal, ok := packed.(int64)
		if !ok {
			return nil, &engineerr.WasmError{Err: errors.New("entrypoint did not return a packed i64 pointer")}
		}
		outPtr := uint32(uint64(packedVal) >> 32)
		outLen := uint32(uint64(packedVal))
		data = mem.UnsafeData(store)
		if uint64(outPtr)+uint64(outLen) > uint64(len(data)) {
			return nil, &engineerr.WasmError{Err: errors.New("wasm output pointer out of bounds")}
		}
		outBytes := make([]byte, outLen)
		copy(outBytes, data[outPtr:outPtr+outLen])

		var out any
		if err := json.Unmarshal(outBytes, &out); err != nil {
			return nil, &engineerr.WasmError{Err: err}
		}
		return out, nil
	}
	return nil, lastErr
}
