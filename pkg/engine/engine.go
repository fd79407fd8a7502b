/*
Package engine defines the capability surface of the external prediction engine.

The engine is a third-party module reached through exactly four capabilities:

	Create(config)                 -> Result
	Destroy()
	RunCommand(cmd, arg1, arg2)    -> Result
	ReleaseAllocation(alloc)       -> Result

Everything else (tokenizing, learning, suggestion ranking, dictionary formats) is
engine-internal and not visible from here.

A Module is the loaded engine binary seen as a symbol table. Bind resolves the four
capabilities from a Module and returns an Engine, failing with ErrMissingCapability
if any symbol is absent or has the wrong shape. Loader is the host hook that produces
a Module: a native loader in production, memengine in tests and the CLI.

Commands exchange data through the argument values. Lists and replies filled by the
engine embed Alloc and must be handed back through ReleaseAllocation exactly once.
An Alloc with a zero ID was never allocated and needs no release.
*/
package engine

import (
	"errors"
	"fmt"
)

// Symbol names resolved by Bind.
const (
	SymbolCreate            = "EngineCreate"
	SymbolDestroy           = "EngineDestroy"
	SymbolRunCommand        = "EngineRunCommand"
	SymbolReleaseAllocation = "EngineReleaseAllocation"
)

// ErrMissingCapability is returned by Bind when a module lacks one of the engine symbols.
var ErrMissingCapability = errors.New("engine: missing capability")

// Config carries the init items recognized at creation.
type Config struct {
	LockingEnabled bool
	BasePath       string
}

// Commander is the part of the engine used by components that only issue commands.
type Commander interface {
	RunCommand(cmd Command, arg1, arg2 any) Result
	ReleaseAllocation(alloc Allocation) Result
}

// Engine is the full capability interface.
type Engine interface {
	Commander
	Create(cfg Config) Result
	Destroy()
}

// Capability function shapes a Module must export.
type (
	CreateFunc            func(cfg Config) Result
	DestroyFunc           func()
	RunCommandFunc        func(cmd Command, arg1, arg2 any) Result
	ReleaseAllocationFunc func(alloc Allocation) Result
)

// Module is a loaded engine binary.
type Module interface {
	// Symbol looks up an exported capability by name.
	Symbol(name string) (any, bool)
	// Close releases the module handle.
	Close() error
}

// Loader acquires the engine module.
type Loader interface {
	Load() (Module, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func() (Module, error)

// Load calls f.
func (f LoaderFunc) Load() (Module, error) { return f() }

// SymbolTable is a Module backed by a map. OnClose, if set, runs on Close.
type SymbolTable struct {
	Symbols map[string]any
	OnClose func() error
}

// Symbol implements Module.
func (t *SymbolTable) Symbol(name string) (any, bool) {
	sym, ok := t.Symbols[name]
	return sym, ok
}

// Close implements Module.
func (t *SymbolTable) Close() error {
	if t.OnClose != nil {
		return t.OnClose()
	}
	return nil
}

// Exports builds the symbol map for an Engine value, used by in-process engines.
func Exports(e Engine) map[string]any {
	return map[string]any{
		SymbolCreate:            CreateFunc(e.Create),
		SymbolDestroy:           DestroyFunc(e.Destroy),
		SymbolRunCommand:        RunCommandFunc(e.RunCommand),
		SymbolReleaseAllocation: ReleaseAllocationFunc(e.ReleaseAllocation),
	}
}

// bound is an Engine assembled from resolved module symbols.
type bound struct {
	create  CreateFunc
	destroy DestroyFunc
	run     RunCommandFunc
	release ReleaseAllocationFunc
}

func (b *bound) Create(cfg Config) Result { return b.create(cfg) }
func (b *bound) Destroy()                 { b.destroy() }
func (b *bound) RunCommand(cmd Command, arg1, arg2 any) Result {
	return b.run(cmd, arg1, arg2)
}
func (b *bound) ReleaseAllocation(alloc Allocation) Result { return b.release(alloc) }

// Bind resolves every capability from m. The module is not closed on failure;
// that is left to the caller which owns the handle.
func Bind(m Module) (Engine, error) {
	b := &bound{}
	var ok bool

	if b.create, ok = lookup[CreateFunc](m, SymbolCreate); !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingCapability, SymbolCreate)
	}
	if b.destroy, ok = lookup[DestroyFunc](m, SymbolDestroy); !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingCapability, SymbolDestroy)
	}
	if b.run, ok = lookup[RunCommandFunc](m, SymbolRunCommand); !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingCapability, SymbolRunCommand)
	}
	if b.release, ok = lookup[ReleaseAllocationFunc](m, SymbolReleaseAllocation); !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingCapability, SymbolReleaseAllocation)
	}
	return b, nil
}

func lookup[F any](m Module, name string) (F, bool) {
	var zero F
	sym, ok := m.Symbol(name)
	if !ok || sym == nil {
		return zero, false
	}
	fn, ok := sym.(F)
	return fn, ok
}
