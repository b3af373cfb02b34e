// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/inkjet/inkjet/internal/config"
	"github.com/inkjet/inkjet/internal/logging"
)

const (
	RuntimeTypeNative  RuntimeType = "native"
	RuntimeTypeVirtual RuntimeType = "virtual"
)

// ErrRuntimeNotRegistered is wrapped by RuntimeNotRegisteredError.
var ErrRuntimeNotRegistered = errors.New("runtime not registered")

type (
	// RuntimeType names a registered runtime.
	//
	//nolint:revive // runtime.Type would collide with reflect-style naming
	RuntimeType string

	// RuntimeNotRegisteredError is returned by Registry.Get for unknown types.
	RuntimeNotRegisteredError struct {
		Type RuntimeType
	}

	// Registry maps runtime types to implementations.
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}

	// BuildRegistryOptions configures BuildRegistry. Both fields are optional.
	BuildRegistryOptions struct {
		// Config supplies the shell and interpreter overrides.
		Config *config.Config
		Logger *log.Logger
	}
)

func (e *RuntimeNotRegisteredError) Error() string {
	return fmt.Sprintf("runtime '%s' not registered", e.Type)
}

func (e *RuntimeNotRegisteredError) Unwrap() error { return ErrRuntimeNotRegistered }

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{runtimes: map[RuntimeType]Runtime{}}
}

// BuildRegistry registers the native runtime and a virtual runtime that hands
// non-shell languages to it.
func BuildRegistry(opts BuildRegistryOptions) *Registry {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	native := NewNativeRuntime(WithShell(cfg.Shell), WithInterpreters(cfg.Interpreters))
	r := NewRegistry()
	r.Register(RuntimeTypeNative, native)
	r.Register(RuntimeTypeVirtual, NewVirtualRuntime(native, logger))
	return r
}

// SelectRuntime returns the runtime type for cfg.DefaultRuntime.
func SelectRuntime(cfg *config.Config) RuntimeType {
	if cfg == nil || cfg.DefaultRuntime != config.RuntimeVirtual {
		return RuntimeTypeNative
	}
	return RuntimeTypeVirtual
}

// Register adds or replaces the runtime for typ.
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns the runtime registered for typ.
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	if rt, ok := r.runtimes[typ]; ok {
		return rt, nil
	}
	return nil, &RuntimeNotRegisteredError{Type: typ}
}

// Execute runs ctx with its selected runtime. Lookup and validation failures
// come back as a Result with exit code 1.
func (r *Registry) Execute(ctx *ExecutionContext) *Result {
	rt, err := r.Get(ctx.SelectedRuntime)
	switch {
	case err != nil:
		return failed(err)
	case !rt.Available():
		return failed(fmt.Errorf("runtime '%s' is not available on this system", rt.Name()))
	}
	if err := rt.Validate(ctx); err != nil {
		return failed(err)
	}
	return rt.Execute(ctx)
}
