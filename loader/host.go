package loader

import (
	"context"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/keybridge/errors"
)

// HostModule is the import namespace the bridge always provides to guests.
const HostModule = "keybridge"

// HostRegistry holds Go functions exposed to the guest as imports, keyed by
// module and function name.
type HostRegistry struct {
	funcs map[string]map[string]any
	mu    sync.RWMutex
}

// NewHostRegistry creates a registry pre-populated with keybridge.log.
func NewHostRegistry() *HostRegistry {
	r := &HostRegistry{
		funcs: make(map[string]map[string]any),
	}
	r.funcs[HostModule] = map[string]any{
		"log": guestLog,
	}
	return r
}

// RegisterFunc exposes fn as module.name. fn must have a signature wazero's
// WithFunc accepts, e.g. func(context.Context, uint32, uint32).
func (r *HostRegistry) RegisterFunc(module, name string, fn any) error {
	if module == "" || name == "" {
		return errors.InvalidInput(errors.PhaseHost, "module and name cannot be empty")
	}
	if fn == nil {
		return errors.Registration(module, name, errors.InvalidInput(errors.PhaseHost, "nil function"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[module] == nil {
		r.funcs[module] = make(map[string]any)
	}
	r.funcs[module][name] = fn
	return nil
}

// Has reports whether module.name is registered.
func (r *HostRegistry) Has(module, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[module][name]
	return ok
}

// missing returns the guest imports no registered function satisfies, as
// "module#name" keys.
func (r *HostRegistry) missing(compiled wazero.CompiledModule) []string {
	var out []string
	for _, def := range compiled.ImportedFunctions() {
		mod, name, _ := def.Import()
		if !r.Has(mod, name) {
			out = append(out, mod+"#"+name)
		}
	}
	return out
}

// instantiate builds one host module per registered namespace in rt.
func (r *HostRegistry) instantiate(ctx context.Context, rt wazero.Runtime) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modules := make([]string, 0, len(r.funcs))
	for mod := range r.funcs {
		modules = append(modules, mod)
	}
	sort.Strings(modules)

	for _, mod := range modules {
		builder := rt.NewHostModuleBuilder(mod)
		names := make([]string, 0, len(r.funcs[mod]))
		for name := range r.funcs[mod] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			builder.NewFunctionBuilder().WithFunc(r.funcs[mod][name]).Export(name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Registration(mod, "*", err)
		}
	}
	return nil
}

// guestLog lets the guest write a UTF-8 message into the bridge log.
func guestLog(_ context.Context, m api.Module, ptr, length uint32) {
	mem := m.Memory()
	if mem == nil {
		Logger().Warn("guest log without exported memory")
		return
	}
	buf, ok := mem.Read(ptr, length)
	if !ok {
		Logger().Warn("guest log out of range",
			zap.Uint32("ptr", ptr),
			zap.Uint32("len", length),
		)
		return
	}
	Logger().Info("guest", zap.String("msg", string(buf)))
}
