package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/keybridge/dom"
	"github.com/wippyai/keybridge/errors"
)

// WazeroConfig configures a Wazero loader.
type WazeroConfig struct {
	// FS is where module paths are read from. nil means the OS filesystem.
	FS afero.Fs

	// HTTPClient fetches http:// and https:// module paths. nil means http.DefaultClient.
	HTTPClient *http.Client

	// ModuleName is the guest's instance name. Default "game".
	ModuleName string

	// MemoryLimitPages caps guest memory in 64KiB pages. 0 means the wazero default.
	MemoryLimitPages uint32
}

// Wazero runs a core WebAssembly module as the embedded module. Once loaded,
// the guest listens on the surface: every keydown and keyup observed there is
// forwarded to its key_event export.
type Wazero struct {
	surface   dom.Element
	hosts     *HostRegistry
	cfg       WazeroConfig
	rt        wazero.Runtime
	mod       api.Module
	keyEvent  api.Function
	listeners []dom.ListenerID
	mu        sync.Mutex
}

var _ Loader = (*Wazero)(nil)

// NewWazero creates a loader whose guest attaches to surface.
func NewWazero(surface dom.Element, cfg *WazeroConfig) *Wazero {
	w := &Wazero{
		surface: surface,
		hosts:   NewHostRegistry(),
	}
	if cfg != nil {
		w.cfg = *cfg
	}
	if w.cfg.FS == nil {
		w.cfg.FS = afero.NewOsFs()
	}
	if w.cfg.HTTPClient == nil {
		w.cfg.HTTPClient = http.DefaultClient
	}
	if w.cfg.ModuleName == "" {
		w.cfg.ModuleName = "game"
	}
	return w
}

// Hosts returns the registry of host functions offered to the guest.
// Register functions before Load.
func (w *Wazero) Hosts() *HostRegistry {
	return w.hosts
}

// Load implements Loader.
func (w *Wazero) Load(ctx context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.rt != nil {
		return errors.InvalidInput(errors.PhaseLoad, "module already loaded")
	}

	wasm, err := w.read(ctx, path)
	if err != nil {
		return errors.Load("read "+path, err)
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if w.cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(w.cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	mod, keyEvent, err := w.instantiate(ctx, rt, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return err
	}

	w.rt = rt
	w.mod = mod
	w.keyEvent = keyEvent
	w.attach(context.WithoutCancel(ctx))

	Logger().Debug("guest attached",
		zap.String("module", w.cfg.ModuleName),
		zap.String("surface", w.surface.ID()),
	)
	return nil
}

func (w *Wazero) instantiate(ctx context.Context, rt wazero.Runtime, wasm []byte) (api.Module, api.Function, error) {
	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, nil, errors.Load("compile module", err)
	}

	exports := compiled.ExportedFunctions()
	if _, err := keyEventExport.check(exports); err != nil {
		return nil, nil, err
	}
	hasInit, err := initExport.check(exports)
	if err != nil {
		return nil, nil, err
	}

	if missing := w.hosts.missing(compiled); len(missing) > 0 {
		return nil, nil, errors.MissingImports(missing)
	}
	if err := w.hosts.instantiate(ctx, rt); err != nil {
		return nil, nil, err
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(w.cfg.ModuleName))
	if err != nil {
		return nil, nil, errors.Instantiation(err)
	}

	if hasInit {
		if _, err := mod.ExportedFunction(initExport.name).Call(ctx); err != nil {
			return nil, nil, errors.Instantiation(fmt.Errorf("init: %w", err))
		}
	}

	return mod, mod.ExportedFunction(keyEventExport.name), nil
}

// attach registers the guest's keyboard listeners on the surface.
func (w *Wazero) attach(ctx context.Context) {
	w.listeners = append(w.listeners,
		w.surface.AddEventListener(dom.KeyDown, func(ev dom.Event) {
			w.deliver(ctx, PhaseKeyDown, ev)
		}),
		w.surface.AddEventListener(dom.KeyUp, func(ev dom.Event) {
			w.deliver(ctx, PhaseKeyUp, ev)
		}),
	)
}

// deliver calls key_event. Guest instances are not safe for concurrent calls.
func (w *Wazero) deliver(ctx context.Context, phase uint32, ev dom.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.keyEvent == nil {
		return
	}
	if _, err := w.keyEvent.Call(ctx, api.EncodeU32(phase), api.EncodeU32(ev.KeyCode)); err != nil {
		Logger().Warn("guest key_event failed",
			zap.String("code", ev.Code),
			zap.Uint32("phase", phase),
			zap.Error(err),
		)
	}
}

func (w *Wazero) read(ctx context.Context, path string) ([]byte, error) {
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		return afero.ReadFile(w.cfg.FS, path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Close detaches the guest from the surface and releases the runtime.
func (w *Wazero) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, id := range w.listeners {
		w.surface.RemoveEventListener(id)
	}
	w.listeners = nil
	w.keyEvent = nil
	w.mod = nil

	if w.rt == nil {
		return nil
	}
	err := w.rt.Close(ctx)
	w.rt = nil
	return err
}
