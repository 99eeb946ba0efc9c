package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/wippyai/keybridge/bridge"
	"github.com/wippyai/keybridge/config"
	"github.com/wippyai/keybridge/dom"
	"github.com/wippyai/keybridge/loader"
)

// app is one page: a document holding the surface and the control elements,
// the embedded module loader, and the bridge between them.
type app struct {
	cfg     *config.Config
	doc     *dom.Memory
	surface *dom.Node
	wasm    *loader.Wazero
	bridge  *bridge.Bridge
	log     *zap.Logger
	cancel  context.CancelFunc
}

func newApp(cfg *config.Config, fs afero.Fs, log *zap.Logger, onError func(string, error)) (*app, error) {
	controls, err := cfg.BridgeControls()
	if err != nil {
		return nil, err
	}

	doc := dom.NewMemory()
	surface := doc.Append(cfg.Surface.ID)
	for _, c := range controls {
		doc.Append(c.ID)
	}

	wasm := loader.NewWazero(surface, &loader.WazeroConfig{
		FS:               fs,
		ModuleName:       cfg.Module.Name,
		MemoryLimitPages: cfg.Module.MemoryLimitPages,
	})

	b, err := bridge.New(doc, bridge.Options{
		Loader:     wasm,
		Logger:     log.Named("bridge"),
		OnError:    onError,
		ModulePath: cfg.Module.Path,
		SurfaceID:  cfg.Surface.ID,
		Controls:   controls,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		doc:     doc,
		surface: surface,
		wasm:    wasm,
		bridge:  b,
		log:     log,
	}, nil
}

// observeKeys calls fn for every key event the surface receives.
func (a *app) observeKeys(fn func(dom.Event)) {
	a.surface.AddEventListener(dom.KeyDown, fn)
	a.surface.AddEventListener(dom.KeyUp, fn)
}

// start begins the load under a context that close cancels.
func (a *app) start(ctx context.Context) {
	if a.cancel != nil {
		return
	}
	ctx, a.cancel = context.WithCancel(ctx)
	a.bridge.Start(ctx)
}

// close abandons a load still in flight, then releases the module.
func (a *app) close(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	if task := a.bridge.LoadTask(); task != nil {
		<-task.Done()
	}
	if err := a.wasm.Close(ctx); err != nil {
		a.log.Warn("close module", zap.Error(err))
	}
}

func formatKey(ev dom.Event) string {
	return fmt.Sprintf("%-7s %-10s %d", ev.Type, ev.Code, ev.KeyCode)
}
