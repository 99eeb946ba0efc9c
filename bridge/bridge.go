package bridge

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/keybridge/dom"
	"github.com/wippyai/keybridge/errors"
	"github.com/wippyai/keybridge/loader"
)

// DefaultSurfaceID is the element id of the embedded module's canvas.
const DefaultSurfaceID = "canvas"

// Options configures a Bridge.
type Options struct {
	// Loader loads the embedded module. Nil skips loading.
	Loader loader.Loader
	// Logger overrides the package logger.
	Logger *zap.Logger
	// OnError observes gesture handling failures in addition to logging.
	OnError func(controlID string, err error)
	// ModulePath is passed to Loader.
	ModulePath string
	// SurfaceID defaults to DefaultSurfaceID.
	SurfaceID string
	// Controls defaults to DefaultControls.
	Controls []VirtualControl
}

// Bridge turns gestures on registered controls into synthetic key events on
// the surface. It is built once per page and never torn down.
type Bridge struct {
	doc        dom.Document
	surface    dom.Element
	focus      *FocusCoordinator
	synth      *Synthesizer
	registry   *Registry
	loader     loader.Loader
	log        *zap.Logger
	onError    func(string, error)
	task       *loader.Task
	modulePath string
	startOnce  sync.Once
}

// New looks up the surface and resolves the control registry. A missing
// surface is a configuration error and is returned rather than tolerated.
func New(doc dom.Document, opts Options) (*Bridge, error) {
	log := opts.Logger
	if log == nil {
		log = Logger()
	}

	surfaceID := opts.SurfaceID
	if surfaceID == "" {
		surfaceID = DefaultSurfaceID
	}
	surface, ok := doc.ElementByID(surfaceID)
	if !ok {
		return nil, errors.SurfaceMissing(surfaceID)
	}

	controls := opts.Controls
	if controls == nil {
		controls = DefaultControls()
	}

	b := &Bridge{
		doc:        doc,
		surface:    surface,
		focus:      NewFocusCoordinator(surface),
		synth:      NewSynthesizer(surface, log),
		loader:     opts.Loader,
		log:        log,
		onError:    opts.OnError,
		modulePath: opts.ModulePath,
	}

	reg, err := NewRegistry(doc, surfaceID, controls, b.focus, b.synth, b.report, log)
	if err != nil {
		return nil, err
	}
	b.registry = reg

	return b, nil
}

// Start begins loading the embedded module and binds every control. The load
// runs on its own and its outcome is only logged; controls work immediately,
// and events sent before the module attaches are simply not observed by it.
// Calls after the first are no-ops.
func (b *Bridge) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		if b.loader != nil {
			b.task = loader.Go(ctx, b.loader, b.modulePath)
		}
		b.registry.bind()
		b.log.Info("bridge started",
			zap.String("surface", b.surface.ID()),
			zap.Int("controls", len(b.registry.bindings)),
		)
	})
}

// LoadTask returns the module load started by Start, or nil.
func (b *Bridge) LoadTask() *loader.Task {
	return b.task
}

// Surface returns the focus and dispatch target.
func (b *Bridge) Surface() dom.Element {
	return b.surface
}

// Controls returns a status snapshot of every registered control.
func (b *Bridge) Controls() []ControlStatus {
	return b.registry.Status()
}

// Control returns the status of one control.
func (b *Bridge) Control(id string) (ControlStatus, bool) {
	return b.registry.Lookup(id)
}

// Trigger dispatches a gesture event on a control's element, exactly as if the
// user had produced it. Controls no longer in the document cannot be triggered.
func (b *Bridge) Trigger(id string, t dom.EventType) error {
	switch t {
	case dom.Click, dom.PointerDown, dom.PointerUp, dom.PointerCancel:
	default:
		return errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Element(id).
			Value(t).
			Detail("%q is not a gesture event", t).
			Build()
	}

	el, ok := b.doc.ElementByID(id)
	if !ok {
		return errors.NotFound(errors.PhaseDispatch, "control", id)
	}
	el.DispatchEvent(dom.Event{Type: t, Target: id})
	return nil
}

// Tap dispatches pointerdown, pointerup and click in that order.
func (b *Bridge) Tap(id string) error {
	for _, t := range []dom.EventType{dom.PointerDown, dom.PointerUp, dom.Click} {
		if err := b.Trigger(id, t); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bridge) report(ctl VirtualControl, err error) {
	b.log.Error("gesture handling failed",
		zap.String("id", ctl.ID),
		zap.String("mode", ctl.Mode.String()),
		zap.Error(err),
	)
	if b.onError != nil {
		b.onError(ctl.ID, err)
	}
}
