package bridge

import (
	"go.uber.org/zap"

	"github.com/wippyai/keybridge/dom"
	"github.com/wippyai/keybridge/errors"
)

// Registry is the fixed mapping from control elements to synthetic keys,
// resolved once against the document.
type Registry struct {
	bindings []binding
	byID     map[string]binding
}

// NewRegistry resolves every control's element in doc. A control whose element
// is absent is logged and left inert. Duplicate or empty ids are rejected, as
// is a control on the surface itself.
func NewRegistry(doc dom.Document, surfaceID string, controls []VirtualControl, focus *FocusCoordinator, synth *Synthesizer, report func(VirtualControl, error), log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if report == nil {
		report = func(VirtualControl, error) {}
	}

	r := &Registry{
		bindings: make([]binding, 0, len(controls)),
		byID:     make(map[string]binding, len(controls)),
	}

	for _, ctl := range controls {
		if ctl.ID == "" {
			return nil, errors.InvalidInput(errors.PhaseRegistry, "control id cannot be empty")
		}
		if ctl.ID == surfaceID {
			return nil, errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
				Element(ctl.ID).
				Detail("control id is the surface id").
				Build()
		}
		if _, dup := r.byID[ctl.ID]; dup {
			return nil, errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
				Element(ctl.ID).
				Detail("duplicate control id").
				Build()
		}

		var b binding
		el, ok := doc.ElementByID(ctl.ID)
		switch {
		case !ok:
			log.Warn("control element not found; control is inert",
				zap.String("id", ctl.ID),
				zap.String("code", ctl.Code),
			)
			b = inert{ctl: ctl}
		case ctl.Mode == ModeOneShot:
			b = &oneShot{ctl: ctl, el: el, focus: focus, synth: synth, report: report, state: StateActive}
		case ctl.Mode == ModeMomentary:
			b = &momentary{ctl: ctl, el: el, focus: focus, synth: synth, report: report}
		default:
			return nil, errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
				Element(ctl.ID).
				Value(ctl.Mode).
				Detail("unknown control mode").
				Build()
		}

		r.bindings = append(r.bindings, b)
		r.byID[ctl.ID] = b
	}

	return r, nil
}

// bind registers the gesture listeners of every resolved control.
func (r *Registry) bind() {
	for _, b := range r.bindings {
		b.bind()
	}
}

// Status returns a snapshot of every control in registration order.
func (r *Registry) Status() []ControlStatus {
	out := make([]ControlStatus, len(r.bindings))
	for i, b := range r.bindings {
		out[i] = b.status()
	}
	return out
}

// Lookup returns the status of the control with id.
func (r *Registry) Lookup(id string) (ControlStatus, bool) {
	b, ok := r.byID[id]
	if !ok {
		return ControlStatus{}, false
	}
	return b.status(), true
}
