package bridge

import (
	"sync"

	"github.com/wippyai/keybridge/dom"
)

// binding is a control wired to its element.
type binding interface {
	bind()
	status() ControlStatus
}

// oneShot fires once on click, then unregisters and detaches its element.
//
// Active -> Removed is the only transition. The state is claimed before the
// dispatch so a click queued behind the first one finds the control removed.
type oneShot struct {
	ctl      VirtualControl
	el       dom.Element
	focus    *FocusCoordinator
	synth    *Synthesizer
	report   func(VirtualControl, error)
	mu       sync.Mutex
	listener dom.ListenerID
	state    State
}

func (o *oneShot) bind() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateActive
	o.listener = o.el.AddEventListener(dom.Click, func(dom.Event) {
		if err := o.activate(); err != nil {
			o.report(o.ctl, err)
		}
	})
}

func (o *oneShot) activate() error {
	o.mu.Lock()
	if o.state != StateActive {
		o.mu.Unlock()
		return nil
	}
	o.state = StateRemoved
	listener := o.listener
	o.mu.Unlock()

	if err := o.focus.EnsureFocus(); err != nil {
		// nothing was dispatched; leave the prompt usable
		o.mu.Lock()
		o.state = StateActive
		o.mu.Unlock()
		return err
	}
	o.synth.Press(o.ctl.Code)

	o.el.RemoveEventListener(listener)
	o.el.Remove()
	return nil
}

func (o *oneShot) status() ControlStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return ControlStatus{VirtualControl: o.ctl, State: o.state}
}

// momentary maps gesture start to key-down and gesture end to key-up. It
// cycles Idle -> Pressed -> Idle forever; the pressed state lives in the
// embedded module, not here.
type momentary struct {
	ctl    VirtualControl
	el     dom.Element
	focus  *FocusCoordinator
	synth  *Synthesizer
	report func(VirtualControl, error)
}

func (m *momentary) bind() {
	m.el.AddEventListener(dom.PointerDown, func(dom.Event) { m.start() })
	m.el.AddEventListener(dom.PointerUp, func(dom.Event) { m.end() })
	m.el.AddEventListener(dom.PointerCancel, func(dom.Event) { m.end() })
}

func (m *momentary) start() {
	if err := m.focus.EnsureFocus(); err != nil {
		m.report(m.ctl, err)
		return
	}
	m.synth.Press(m.ctl.Code)
}

// end releases even when focus fails, so a key-down that did go out is never
// left without its key-up.
func (m *momentary) end() {
	if err := m.focus.EnsureFocus(); err != nil {
		m.report(m.ctl, err)
	}
	m.synth.Release(m.ctl.Code)
}

func (m *momentary) status() ControlStatus {
	return ControlStatus{VirtualControl: m.ctl, State: StateActive}
}

// inert stands in for a control whose element was missing.
type inert struct {
	ctl VirtualControl
}

func (inert) bind() {}

func (i inert) status() ControlStatus {
	return ControlStatus{VirtualControl: i.ctl, State: StateInert}
}
