package bridge

import (
	"go.uber.org/zap"

	"github.com/wippyai/keybridge/dom"
)

// Synthesizer dispatches synthetic keyboard events to the surface.
//
// It keeps no pressed-key state: every Press and Release is independent, and
// Release without a prior Press is a plain key-up. Tracking overlapping
// presses is the embedded module's job.
type Synthesizer struct {
	surface dom.Element
	log     *zap.Logger
}

// NewSynthesizer creates a synthesizer targeting surface.
func NewSynthesizer(surface dom.Element, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{surface: surface, log: log}
}

// Press dispatches a key-down for code.
func (s *Synthesizer) Press(code string) {
	s.dispatch(dom.KeyDown, code)
}

// Release dispatches a key-up for code.
func (s *Synthesizer) Release(code string) {
	s.dispatch(dom.KeyUp, code)
}

func (s *Synthesizer) dispatch(t dom.EventType, code string) {
	ev := dom.KeyboardEvent(t, code)
	ev.Target = s.surface.ID()
	ev.Synthetic = true
	s.log.Debug("dispatch",
		zap.String("type", string(t)),
		zap.String("code", code),
		zap.Uint32("keyCode", ev.KeyCode),
	)
	s.surface.DispatchEvent(ev)
}
