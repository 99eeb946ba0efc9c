package bridge

import (
	"github.com/wippyai/keybridge/dom"
	"github.com/wippyai/keybridge/errors"
)

// FocusCoordinator gives the surface input focus before each dispatch.
//
// Focus is shared with the rest of the page and can move at any time, so
// EnsureFocus always re-asserts it and never remembers a previous success.
type FocusCoordinator struct {
	surface dom.Element
}

// NewFocusCoordinator creates a coordinator for surface.
func NewFocusCoordinator(surface dom.Element) *FocusCoordinator {
	return &FocusCoordinator{surface: surface}
}

// EnsureFocus focuses the surface.
func (f *FocusCoordinator) EnsureFocus() error {
	if err := f.surface.Focus(); err != nil {
		return errors.New(errors.PhaseFocus, errors.KindInvalidData).
			Element(f.surface.ID()).
			Cause(err).
			Detail("focus surface").
			Build()
	}
	return nil
}
