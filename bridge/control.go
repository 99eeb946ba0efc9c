package bridge

import (
	"strings"

	"github.com/wippyai/keybridge/errors"
)

// Mode is a control's trigger mode.
type Mode int

const (
	// ModeOneShot fires a single key-down on click and then removes the control.
	ModeOneShot Mode = iota + 1
	// ModeMomentary fires key-down on gesture start and key-up on gesture end.
	ModeMomentary
)

func (m Mode) String() string {
	switch m {
	case ModeOneShot:
		return "oneShot"
	case ModeMomentary:
		return "momentary"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name. Matching ignores case, '-' and '_'.
func ParseMode(s string) (Mode, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(s))
	switch norm {
	case "oneshot":
		return ModeOneShot, nil
	case "momentary":
		return ModeMomentary, nil
	}
	return 0, errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
		Value(s).
		Detail("unknown control mode %q", s).
		Build()
}

// VirtualControl maps an on-screen control element to a synthetic key.
type VirtualControl struct {
	ID   string // element id
	Code string // platform key code, e.g. "ArrowRight"
	Mode Mode
}

// DefaultControls returns the stock control set: a one-shot "advance" prompt
// alongside persistent "jump" and "sliding" controls.
func DefaultControls() []VirtualControl {
	return []VirtualControl{
		{ID: "advance", Code: "ArrowRight", Mode: ModeOneShot},
		{ID: "jump", Code: "Space", Mode: ModeMomentary},
		{ID: "sliding", Code: "ArrowDown", Mode: ModeMomentary},
	}
}

// State is the lifecycle state of a registered control.
type State int

const (
	// StateInert means the element was absent at startup; the control never fires.
	StateInert State = iota
	// StateActive is the live state of both one-shot and momentary controls.
	StateActive
	// StateRemoved is terminal for a one-shot control after its activation.
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateInert:
		return "inert"
	case StateActive:
		return "active"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// ControlStatus is a snapshot of one control.
type ControlStatus struct {
	VirtualControl
	State State
}
