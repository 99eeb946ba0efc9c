// Package dom is the slice of the document object model the bridge consumes:
// element lookup by id, gesture and keyboard listeners, focus, and detachment.
//
// Two implementations exist. Memory is an in-process document used by the
// native host and by tests. The jsdom subpackage wraps the browser document
// when built for js/wasm.
package dom

// EventType names a DOM event.
type EventType string

const (
	Click         EventType = "click"
	PointerDown   EventType = "pointerdown"
	PointerUp     EventType = "pointerup"
	PointerCancel EventType = "pointercancel"
	KeyDown       EventType = "keydown"
	KeyUp         EventType = "keyup"
)

// IsKeyboard reports whether t is a keyboard phase.
func (t EventType) IsKeyboard() bool {
	return t == KeyDown || t == KeyUp
}

// Event is a DOM event as seen by listeners.
//
// Keyboard events carry Code (e.g. "ArrowRight"), the matching Key value and
// the legacy numeric KeyCode, so listeners written against any of the three
// fields observe the same input.
type Event struct {
	Type      EventType
	Code      string
	Key       string
	Target    string
	KeyCode   uint32
	Synthetic bool
}

// Listener handles one event.
type Listener func(Event)

// ListenerID identifies a registered listener for removal.
type ListenerID uint64

// Element is a node the bridge can listen on, focus, dispatch to, or detach.
type Element interface {
	ID() string
	AddEventListener(t EventType, fn Listener) ListenerID
	RemoveEventListener(id ListenerID) bool
	// DispatchEvent delivers ev synchronously to the element's listeners.
	DispatchEvent(ev Event)
	Focus() error
	// Remove detaches the element from its document.
	Remove()
}

// Document looks elements up by id.
type Document interface {
	ElementByID(id string) (Element, bool)
}
