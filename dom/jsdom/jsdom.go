//go:build js && wasm

// Package jsdom implements dom.Document over the browser document through syscall/js.
package jsdom

import (
	"fmt"
	"sync"
	"syscall/js"

	"github.com/wippyai/keybridge/dom"
)

// Document wraps the page's document object. It is looked up once.
type Document struct {
	doc js.Value
}

var _ dom.Document = (*Document)(nil)

// New wraps the global document.
func New() (*Document, error) {
	doc := js.Global().Get("document")
	if doc.IsUndefined() || doc.IsNull() {
		return nil, fmt.Errorf("jsdom: no document in global scope")
	}
	return &Document{doc: doc}, nil
}

// ElementByID implements dom.Document.
func (d *Document) ElementByID(id string) (dom.Element, bool) {
	v := d.doc.Call("getElementById", id)
	if v.IsNull() || v.IsUndefined() {
		return nil, false
	}
	return &Element{id: id, v: v, funcs: make(map[dom.ListenerID]registered)}, true
}

type registered struct {
	eventType dom.EventType
	fn        js.Func
}

// Element wraps an HTMLElement.
type Element struct {
	v      js.Value
	funcs  map[dom.ListenerID]registered
	id     string
	nextID dom.ListenerID
	mu     sync.Mutex
}

var _ dom.Element = (*Element)(nil)

// ID implements dom.Element.
func (e *Element) ID() string { return e.id }

// AddEventListener implements dom.Element. Gesture listeners suppress the
// browser's default handling so the control does not take focus or scroll.
func (e *Element) AddEventListener(t dom.EventType, fn dom.Listener) dom.ListenerID {
	jsFn := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		native := args[0]
		if !t.IsKeyboard() {
			native.Call("preventDefault")
			native.Call("stopPropagation")
		}
		fn(parseEvent(t, e.id, native))
		return nil
	})

	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.funcs[id] = registered{eventType: t, fn: jsFn}
	e.mu.Unlock()

	e.v.Call("addEventListener", string(t), jsFn)
	return id
}

// RemoveEventListener implements dom.Element.
func (e *Element) RemoveEventListener(id dom.ListenerID) bool {
	e.mu.Lock()
	reg, ok := e.funcs[id]
	delete(e.funcs, id)
	e.mu.Unlock()

	if !ok {
		return false
	}
	e.v.Call("removeEventListener", string(reg.eventType), reg.fn)
	reg.fn.Release()
	return true
}

// DispatchEvent implements dom.Element. Keyboard events are built with the
// KeyboardEvent constructor, and keyCode and which are then defined on the
// instance because the constructor drops them.
func (e *Element) DispatchEvent(ev dom.Event) {
	var native js.Value
	if ev.Type.IsKeyboard() {
		native = js.Global().Get("KeyboardEvent").New(string(ev.Type), keyboardInit(ev))
		object := js.Global().Get("Object")
		for name, v := range legacyKeyProps(ev) {
			object.Call("defineProperty", native, name, map[string]any{"value": v})
		}
	} else {
		init := map[string]any{"bubbles": true, "cancelable": true}
		native = js.Global().Get("Event").New(string(ev.Type), init)
	}
	e.v.Call("dispatchEvent", native)
}

// Focus implements dom.Element.
func (e *Element) Focus() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("jsdom: focus #%s: %v", e.id, r)
		}
	}()
	e.v.Call("focus")
	return nil
}

// Remove implements dom.Element.
func (e *Element) Remove() {
	e.v.Call("remove")
}

func parseEvent(t dom.EventType, target string, native js.Value) dom.Event {
	ev := dom.Event{Type: t, Target: target}
	if t.IsKeyboard() {
		ev.Code = native.Get("code").String()
		ev.Key = native.Get("key").String()
		if kc := native.Get("keyCode"); kc.Type() == js.TypeNumber {
			ev.KeyCode = uint32(kc.Int())
		}
		ev.Synthetic = !native.Get("isTrusted").Bool()
	}
	return ev
}
