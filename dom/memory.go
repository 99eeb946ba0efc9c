package dom

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// subscription is a registered listener.
type subscription struct {
	id        ListenerID
	eventType EventType
	fn        Listener
}

// Memory is an in-process Document. It is safe for concurrent use.
//
// Listeners are invoked in registration order, outside the document lock, so a
// listener may add or remove listeners, focus, or detach elements.
type Memory struct {
	mu       sync.RWMutex
	elements map[string]*Node
	order    []string
	active   string
	nextID   atomic.Uint64
}

// Compile-time interface checks.
var (
	_ Document = (*Memory)(nil)
	_ Element  = (*Node)(nil)
)

// NewMemory creates an empty document.
func NewMemory() *Memory {
	return &Memory{
		elements: make(map[string]*Node),
	}
}

// Append attaches a new element with the given id. It panics if the id is
// already attached, mirroring a malformed page rather than a runtime condition.
func (d *Memory) Append(id string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.elements[id]; exists {
		panic(fmt.Sprintf("dom: duplicate element id %q", id))
	}
	n := &Node{doc: d, id: id, attached: true}
	d.elements[id] = n
	d.order = append(d.order, id)
	return n
}

// ElementByID implements Document.
func (d *Memory) ElementByID(id string) (Element, bool) {
	n, ok := d.Node(id)
	if !ok {
		return nil, false
	}
	return n, true
}

// Node returns the attached element with id as its concrete type.
func (d *Memory) Node(id string) (*Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.elements[id]
	return n, ok
}

// IDs returns the ids of attached elements in document order.
func (d *Memory) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// ActiveElement returns the id of the focused element, or "" when nothing has focus.
func (d *Memory) ActiveElement() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

// Blur drops focus from whatever element holds it.
func (d *Memory) Blur() {
	d.mu.Lock()
	d.active = ""
	d.mu.Unlock()
}

func (d *Memory) detach(n *Node) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !n.attached {
		return
	}
	n.attached = false
	delete(d.elements, n.id)
	for i, id := range d.order {
		if id == n.id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	if d.active == n.id {
		d.active = ""
	}
}

// Node is an element of a Memory document.
type Node struct {
	doc      *Memory
	id       string
	subs     []subscription
	attached bool
}

// ID implements Element.
func (n *Node) ID() string { return n.id }

// Attached reports whether the node is still part of its document.
func (n *Node) Attached() bool {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.attached
}

// AddEventListener implements Element.
func (n *Node) AddEventListener(t EventType, fn Listener) ListenerID {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()

	id := ListenerID(n.doc.nextID.Add(1))
	n.subs = append(n.subs, subscription{id: id, eventType: t, fn: fn})
	return id
}

// RemoveEventListener implements Element.
func (n *Node) RemoveEventListener(id ListenerID) bool {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()

	for i, sub := range n.subs {
		if sub.id == id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners registered for t.
func (n *Node) ListenerCount(t EventType) int {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()

	count := 0
	for _, sub := range n.subs {
		if sub.eventType == t {
			count++
		}
	}
	return count
}

// DispatchEvent implements Element. Detached nodes still deliver events to
// their remaining listeners, as browsers do.
func (n *Node) DispatchEvent(ev Event) {
	if ev.Target == "" {
		ev.Target = n.id
	}

	n.doc.mu.RLock()
	var handlers []Listener
	for _, sub := range n.subs {
		if sub.eventType == ev.Type {
			handlers = append(handlers, sub.fn)
		}
	}
	n.doc.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// Focus implements Element. Focusing a detached node fails.
func (n *Node) Focus() error {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()

	if !n.attached {
		return fmt.Errorf("dom: element %q is not attached", n.id)
	}
	n.doc.active = n.id
	return nil
}

// Remove implements Element.
func (n *Node) Remove() {
	n.doc.detach(n)
}
