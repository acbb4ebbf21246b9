// Package announce implements the hierarchical announcement channel that
// connects components owning each other.
//
// Every component owns a Node. A node created with Child is owned by its
// parent; a signal raised on a node is delivered first to the node's own
// listeners and then to the listeners of every ancestor, nearest first.
// Within one node listeners run in registration order. A listener may stop
// the signal from travelling further up with Event.StopPropagation.
//
// Delivery is synchronous: Raise returns after every listener has run.
// Nodes are not safe for concurrent use; callers serialise access.
package announce

// Signal names a kind of announcement.
type Signal string

const (
	// Updated announces that the raising component changed state and that
	// owners should recompute whatever they derive from it.
	Updated Signal = "updated"
	// RemovalRequested is raised by a cart line item asking its owner to
	// delete it. The payload is the line item itself.
	RemovalRequested Signal = "removalRequested"
)

// Event is one delivery of a signal.
type Event struct {
	Signal  Signal
	Source  *Node
	Payload any

	current *Node
	stopped bool
}

// CurrentNode returns the node whose listeners are being run.
func (e *Event) CurrentNode() *Node {
	return e.current
}

// StopPropagation prevents delivery to ancestors of the current node.
// Remaining listeners on the current node still run.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool {
	return e.stopped
}

// Listener handles an event.
type Listener func(ev *Event)

type registration struct {
	id uint64
	fn Listener
}

// Node is one position in the ownership tree.
type Node struct {
	name      string
	parent    *Node
	listeners map[Signal][]registration
	nextID    uint64
}

// NewRoot creates a node without an owner.
func NewRoot(name string) *Node {
	return &Node{name: name}
}

// Child creates a node owned by n.
func (n *Node) Child(name string) *Node {
	return &Node{name: name, parent: n}
}

// Name returns the node's name.
func (n *Node) Name() string {
	return n.name
}

// Parent returns the owning node, or nil for a root or detached node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Path returns the names from the root down to n joined by "/".
func (n *Node) Path() string {
	if n.parent == nil {
		return n.name
	}
	return n.parent.Path() + "/" + n.name
}

// Detach cuts n from its owner. Signals raised on n or its descendants no
// longer reach the former ancestors.
func (n *Node) Detach() {
	n.parent = nil
}

// Listen registers fn for sig on n. The returned function removes the
// registration; calling it more than once is harmless.
func (n *Node) Listen(sig Signal, fn Listener) (cancel func()) {
	if n.listeners == nil {
		n.listeners = make(map[Signal][]registration)
	}
	n.nextID++
	id := n.nextID
	n.listeners[sig] = append(n.listeners[sig], registration{id: id, fn: fn})

	return func() {
		regs := n.listeners[sig]
		for i, r := range regs {
			if r.id == id {
				n.listeners[sig] = append(regs[:i:i], regs[i+1:]...)
				return
			}
		}
	}
}

// Raise announces sig on n and bubbles it through n's ancestors.
// It reports whether any listener received the event.
func (n *Node) Raise(sig Signal, payload any) bool {
	ev := &Event{Signal: sig, Source: n, Payload: payload}
	delivered := false

	for cur := n; cur != nil; cur = cur.parent {
		ev.current = cur
		// Listeners added while dispatching on this node wait for the next signal.
		regs := append([]registration(nil), cur.listeners[sig]...)
		for _, r := range regs {
			r.fn(ev)
			delivered = true
		}
		if ev.stopped {
			break
		}
	}

	ev.current = nil
	return delivered
}
