// Package circuit models the nodes and elements of an overhead-wire
// electrical network. Solving the circuit is left to an external assembler;
// this package only keeps the graph and the indices it needs.
package circuit

// Node is a wire junction or connection point.
// Elements are non-owning back-references; the Circuit owns both.
type Node struct {
	Name      string
	ID        int
	Voltage   float64
	MatrixRow int
	MatrixCol int
	Ground    bool
	Removable bool

	elements []*Element
}

// NewNode creates a node with unassigned matrix indices.
func NewNode(name string, id int) *Node {
	return &Node{
		Name:      name,
		ID:        id,
		MatrixRow: -1,
		MatrixCol: -1,
	}
}

// AddElement connects an element to the node.
func (n *Node) AddElement(e *Element) {
	n.elements = append(n.elements, e)
}

// RemoveElement disconnects every occurrence of e. No-op if absent.
func (n *Node) RemoveElement(e *Element) {
	kept := n.elements[:0]
	for _, el := range n.elements {
		if el != e {
			kept = append(kept, el)
		}
	}
	for i := len(kept); i < len(n.elements); i++ {
		n.elements[i] = nil
	}
	n.elements = kept
}

// Elements returns the incident elements.
func (n *Node) Elements() []*Element {
	out := make([]*Element, len(n.elements))
	copy(out, n.elements)
	return out
}

// NumElements returns the number of incident elements.
func (n *Node) NumElements() int {
	return len(n.elements)
}

// OtherElement returns the first incident element that is not excluding,
// or nil if there is none.
func (n *Node) OtherElement(excluding *Element) *Element {
	for _, el := range n.elements {
		if el != excluding {
			return el
		}
	}
	return nil
}
