package circuit

import (
	"errors"
	"fmt"
	"sort"
)

// Circuit errors.
var (
	ErrNodeExists    = errors.New("node already exists")
	ErrNodeNotFound  = errors.New("node not found")
	ErrElementExists = errors.New("element already exists")
)

// ElementKind identifies the electrical behaviour of an element.
type ElementKind int

const (
	// Resistor is a resistive wire segment.
	Resistor ElementKind = iota
	// CurrentSource models a vehicle drawing current.
	CurrentSource
	// VoltageSource models a traction substation.
	VoltageSource
)

// String returns the kind name.
func (k ElementKind) String() string {
	switch k {
	case Resistor:
		return "resistor"
	case CurrentSource:
		return "current-source"
	case VoltageSource:
		return "voltage-source"
	default:
		return "unknown"
	}
}

// Element is a two-terminal circuit element.
type Element struct {
	Name  string
	ID    int
	Kind  ElementKind
	Value float64

	Pos *Node
	Neg *Node
}

// OtherNode returns the terminal of e that is not n, or nil if n is not a
// terminal of e.
func (e *Element) OtherNode(n *Node) *Node {
	switch n {
	case e.Pos:
		return e.Neg
	case e.Neg:
		return e.Pos
	}
	return nil
}

// Circuit owns nodes and elements and keeps their references consistent.
type Circuit struct {
	nodes    map[string]*Node
	elements map[string]*Element
	nextNode int
	nextElem int
}

// New creates an empty circuit.
func New() *Circuit {
	return &Circuit{
		nodes:    make(map[string]*Node),
		elements: make(map[string]*Element),
	}
}

// AddNode creates a named node with the next sequential ID.
func (c *Circuit) AddNode(name string) (*Node, error) {
	if _, ok := c.nodes[name]; ok {
		return nil, fmt.Errorf("add node %s: %w", name, ErrNodeExists)
	}
	n := NewNode(name, c.nextNode)
	c.nextNode++
	c.nodes[name] = n
	return n, nil
}

// Node returns the node with the given name.
func (c *Circuit) Node(name string) (*Node, bool) {
	n, ok := c.nodes[name]
	return n, ok
}

// AddElement connects a new element between the pos and neg nodes.
func (c *Circuit) AddElement(name string, kind ElementKind, value float64, pos, neg string) (*Element, error) {
	if _, ok := c.elements[name]; ok {
		return nil, fmt.Errorf("add element %s: %w", name, ErrElementExists)
	}
	p, ok := c.nodes[pos]
	if !ok {
		return nil, fmt.Errorf("add element %s: %s: %w", name, pos, ErrNodeNotFound)
	}
	n, ok := c.nodes[neg]
	if !ok {
		return nil, fmt.Errorf("add element %s: %s: %w", name, neg, ErrNodeNotFound)
	}

	e := &Element{Name: name, ID: c.nextElem, Kind: kind, Value: value, Pos: p, Neg: n}
	c.nextElem++
	c.elements[name] = e
	p.AddElement(e)
	if n != p {
		n.AddElement(e)
	}
	return e, nil
}

// RemoveElement detaches and drops an element. No-op if absent.
func (c *Circuit) RemoveElement(name string) {
	e, ok := c.elements[name]
	if !ok {
		return
	}
	delete(c.elements, name)
	e.Pos.RemoveElement(e)
	e.Neg.RemoveElement(e)
}

// Nodes returns all nodes ordered by ID.
func (c *Circuit) Nodes() []*Node {
	out := make([]*Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AssignMatrixIndices numbers non-ground nodes 0..k-1 in ID order and sets
// ground nodes to -1. It returns k.
func (c *Circuit) AssignMatrixIndices() int {
	k := 0
	for _, n := range c.Nodes() {
		if n.Ground {
			n.MatrixRow, n.MatrixCol = -1, -1
			continue
		}
		n.MatrixRow, n.MatrixCol = k, k
		k++
	}
	return k
}

// RemovableNodes returns nodes flagged removable that join exactly two
// elements, i.e. nodes that series elements could be merged across.
func (c *Circuit) RemovableNodes() []*Node {
	var out []*Node
	for _, n := range c.Nodes() {
		if n.Removable && !n.Ground && n.NumElements() == 2 {
			out = append(out, n)
		}
	}
	return out
}
