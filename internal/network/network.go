// Package network holds the editable traffic network model and the undoable
// changes applied to it.
package network

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Network errors.
var (
	ErrElementNotFound = errors.New("element not found")
	ErrElementExists   = errors.New("element already exists")
)

// Kind identifies the type of a network element.
type Kind string

// Element kinds known to the editor.
const (
	KindJunction   Kind = "junction"
	KindEdge       Kind = "edge"
	KindLane       Kind = "lane"
	KindConnection Kind = "connection"
	KindCrossing   Kind = "crossing"
	KindPolygon    Kind = "poly"
)

// Element is a single network element with string attributes.
type Element struct {
	ID         string
	Kind       Kind
	Attributes map[string]string
}

// NewElement creates an element with a generated ID.
func NewElement(kind Kind) *Element {
	return &Element{
		ID:         uuid.NewString(),
		Kind:       kind,
		Attributes: make(map[string]string),
	}
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	attrs := make(map[string]string, len(e.Attributes))
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	return &Element{ID: e.ID, Kind: e.Kind, Attributes: attrs}
}

// Network is a set of elements keyed by ID.
type Network struct {
	mu       sync.RWMutex
	elements map[string]*Element
}

// New creates an empty network.
func New() *Network {
	return &Network{elements: make(map[string]*Element)}
}

// Add inserts an element. Elements without an ID get a generated one.
func (n *Network) Add(el *Element) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if el.ID == "" {
		el.ID = uuid.NewString()
	}
	if _, ok := n.elements[el.ID]; ok {
		return fmt.Errorf("add %s: %w", el.ID, ErrElementExists)
	}
	if el.Attributes == nil {
		el.Attributes = make(map[string]string)
	}
	n.elements[el.ID] = el
	return nil
}

// Remove deletes an element and returns it.
func (n *Network) Remove(id string) (*Element, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	el, ok := n.elements[id]
	if !ok {
		return nil, fmt.Errorf("remove %s: %w", id, ErrElementNotFound)
	}
	delete(n.elements, id)
	return el, nil
}

// Get returns a copy of the element with the given ID.
func (n *Network) Get(id string) (*Element, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	el, ok := n.elements[id]
	if !ok {
		return nil, false
	}
	return el.Clone(), true
}

// Has reports whether an element exists.
func (n *Network) Has(id string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.elements[id]
	return ok
}

// Attribute returns an attribute value and whether it is set.
func (n *Network) Attribute(id, key string) (string, bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	el, ok := n.elements[id]
	if !ok {
		return "", false, fmt.Errorf("attribute %s of %s: %w", key, id, ErrElementNotFound)
	}
	v, set := el.Attributes[key]
	return v, set, nil
}

// SetAttribute sets an attribute value.
func (n *Network) SetAttribute(id, key, value string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	el, ok := n.elements[id]
	if !ok {
		return fmt.Errorf("set %s of %s: %w", key, id, ErrElementNotFound)
	}
	el.Attributes[key] = value
	return nil
}

// UnsetAttribute removes an attribute.
func (n *Network) UnsetAttribute(id, key string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	el, ok := n.elements[id]
	if !ok {
		return fmt.Errorf("unset %s of %s: %w", key, id, ErrElementNotFound)
	}
	delete(el.Attributes, key)
	return nil
}

// Len returns the number of elements.
func (n *Network) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.elements)
}

// IDs returns all element IDs in sorted order.
func (n *Network) IDs() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	ids := make([]string, 0, len(n.elements))
	for id := range n.elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CountByKind returns the number of elements per kind.
func (n *Network) CountByKind() map[Kind]int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	counts := make(map[Kind]int)
	for _, el := range n.elements {
		counts[el.Kind]++
	}
	return counts
}
