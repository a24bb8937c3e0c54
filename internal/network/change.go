package network

import (
	"fmt"

	"github.com/dshills/netedit/internal/engine/history"
)

var (
	_ history.Change = (*AttributeChange)(nil)
	_ history.Merger = (*AttributeChange)(nil)
	_ history.Change = (*ElementChange)(nil)
)

// AttributeChange sets one attribute of one element.
// The previous value is captured when the change is created.
type AttributeChange struct {
	net      *Network
	id       string
	key      string
	oldValue string
	oldSet   bool
	newValue string
}

// NewAttributeChange prepares a change of key on element id to value.
func NewAttributeChange(n *Network, id, key, value string) (*AttributeChange, error) {
	old, set, err := n.Attribute(id, key)
	if err != nil {
		return nil, err
	}
	return &AttributeChange{
		net:      n,
		id:       id,
		key:      key,
		oldValue: old,
		oldSet:   set,
		newValue: value,
	}, nil
}

// ElementID returns the changed element's ID.
func (c *AttributeChange) ElementID() string { return c.id }

// Key returns the changed attribute.
func (c *AttributeChange) Key() string { return c.key }

// Values returns the old and new values.
func (c *AttributeChange) Values() (oldValue, newValue string) { return c.oldValue, c.newValue }

// TrueChange reports whether the new value differs from the old one.
func (c *AttributeChange) TrueChange() bool {
	return !c.oldSet || c.oldValue != c.newValue
}

// Redo sets the new value.
func (c *AttributeChange) Redo() error {
	return c.net.SetAttribute(c.id, c.key, c.newValue)
}

// Undo restores the old value, removing the attribute if it was unset.
func (c *AttributeChange) Undo() error {
	if !c.oldSet {
		return c.net.UnsetAttribute(c.id, c.key)
	}
	return c.net.SetAttribute(c.id, c.key, c.oldValue)
}

// Description returns a human-readable description.
func (c *AttributeChange) Description() string {
	return fmt.Sprintf("Change %s of %s", c.key, c.id)
}

// MergeWith absorbs a later change to the same attribute of the same element.
func (c *AttributeChange) MergeWith(next history.Command) bool {
	n, ok := next.(*AttributeChange)
	if !ok || n.net != c.net || n.id != c.id || n.key != c.key {
		return false
	}
	c.newValue = n.newValue
	return true
}

// ElementChange inserts or removes a whole element.
type ElementChange struct {
	net     *Network
	element *Element
	insert  bool
	present bool
}

// NewElementAdd prepares the insertion of el.
func NewElementAdd(n *Network, el *Element) *ElementChange {
	if el.ID == "" {
		fresh := NewElement(el.Kind)
		for k, v := range el.Attributes {
			fresh.Attributes[k] = v
		}
		el = fresh
	}
	return &ElementChange{
		net:     n,
		element: el.Clone(),
		insert:  true,
		present: n.Has(el.ID),
	}
}

// NewElementRemove prepares the removal of the element with the given ID.
// The element is snapshotted so Undo can restore it.
func NewElementRemove(n *Network, id string) *ElementChange {
	el, ok := n.Get(id)
	if !ok {
		el = &Element{ID: id}
	}
	return &ElementChange{
		net:     n,
		element: el,
		present: ok,
	}
}

// ElementID returns the affected element's ID.
func (c *ElementChange) ElementID() string { return c.element.ID }

// TrueChange is false when adding an existing element or removing a
// missing one.
func (c *ElementChange) TrueChange() bool {
	return c.insert != c.present
}

// Redo applies the insertion or removal.
func (c *ElementChange) Redo() error {
	if c.insert {
		return c.net.Add(c.element.Clone())
	}
	_, err := c.net.Remove(c.element.ID)
	return err
}

// Undo reverses the insertion or removal.
func (c *ElementChange) Undo() error {
	if c.insert {
		_, err := c.net.Remove(c.element.ID)
		return err
	}
	return c.net.Add(c.element.Clone())
}

// Description returns a human-readable description.
func (c *ElementChange) Description() string {
	if c.insert {
		return fmt.Sprintf("Create %s %s", c.element.Kind, c.element.ID)
	}
	if c.element.Kind == "" {
		return fmt.Sprintf("Delete %s", c.element.ID)
	}
	return fmt.Sprintf("Delete %s %s", c.element.Kind, c.element.ID)
}
