package history

import (
	"fmt"
)

// Command is a reversible unit of state change.
type Command interface {
	// Undo reverses the command.
	Undo() error

	// Redo applies (or re-applies) the command.
	Redo() error

	// Description returns a human-readable description of the command.
	Description() string
}

// Change is a leaf command that can report whether it alters anything.
type Change interface {
	Command

	// TrueChange reports whether applying the change alters observable state.
	TrueChange() bool
}

// Merger is implemented by commands that can absorb a following command.
// MergeWith returns true if next was folded into the receiver, in which case
// next must not be recorded separately.
type Merger interface {
	MergeWith(next Command) bool
}

// Group is a composite command recorded and replayed as one undo unit.
type Group struct {
	name     string
	commands []Command
}

// NewGroup creates a new group.
func NewGroup(name string, commands ...Command) *Group {
	return &Group{
		name:     name,
		commands: commands,
	}
}

// Redo replays all children in insertion order.
func (g *Group) Redo() error {
	for i, cmd := range g.commands {
		if err := cmd.Redo(); err != nil {
			return fmt.Errorf("redo group '%s' step %d: %w", g.name, i, err)
		}
	}
	return nil
}

// Undo reverses all children in reverse insertion order.
func (g *Group) Undo() error {
	for i := len(g.commands) - 1; i >= 0; i-- {
		if err := g.commands[i].Undo(); err != nil {
			return fmt.Errorf("undo group '%s' step %d: %w", g.name, i, err)
		}
	}
	return nil
}

// Description returns the group's name.
func (g *Group) Description() string {
	if g.name != "" {
		return g.name
	}
	if len(g.commands) == 1 {
		return g.commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(g.commands))
}

// Name returns the description the group was created with.
func (g *Group) Name() string {
	return g.name
}

// Add appends a command to the group.
func (g *Group) Add(cmd Command) {
	g.commands = append(g.commands, cmd)
}

// Size returns the number of direct children.
func (g *Group) Size() int {
	return len(g.commands)
}

// IsEmpty returns true if the group has no commands.
func (g *Group) IsEmpty() bool {
	return len(g.commands) == 0
}

// Commands returns a copy of the group's children.
func (g *Group) Commands() []Command {
	out := make([]Command, len(g.commands))
	copy(out, g.commands)
	return out
}

// last returns the most recently added child.
func (g *Group) last() Command {
	if len(g.commands) == 0 {
		return nil
	}
	return g.commands[len(g.commands)-1]
}

// FuncCommand adapts a pair of functions to the Command interface.
type FuncCommand struct {
	Name     string
	RedoFunc func() error
	UndoFunc func() error
}

// Redo calls RedoFunc if set.
func (c *FuncCommand) Redo() error {
	if c.RedoFunc == nil {
		return nil
	}
	return c.RedoFunc()
}

// Undo calls UndoFunc if set.
func (c *FuncCommand) Undo() error {
	if c.UndoFunc == nil {
		return nil
	}
	return c.UndoFunc()
}

// Description returns Name.
func (c *FuncCommand) Description() string {
	return c.Name
}
