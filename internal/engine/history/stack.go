package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/netedit/internal/logging"
)

// Notifier is told when the last open group has been committed.
type Notifier interface {
	GroupsClosed()
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func()

// GroupsClosed calls f.
func (f NotifierFunc) GroupsClosed() {
	f()
}

// UndoList records commands into nested groups on top of a Log.
//
// Commands added while a group is open accumulate in the innermost group.
// Closing the outermost group commits it to the log as a single entry.
// Undo and redo are refused while any group is open.
//
// Commands are applied and undone with the list's lock held, so a command
// must not call back into the UndoList that records it.
type UndoList struct {
	mu sync.Mutex

	log    *Log
	groups []*Group

	notifier         Notifier
	busy             func() string
	logger           *logging.Logger
	merge            bool
	panicOnUnbalance bool
}

// Option configures an UndoList.
type Option func(*UndoList)

// WithNotifier sets the hook called when the group stack becomes empty.
func WithNotifier(n Notifier) Option {
	return func(u *UndoList) {
		u.notifier = n
	}
}

// WithBusy sets the query describing an operation in progress.
// A non-empty result disables the undo and redo actions.
func WithBusy(fn func() string) Option {
	return func(u *UndoList) {
		u.busy = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(u *UndoList) {
		if l != nil {
			u.logger = l
		}
	}
}

// WithMaxEntries bounds the number of committed log entries.
func WithMaxEntries(n int) Option {
	return func(u *UndoList) {
		u.log.SetMaxEntries(n)
	}
}

// WithMerging lets a recorded Merger absorb the change added right after it.
func WithMerging(enabled bool) Option {
	return func(u *UndoList) {
		u.merge = enabled
	}
}

// WithPanicOnUnbalanced makes unmatched EndGroup/AbortGroup calls panic
// instead of returning ErrUnbalancedGroup.
func WithPanicOnUnbalanced(enabled bool) Option {
	return func(u *UndoList) {
		u.panicOnUnbalance = enabled
	}
}

// NewUndoList creates an empty undo list.
func NewUndoList(opts ...Option) *UndoList {
	u := &UndoList{
		log:    NewLog(DefaultMaxEntries),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.WithComponent("history")
	return u
}

// BeginGroup opens a new group nested in the current scope.
func (u *UndoList) BeginGroup(description string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.groups = append(u.groups, NewGroup(description))
	u.logger.Debug("group begin", "group", description, "depth", len(u.groups))
}

// EndGroup closes the innermost group and commits it to the enclosing scope.
// Empty groups are dropped. When no group remains open the notifier is called.
func (u *UndoList) EndGroup() error {
	u.mu.Lock()
	g, err := u.popLocked("end")
	if err != nil {
		u.mu.Unlock()
		return err
	}

	if g.IsEmpty() {
		u.logger.Debug("group dropped", "group", g.Name(), "reason", "empty")
	} else {
		u.recordLocked(g)
		u.logger.Debug("group end", "group", g.Name(), "size", g.Size(), "depth", len(u.groups))
	}
	closed := len(u.groups) == 0
	u.mu.Unlock()

	if closed {
		u.notify()
	}
	return nil
}

// AbortGroup closes the innermost group, undoing everything recorded in it.
// Nothing is committed. The group is discarded even if undoing fails.
func (u *UndoList) AbortGroup() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.abortLocked()
}

// AbortAll aborts every open group, innermost first.
// The first undo error is returned after all groups are discarded.
func (u *UndoList) AbortAll() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	var first error
	for len(u.groups) > 0 {
		if err := u.abortLocked(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (u *UndoList) abortLocked() error {
	g, err := u.popLocked("abort")
	if err != nil {
		return err
	}
	u.logger.Debug("group abort", "group", g.Name(), "size", g.Size(), "depth", len(u.groups))
	if err := g.Undo(); err != nil {
		u.logger.Error("group abort failed", "group", g.Name(), "error", err)
		return fmt.Errorf("abort group '%s': %w", g.Name(), err)
	}
	return nil
}

// popLocked removes the innermost group or reports an unbalanced scope.
func (u *UndoList) popLocked(op string) (*Group, error) {
	if len(u.groups) == 0 {
		err := fmt.Errorf("%s with no open group: %w", op, ErrUnbalancedGroup)
		if u.panicOnUnbalance {
			panic(err)
		}
		u.logger.Error("unbalanced group scope", "op", op)
		return nil, err
	}
	g := u.groups[len(u.groups)-1]
	u.groups[len(u.groups)-1] = nil
	u.groups = u.groups[:len(u.groups)-1]
	return g, nil
}

// Add applies change and records it in the current scope.
// Changes that report no true change are discarded without being applied.
func (u *UndoList) Add(change Change) error {
	if !change.TrueChange() {
		u.logger.Debug("change discarded", "change", change.Description())
		return nil
	}
	return u.AddCommand(change)
}

// AddCommand applies cmd and records it in the current scope.
func (u *UndoList) AddCommand(cmd Command) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := cmd.Redo(); err != nil {
		return fmt.Errorf("apply '%s': %w", cmd.Description(), err)
	}
	if u.merge && u.mergeLocked(cmd) {
		return nil
	}
	u.recordLocked(cmd)
	return nil
}

// mergeLocked folds cmd into the previous command of the current scope.
func (u *UndoList) mergeLocked(cmd Command) bool {
	var prev Command
	if len(u.groups) > 0 {
		prev = u.groups[len(u.groups)-1].last()
	} else if !u.log.CanRedo() {
		prev, _ = u.log.Last()
	}
	m, ok := prev.(Merger)
	if !ok {
		return false
	}
	return m.MergeWith(cmd)
}

// recordLocked appends cmd to the innermost group, or the log.
func (u *UndoList) recordLocked(cmd Command) {
	if len(u.groups) > 0 {
		u.groups[len(u.groups)-1].Add(cmd)
		return
	}
	u.log.Push(cmd)
}

// CurrentGroupSize returns the number of commands in the innermost group,
// or 0 if no group is open.
func (u *UndoList) CurrentGroupSize() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.groups) == 0 {
		return 0
	}
	return u.groups[len(u.groups)-1].Size()
}

// HasOpenGroup returns true if any group is open.
func (u *UndoList) HasOpenGroup() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.groups) > 0
}

// Depth returns the number of open groups.
func (u *UndoList) Depth() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.groups)
}

// TopDescription returns the description of the innermost open group.
func (u *UndoList) TopDescription() (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.groups) == 0 {
		return "", false
	}
	return u.groups[len(u.groups)-1].Name(), true
}

// LastChange returns the most recently committed log entry if it is a leaf
// Change. Committed groups are not returned.
func (u *UndoList) LastChange() (Change, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	cmd, ok := u.log.Last()
	if !ok {
		return nil, false
	}
	if _, isGroup := cmd.(*Group); isGroup {
		return nil, false
	}
	change, ok := cmd.(Change)
	return change, ok
}

// Undo undoes the last committed entry.
func (u *UndoList) Undo() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.groups) > 0 {
		return fmt.Errorf("undo: %w", ErrGroupOpen)
	}
	info, _ := u.log.PeekUndo()
	if err := u.log.Undo(); err != nil {
		return err
	}
	u.logger.Debug("undo", "entry", info.Description)
	return nil
}

// Redo redoes the next undone entry.
func (u *UndoList) Redo() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.groups) > 0 {
		return fmt.Errorf("redo: %w", ErrGroupOpen)
	}
	info, _ := u.log.PeekRedo()
	if err := u.log.Redo(); err != nil {
		return err
	}
	u.logger.Debug("redo", "entry", info.Description)
	return nil
}

// CanUndo returns true if the log has an entry to undo.
func (u *UndoList) CanUndo() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.log.CanUndo()
}

// CanRedo returns true if the log has an entry to redo.
func (u *UndoList) CanRedo() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.log.CanRedo()
}

// UndoCount returns the number of undoable log entries.
func (u *UndoList) UndoCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.log.UndoCount()
}

// RedoCount returns the number of redoable log entries.
func (u *UndoList) RedoCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.log.RedoCount()
}

// UndoInfo returns undoable entries, next to undo first.
func (u *UndoList) UndoInfo() []EntryInfo {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.log.UndoInfo()
}

// RedoInfo returns redoable entries, next to redo first.
func (u *UndoList) RedoInfo() []EntryInfo {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.log.RedoInfo()
}

// Clear aborts all open groups and then discards the log.
func (u *UndoList) Clear() error {
	err := u.AbortAll()

	u.mu.Lock()
	u.log.Clear()
	u.mu.Unlock()

	u.logger.Debug("history cleared")
	return err
}

func (u *UndoList) notify() {
	if u.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("notifier panicked", "panic", r)
		}
	}()
	u.notifier.GroupsClosed()
}

// IsUnbalanced reports whether err stems from an unmatched group scope.
func IsUnbalanced(err error) bool {
	return errors.Is(err, ErrUnbalancedGroup)
}
