// Package app ties the network model, undo list, notifications and logging
// together into an editing session.
package app

import (
	"sync"
	"sync/atomic"

	"github.com/dshills/netedit/internal/config"
	"github.com/dshills/netedit/internal/engine/history"
	"github.com/dshills/netedit/internal/logging"
	"github.com/dshills/netedit/internal/network"
	"github.com/dshills/netedit/internal/notify"
)

// Editor is an editing session over one network.
type Editor struct {
	net      *network.Network
	undo     *history.UndoList
	notifier *notify.Notifier
	logger   *logging.Logger
	summary  *Summary

	busyMu sync.RWMutex
	busy   string

	closed atomic.Bool
}

// NewEditor creates an editor over net configured by cfg.
// A nil cfg uses config.Default(); a nil logger discards output.
func NewEditor(net *network.Network, cfg *config.Config, logger *logging.Logger) *Editor {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if net == nil {
		net = network.New()
	}

	e := &Editor{
		net:      net,
		notifier: notify.New(notify.WithLogger(logger.WithComponent("notify"))),
		logger:   logger.WithComponent("editor"),
	}

	opts := append(cfg.HistoryOptions(),
		history.WithNotifier(e.notifier),
		history.WithBusy(e.Busy),
		history.WithLogger(logger),
	)
	e.undo = history.NewUndoList(opts...)
	e.summary = newSummary(net, e.notifier)
	return e
}

// Network returns the edited network.
func (e *Editor) Network() *network.Network { return e.net }

// History returns the undo list.
func (e *Editor) History() *history.UndoList { return e.undo }

// Notifier returns the event hub views subscribe to.
func (e *Editor) Notifier() *notify.Notifier { return e.notifier }

// Summary returns the view refreshed whenever a group is committed.
func (e *Editor) Summary() *Summary { return e.summary }

// Busy returns the description of the operation in progress, if any.
func (e *Editor) Busy() string {
	e.busyMu.RLock()
	defer e.busyMu.RUnlock()
	return e.busy
}

// SetBusy marks an operation in progress. Undo and redo are disabled until
// ClearBusy is called.
func (e *Editor) SetBusy(description string) {
	e.busyMu.Lock()
	defer e.busyMu.Unlock()
	e.busy = description
}

// ClearBusy clears the operation in progress.
func (e *Editor) ClearBusy() {
	e.SetBusy("")
}

// Begin opens a change group.
func (e *Editor) Begin(description string) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	e.undo.BeginGroup(description)
	return nil
}

// End commits the innermost change group.
func (e *Editor) End() error {
	if err := e.undo.EndGroup(); err != nil {
		return NewOperationError("end", "", err)
	}
	return nil
}

// Abort reverts and discards the innermost change group.
func (e *Editor) Abort() error {
	if err := e.undo.AbortGroup(); err != nil {
		return NewOperationError("abort", "", err)
	}
	return nil
}

// AbortAll reverts and discards every open change group.
func (e *Editor) AbortAll() error {
	if err := e.undo.AbortAll(); err != nil {
		return NewOperationError("abort all", "", err)
	}
	return nil
}

// SetAttribute changes one attribute of an element.
// Setting an attribute to its current value records nothing.
func (e *Editor) SetAttribute(id, key, value string) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	change, err := network.NewAttributeChange(e.net, id, key, value)
	if err != nil {
		return NewOperationError("set", id, err)
	}
	if err := e.undo.Add(change); err != nil {
		return NewOperationError("set", id, err)
	}
	return nil
}

// CreateElement adds a new element and returns its ID.
func (e *Editor) CreateElement(el *network.Element) (string, error) {
	if err := e.checkOpen(); err != nil {
		return "", err
	}
	change := network.NewElementAdd(e.net, el)
	if !change.TrueChange() {
		return "", NewOperationError("create", change.ElementID(), network.ErrElementExists)
	}
	if err := e.undo.Add(change); err != nil {
		return "", NewOperationError("create", change.ElementID(), err)
	}
	return change.ElementID(), nil
}

// DeleteElement removes an element.
func (e *Editor) DeleteElement(id string) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	change := network.NewElementRemove(e.net, id)
	if !change.TrueChange() {
		return NewOperationError("delete", id, network.ErrElementNotFound)
	}
	if err := e.undo.Add(change); err != nil {
		return NewOperationError("delete", id, err)
	}
	return nil
}

// Undo undoes the last committed entry.
func (e *Editor) Undo() error {
	return e.step(notify.EventUndo)
}

// Redo redoes the last undone entry.
func (e *Editor) Redo() error {
	return e.step(notify.EventRedo)
}

func (e *Editor) step(kind notify.EventType) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if busy := e.Busy(); busy != "" {
		return NewOperationError(kind.String(), busy, ErrBusy)
	}

	var (
		info history.EntryInfo
		err  error
	)
	if kind == notify.EventUndo {
		info = firstInfo(e.undo.UndoInfo())
		err = e.undo.Undo()
	} else {
		info = firstInfo(e.undo.RedoInfo())
		err = e.undo.Redo()
	}
	if err != nil {
		return NewOperationError(kind.String(), "", err)
	}

	e.logger.Info(kind.String(), "entry", info.Description)
	e.notifier.Notify(notify.Event{Type: kind, Description: info.Description, Source: "editor"})
	return nil
}

// Clear aborts open groups and discards the history.
func (e *Editor) Clear() error {
	err := e.undo.Clear()
	e.notifier.Notify(notify.Event{Type: notify.EventCleared, Source: "editor"})
	if err != nil {
		return NewOperationError("clear", "", err)
	}
	return nil
}

// Close aborts any open groups and stops notifications.
func (e *Editor) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := e.undo.AbortAll()
	e.notifier.Close()
	if err != nil {
		e.logger.Error("abort on close failed", "error", err)
		return NewOperationError("close", "", err)
	}
	return nil
}

func (e *Editor) checkOpen() error {
	if e.closed.Load() {
		return ErrClosed
	}
	return nil
}

func firstInfo(infos []history.EntryInfo) history.EntryInfo {
	if len(infos) == 0 {
		return history.EntryInfo{}
	}
	return infos[0]
}
