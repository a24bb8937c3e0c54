// Package notify delivers history events to interested views.
//
// The Notifier implements an observer pattern: views subscribe to all events
// or to one event type and are called back when the undo list commits a
// group, undoes, redoes or is cleared.
package notify

import (
	"sync"

	"github.com/dshills/netedit/internal/engine/history"
	"github.com/dshills/netedit/internal/logging"
)

// Ensure Notifier can be handed to an undo list.
var _ history.Notifier = (*Notifier)(nil)

// EventType represents the kind of history event.
type EventType int

const (
	// EventGroupsClosed indicates the last open group was committed.
	EventGroupsClosed EventType = iota

	// EventUndo indicates an entry was undone.
	EventUndo

	// EventRedo indicates an entry was redone.
	EventRedo

	// EventCleared indicates the history was discarded.
	EventCleared
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventGroupsClosed:
		return "groups-closed"
	case EventUndo:
		return "undo"
	case EventRedo:
		return "redo"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Event is a history notification.
type Event struct {
	Type EventType

	// Description names the affected entry, if any.
	Description string

	// Source identifies where the event came from.
	Source string
}

// Observer is called when an event is delivered.
type Observer func(event Event)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages event subscriptions.
type Notifier struct {
	mu sync.RWMutex

	// Observers that receive all events
	globalObservers map[uint64]Observer

	// Observers for a single event type
	typeObservers map[EventType]map[uint64]Observer

	nextID uint64

	// Whether to deliver asynchronously
	async  bool
	buffer chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	logger *logging.Logger
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous delivery through a buffer of the given size.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Event, bufferSize)
		}
	}
}

// WithLogger sets the logger used to report observer panics.
func WithLogger(l *logging.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		globalObservers: make(map[uint64]Observer),
		typeObservers:   make(map[EventType]map[uint64]Observer),
		done:            make(chan struct{}),
		logger:          logging.Nop(),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer for all events.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.globalObservers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribeType registers an observer for one event type.
func (n *Notifier) SubscribeType(t EventType, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	if n.typeObservers[t] == nil {
		n.typeObservers[t] = make(map[uint64]Observer)
	}
	n.typeObservers[t][id] = observer

	return &Subscription{id: id, notifier: n}
}

// Notify sends an event to all relevant observers.
func (n *Notifier) Notify(event Event) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	if n.async {
		select {
		case n.buffer <- event:
		case <-n.done:
		}
		return
	}

	n.deliver(event)
}

// GroupsClosed publishes EventGroupsClosed.
func (n *Notifier) GroupsClosed() {
	n.Notify(Event{Type: EventGroupsClosed, Source: "history"})
}

// Close shuts down the notifier. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.globalObservers, id)

	for t, observers := range n.typeObservers {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.typeObservers, t)
		}
	}
}

// deliver sends an event to all matching observers.
func (n *Notifier) deliver(event Event) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.globalObservers))
	for _, obs := range n.globalObservers {
		observers = append(observers, obs)
	}
	for _, obs := range n.typeObservers[event.Type] {
		observers = append(observers, obs)
	}
	n.mu.RUnlock()

	// Call observers outside the lock
	for _, obs := range observers {
		n.call(obs, event)
	}
}

// call runs one observer. A panicking observer is logged and does not
// stop delivery to the others.
func (n *Notifier) call(obs Observer, event Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("observer panicked", "event", event.Type.String(), "panic", r)
		}
	}()
	obs(event)
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case event := <-n.buffer:
			n.deliver(event)
		case <-n.done:
			// Drain remaining buffered events
			for {
				select {
				case event := <-n.buffer:
					n.deliver(event)
				default:
					return
				}
			}
		}
	}
}
