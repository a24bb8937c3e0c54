package app

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/netedit/internal/config"
	"github.com/dshills/netedit/internal/engine/history"
	"github.com/dshills/netedit/internal/logging"
	"github.com/dshills/netedit/internal/network"
	"github.com/dshills/netedit/internal/notify"
)

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	net := network.New()
	require.NoError(t, net.Add(&network.Element{ID: "J1", Kind: network.KindJunction, Attributes: map[string]string{"x": "0"}}))
	e := NewEditor(net, nil, nil)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func attr(t *testing.T, e *Editor, id, key string) string {
	t.Helper()
	v, _, err := e.Network().Attribute(id, key)
	require.NoError(t, err)
	return v
}

func TestEditorSetAttributeUndoRedo(t *testing.T) {
	e := newTestEditor(t)

	require.NoError(t, e.SetAttribute("J1", "x", "10"))
	assert.Equal(t, "10", attr(t, e, "J1", "x"))

	require.NoError(t, e.Undo())
	assert.Equal(t, "0", attr(t, e, "J1", "x"))

	require.NoError(t, e.Redo())
	assert.Equal(t, "10", attr(t, e, "J1", "x"))
}

func TestEditorNoOpEditNotRecorded(t *testing.T) {
	e := newTestEditor(t)

	require.NoError(t, e.SetAttribute("J1", "x", "0"))
	assert.False(t, e.History().CanUndo())
}

func TestEditorSetAttributeMissing(t *testing.T) {
	e := newTestEditor(t)

	err := e.SetAttribute("nope", "x", "1")
	assert.ErrorIs(t, err, network.ErrElementNotFound)

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "set", opErr.Op)
	assert.Equal(t, "nope", opErr.Target)
}

func TestEditorGroupedEdit(t *testing.T) {
	e := newTestEditor(t)

	require.NoError(t, e.Begin("Split junction"))
	id, err := e.CreateElement(&network.Element{ID: "J2", Kind: network.KindJunction})
	require.NoError(t, err)
	assert.Equal(t, "J2", id)
	require.NoError(t, e.SetAttribute("J2", "x", "5"))
	require.NoError(t, e.SetAttribute("J1", "x", "-5"))

	assert.ErrorIs(t, e.Undo(), history.ErrGroupOpen)
	require.NoError(t, e.End())

	assert.Equal(t, 2, e.Summary().Total())
	require.NoError(t, e.Undo())
	assert.False(t, e.Network().Has("J2"))
	assert.Equal(t, "0", attr(t, e, "J1", "x"))
	assert.Equal(t, 1, e.Summary().Total())
}

func TestEditorAbort(t *testing.T) {
	e := newTestEditor(t)

	require.NoError(t, e.Begin("Delete junction"))
	require.NoError(t, e.DeleteElement("J1"))
	assert.False(t, e.Network().Has("J1"))
	require.NoError(t, e.Abort())

	assert.True(t, e.Network().Has("J1"))
	assert.False(t, e.History().CanUndo())
}

func TestEditorAbortAll(t *testing.T) {
	e := newTestEditor(t)

	require.NoError(t, e.Begin("outer"))
	require.NoError(t, e.SetAttribute("J1", "x", "1"))
	require.NoError(t, e.Begin("inner"))
	require.NoError(t, e.SetAttribute("J1", "x", "2"))
	require.NoError(t, e.AbortAll())

	assert.Equal(t, "0", attr(t, e, "J1", "x"))
	assert.False(t, e.History().HasOpenGroup())
}

func TestEditorUnbalancedEnd(t *testing.T) {
	e := newTestEditor(t)
	assert.ErrorIs(t, e.End(), history.ErrUnbalancedGroup)
	assert.ErrorIs(t, e.Abort(), history.ErrUnbalancedGroup)
}

func TestEditorCreateAndDeleteErrors(t *testing.T) {
	e := newTestEditor(t)

	_, err := e.CreateElement(&network.Element{ID: "J1"})
	assert.ErrorIs(t, err, network.ErrElementExists)

	err = e.DeleteElement("missing")
	assert.ErrorIs(t, err, network.ErrElementNotFound)
	assert.False(t, e.History().CanUndo())
}

func TestEditorBusy(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.SetAttribute("J1", "x", "1"))

	e.SetBusy("route computation")
	assert.ErrorIs(t, e.Undo(), ErrBusy)
	state := e.History().UndoActionState()
	assert.False(t, state.Enabled)
	assert.Equal(t, "Cannot Undo in the middle of route computation", state.Label)

	e.ClearBusy()
	assert.True(t, e.History().UndoActionState().Enabled)
	require.NoError(t, e.Undo())
}

func TestEditorNotifications(t *testing.T) {
	e := newTestEditor(t)

	var events []notify.Event
	e.Notifier().Subscribe(func(ev notify.Event) { events = append(events, ev) })

	require.NoError(t, e.Begin("Move"))
	require.NoError(t, e.SetAttribute("J1", "x", "3"))
	require.NoError(t, e.End())
	require.NoError(t, e.Undo())
	require.NoError(t, e.Redo())
	require.NoError(t, e.Clear())

	require.Len(t, events, 4)
	assert.Equal(t, notify.EventGroupsClosed, events[0].Type)
	assert.Equal(t, notify.EventUndo, events[1].Type)
	assert.Equal(t, "Move", events[1].Description)
	assert.Equal(t, notify.EventRedo, events[2].Type)
	assert.Equal(t, notify.EventCleared, events[3].Type)
}

func TestEditorMergingFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.History.MergeChanges = true
	net := network.New()
	require.NoError(t, net.Add(&network.Element{ID: "E1", Kind: network.KindEdge}))
	e := NewEditor(net, cfg, nil)
	defer e.Close()

	for _, v := range []string{"10", "11", "12"} {
		require.NoError(t, e.SetAttribute("E1", "speed", v))
	}
	assert.Equal(t, 1, e.History().UndoCount())

	require.NoError(t, e.Undo())
	_, set, err := net.Attribute("E1", "speed")
	require.NoError(t, err)
	assert.False(t, set)
}

func TestEditorLogsUndo(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: slog.LevelDebug, Output: &buf})
	e := NewEditor(nil, nil, logger)
	defer e.Close()

	id, err := e.CreateElement(&network.Element{Kind: network.KindPolygon})
	require.NoError(t, err)
	require.NoError(t, e.Undo())

	assert.Contains(t, buf.String(), "component=editor")
	assert.Contains(t, buf.String(), "Create poly "+id)
}

func TestEditorClose(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.Begin("left open"))
	require.NoError(t, e.SetAttribute("J1", "x", "9"))

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	assert.Equal(t, "0", attr(t, e, "J1", "x"))
	assert.ErrorIs(t, e.SetAttribute("J1", "x", "1"), ErrClosed)
	assert.ErrorIs(t, e.Undo(), ErrClosed)
}

func TestEditorBeginAfterClose(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.Close())

	assert.ErrorIs(t, e.Begin("too late"), ErrClosed)
	assert.False(t, e.History().HasOpenGroup())
}

func TestEditorUndoSurvivesPanickingObserver(t *testing.T) {
	e := newTestEditor(t)
	var got []notify.EventType
	e.Notifier().SubscribeType(notify.EventUndo, func(notify.Event) { panic("view crashed") })
	e.Notifier().Subscribe(func(ev notify.Event) { got = append(got, ev.Type) })

	require.NoError(t, e.SetAttribute("J1", "x", "10"))
	require.NotPanics(t, func() {
		require.NoError(t, e.Undo())
	})

	assert.Equal(t, "0", attr(t, e, "J1", "x"))
	assert.Contains(t, got, notify.EventUndo)
}
