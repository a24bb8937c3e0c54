package script

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/netedit/internal/app"
	"github.com/dshills/netedit/internal/network"
)

func newTestRunner(t *testing.T) (*Runner, *app.Editor, *bytes.Buffer) {
	t.Helper()
	net := network.New()
	require.NoError(t, net.Add(&network.Element{ID: "J1", Kind: network.KindJunction, Attributes: map[string]string{"x": "0"}}))
	editor := app.NewEditor(net, nil, nil)
	t.Cleanup(func() { _ = editor.Close() })

	var out bytes.Buffer
	return NewRunner(editor, WithOutput(&out)), editor, &out
}

func TestRunGroupedEdits(t *testing.T) {
	r, editor, out := newTestRunner(t)

	err := r.RunString(context.Background(), "grouped", `
		net.begin("Move J1")
		net.set("J1", "x", 10)
		net.set("J1", "y", "4")
		print(net.in_group(), net.group_size())
		net.finish()
		print(net.get("J1", "x"), net.get("J1", "missing"))
	`)
	require.NoError(t, err)

	assert.Equal(t, "true\t2\n10\tnil\n", out.String())
	assert.Equal(t, 1, editor.History().UndoCount())
}

func TestRunUndoRedo(t *testing.T) {
	r, editor, out := newTestRunner(t)

	err := r.RunString(context.Background(), "undo", `
		print(net.undo())
		local id = net.add("junction", "J2")
		print(id, net.can_undo())
		print(net.undo(), net.get("J2", "x"))
		print(net.redo(), net.can_redo())
		print(net.redo())
	`)
	require.NoError(t, err)

	assert.Equal(t, "false\nJ2\ttrue\ntrue\tnil\ntrue\tfalse\nfalse\n", out.String())
	assert.True(t, editor.Network().Has("J2"))
}

func TestRunErrorAbortsOpenGroups(t *testing.T) {
	r, editor, _ := newTestRunner(t)

	err := r.RunString(context.Background(), "broken", `
		net.begin("outer")
		net.set("J1", "x", "1")
		net.begin("inner")
		net.remove("J1")
		net.set("J9", "x", "1")
	`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScript)
	assert.Contains(t, err.Error(), "J9")

	assert.False(t, editor.History().HasOpenGroup())
	assert.True(t, editor.Network().Has("J1"))
	v, _, _ := editor.Network().Attribute("J1", "x")
	assert.Equal(t, "0", v)
	assert.False(t, editor.History().CanUndo())
}

func TestRunLeftOpenGroup(t *testing.T) {
	r, editor, _ := newTestRunner(t)

	err := r.RunString(context.Background(), "open", `
		net.begin("forgot")
		net.set("J1", "x", "5")
	`)
	require.ErrorIs(t, err, ErrScript)
	assert.Contains(t, err.Error(), "left 1 group(s) open")

	v, _, _ := editor.Network().Attribute("J1", "x")
	assert.Equal(t, "0", v)
}

func TestRunUnbalancedFinish(t *testing.T) {
	r, _, _ := newTestRunner(t)

	err := r.RunString(context.Background(), "unbalanced", `net.finish()`)
	require.ErrorIs(t, err, ErrScript)
	assert.Contains(t, err.Error(), "unbalanced command group")
}

func TestRunUndoInsideGroupRaises(t *testing.T) {
	r, _, _ := newTestRunner(t)

	err := r.RunString(context.Background(), "undo-in-group", `
		net.set("J1", "x", "5")
		net.begin("G")
		net.undo()
	`)
	require.ErrorIs(t, err, ErrScript)
	assert.Contains(t, err.Error(), "command group is open")
}

func TestRunBusyBlocksUndo(t *testing.T) {
	r, editor, _ := newTestRunner(t)

	err := r.RunString(context.Background(), "busy", `
		net.set("J1", "x", "5")
		net.busy("recompute")
		local ok, msg = pcall(net.undo)
		print(ok)
		net.busy()
		net.undo()
	`)
	require.NoError(t, err)
	assert.Equal(t, "", editor.Busy())
	assert.False(t, editor.History().CanUndo())
}

func TestRunSandbox(t *testing.T) {
	r, _, _ := newTestRunner(t)

	for _, src := range []string{
		`os.exit(1)`,
		`io.write("x")`,
		`dofile("/etc/passwd")`,
		`require("os")`,
	} {
		err := r.RunString(context.Background(), "sandbox", src)
		assert.Error(t, err, src)
	}
}

func TestRunTimeout(t *testing.T) {
	r, editor, _ := newTestRunner(t)
	r = NewRunner(editor, WithTimeout(50*time.Millisecond))

	err := r.RunString(context.Background(), "loop", `while true do end`)
	assert.ErrorIs(t, err, ErrScript)
}

func TestRunFile(t *testing.T) {
	r, editor, _ := newTestRunner(t)
	path := filepath.Join(t.TempDir(), "edit.lua")
	require.NoError(t, os.WriteFile(path, []byte(`net.set("J1", "x", "3")`), 0o600))

	require.NoError(t, r.RunFile(context.Background(), path))
	v, _, _ := editor.Network().Attribute("J1", "x")
	assert.Equal(t, "3", v)
}

func TestRunRestoresBusy(t *testing.T) {
	tests := []struct {
		name   string
		before string
		src    string
	}{
		{"cleared after success", "", `net.set("J1", "x", "5") net.busy("recompute")`},
		{"cleared after failure", "", `net.busy("recompute") error("boom")`},
		{"caller busy kept", "loading", `net.busy("recompute")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, editor, _ := newTestRunner(t)
			editor.SetBusy(tt.before)

			_ = r.RunString(context.Background(), "busy", tt.src)

			assert.Equal(t, tt.before, editor.Busy())
		})
	}
}

func TestRunErrorKeepsCallerGroups(t *testing.T) {
	r, editor, _ := newTestRunner(t)

	require.NoError(t, editor.Begin("caller"))
	require.NoError(t, editor.SetAttribute("J1", "x", "7"))

	err := r.RunString(context.Background(), "broken", `
		net.begin("script")
		net.set("J1", "y", "1")
		error("boom")
	`)
	require.ErrorIs(t, err, ErrScript)

	assert.Equal(t, 1, editor.History().Depth())
	top, _ := editor.History().TopDescription()
	assert.Equal(t, "caller", top)
	assert.Equal(t, 1, editor.History().CurrentGroupSize())

	v, _, _ := editor.Network().Attribute("J1", "x")
	assert.Equal(t, "7", v)
	_, ok, _ := editor.Network().Attribute("J1", "y")
	assert.False(t, ok)

	require.NoError(t, editor.End())
	assert.Equal(t, 1, editor.History().UndoCount())
}

func TestRunLeftOpenCountsOnlyScriptGroups(t *testing.T) {
	r, editor, _ := newTestRunner(t)
	require.NoError(t, editor.Begin("caller"))

	err := r.RunString(context.Background(), "open", `net.begin("forgot")`)
	require.ErrorIs(t, err, ErrScript)
	assert.Contains(t, err.Error(), "left 1 group(s) open")
	assert.Equal(t, 1, editor.History().Depth())
}
