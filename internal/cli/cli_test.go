package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/netedit/internal/network"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("1.2.3")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const netJSON = `{"elements":[{"id":"J1","kind":"junction","attributes":{"x":"0"}}]}`

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "netedit 1.2.3\n", out)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	netPath := writeFile(t, dir, "net.json", netJSON)
	scriptPath := writeFile(t, dir, "edit.lua", `
		net.begin("Move J1")
		net.set("J1", "x", "10")
		net.set("J1", "y", "5")
		net.finish()
		print("done")
	`)
	outPath := filepath.Join(dir, "out.json")

	out, err := execute(t, "run", scriptPath, "--net", netPath, "--out", outPath)
	require.NoError(t, err)

	assert.Contains(t, out, "done")
	assert.Contains(t, out, "Undo Move J1")
	assert.Contains(t, out, "> Move J1")

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	saved, err := network.Load(f)
	require.NoError(t, err)

	x, ok, err := saved.Attribute("J1", "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "10", x)
}

func TestRunCommandScriptError(t *testing.T) {
	dir := t.TempDir()
	netPath := writeFile(t, dir, "net.json", netJSON)
	scriptPath := writeFile(t, dir, "bad.lua", `
		net.begin("Broken")
		net.set("J1", "x", "10")
		error("boom")
	`)
	outPath := filepath.Join(dir, "out.json")

	_, err := execute(t, "run", scriptPath, "--net", netPath, "--out", outPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "edit.lua", `
		local id = net.add("junction", "J9")
		net.begin("Tag J9")
		net.set(id, "name", "north")
		net.finish()
		net.undo()
	`)

	out, err := execute(t, "history", scriptPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Redo Tag J9")
	assert.Contains(t, out, "Tag J9")
	assert.Contains(t, out, "> Create junction J9")
}

func TestHistoryCommandEmpty(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "noop.lua", `print("nothing")`)

	out, err := execute(t, "history", scriptPath)
	require.NoError(t, err)
	assert.Contains(t, out, "(empty)")
	assert.NotContains(t, out, "nothing")
}

func TestRootInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --log-level")
}

func TestRootConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "netedit.toml", "[history]\nmax_entries = 1\n")
	scriptPath := writeFile(t, dir, "edit.lua", `
		local a = net.add("junction", "A")
		local b = net.add("junction", "B")
	`)

	out, err := execute(t, "--config", cfgPath, "history", scriptPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Create junction B")
	assert.NotContains(t, out, "Create junction A")
}

func TestRunMissingArgument(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

func TestRunCommandClosesLogFileOnError(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "netedit.log")
	cfgPath := writeFile(t, dir, "netedit.yaml", "log:\n  level: debug\n  file: "+logPath+"\n")
	scriptPath := writeFile(t, dir, "bad.lua", `error("boom")`)

	opts := &options{}
	root := newRootCommand("test", opts)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfgPath, "run", scriptPath})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Nil(t, opts.logCloser)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "script failed")
}
