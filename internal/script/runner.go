package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/netedit/internal/app"
	"github.com/dshills/netedit/internal/engine/history"
	"github.com/dshills/netedit/internal/logging"
	"github.com/dshills/netedit/internal/network"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// ErrScript wraps failures raised inside a script.
var ErrScript = errors.New("script failed")

// Runner executes scripts against one editor.
type Runner struct {
	editor  *app.Editor
	out     io.Writer
	logger  *logging.Logger
	timeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput redirects print() output.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithTimeout sets the maximum run time. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner bound to editor.
func NewRunner(editor *app.Editor, opts ...Option) *Runner {
	r := &Runner{
		editor:  editor,
		out:     os.Stdout,
		logger:  logging.Nop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent("script")
	return r
}

// RunFile executes the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	return r.run(ctx, path, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

// RunString executes source. name is used in error messages.
func (r *Runner) RunString(ctx context.Context, name, source string) error {
	return r.run(ctx, name, func(L *lua.LState) error {
		return L.DoString(source)
	})
}

func (r *Runner) run(ctx context.Context, name string, exec func(L *lua.LState) error) (err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	undo := r.editor.History()
	startDepth := undo.Depth()
	startBusy := r.editor.Busy()
	defer r.editor.SetBusy(startBusy)

	L := newState()
	defer L.Close()
	L.SetContext(ctx)
	r.install(L)

	r.logger.Debug("script start", "script", name)
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("lua panic: %v", p)
			}
		}()
		err = exec(L)
	}()

	if err == nil {
		if open := undo.Depth() - startDepth; open > 0 {
			err = fmt.Errorf("script left %d group(s) open", open)
		} else {
			r.logger.Debug("script done", "script", name)
			return nil
		}
	}

	// Groups the caller opened before the run are left alone.
	for undo.Depth() > startDepth {
		if abortErr := r.editor.Abort(); abortErr != nil {
			err = errors.Join(err, abortErr)
		}
	}
	r.logger.Warn("script failed", "script", name, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrScript, name, err)
}

// newState creates a Lua state with only safe libraries opened.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // We'll open selectively
	})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Base library functions that reach the file system
	for _, name := range []string{"dofile", "loadfile", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// install registers the net table and print.
func (r *Runner) install(L *lua.LState) {
	tbl := L.NewTable()
	L.SetFuncs(tbl, map[string]lua.LGFunction{
		"begin":      r.begin,
		"finish":     r.finish,
		"abort":      r.abort,
		"abort_all":  r.abortAll,
		"set":        r.set,
		"get":        r.get,
		"add":        r.add,
		"remove":     r.remove,
		"undo":       r.undo,
		"redo":       r.redo,
		"can_undo":   r.canUndo,
		"can_redo":   r.canRedo,
		"in_group":   r.inGroup,
		"group_size": r.groupSize,
		"busy":       r.busy,
	})
	L.SetGlobal("net", tbl)
	L.SetGlobal("print", L.NewFunction(r.print))
}

func (r *Runner) begin(L *lua.LState) int {
	raise(L, r.editor.Begin(L.CheckString(1)))
	return 0
}

func (r *Runner) finish(L *lua.LState) int {
	raise(L, r.editor.End())
	return 0
}

func (r *Runner) abort(L *lua.LState) int {
	raise(L, r.editor.Abort())
	return 0
}

func (r *Runner) abortAll(L *lua.LState) int {
	raise(L, r.editor.AbortAll())
	return 0
}

func (r *Runner) set(L *lua.LState) int {
	id := L.CheckString(1)
	key := L.CheckString(2)
	value := L.ToString(3)
	if L.Get(3) == lua.LNil {
		L.ArgError(3, "value expected")
	}
	raise(L, r.editor.SetAttribute(id, key, value))
	return 0
}

func (r *Runner) get(L *lua.LState) int {
	v, ok, err := r.editor.Network().Attribute(L.CheckString(1), L.CheckString(2))
	if err != nil || !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(v))
	return 1
}

func (r *Runner) add(L *lua.LState) int {
	el := &network.Element{
		Kind: network.Kind(L.CheckString(1)),
		ID:   L.OptString(2, ""),
	}
	id, err := r.editor.CreateElement(el)
	raise(L, err)
	L.Push(lua.LString(id))
	return 1
}

func (r *Runner) remove(L *lua.LState) int {
	raise(L, r.editor.DeleteElement(L.CheckString(1)))
	return 0
}

func (r *Runner) undo(L *lua.LState) int {
	return r.step(L, r.editor.Undo())
}

func (r *Runner) redo(L *lua.LState) int {
	return r.step(L, r.editor.Redo())
}

// step reports empty history as false and raises anything else.
func (r *Runner) step(L *lua.LState, err error) int {
	if errors.Is(err, history.ErrEmptyHistory) {
		L.Push(lua.LFalse)
		return 1
	}
	raise(L, err)
	L.Push(lua.LTrue)
	return 1
}

func (r *Runner) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(r.editor.History().CanUndo()))
	return 1
}

func (r *Runner) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(r.editor.History().CanRedo()))
	return 1
}

func (r *Runner) inGroup(L *lua.LState) int {
	L.Push(lua.LBool(r.editor.History().HasOpenGroup()))
	return 1
}

func (r *Runner) groupSize(L *lua.LState) int {
	L.Push(lua.LNumber(r.editor.History().CurrentGroupSize()))
	return 1
}

func (r *Runner) busy(L *lua.LState) int {
	r.editor.SetBusy(L.OptString(1, ""))
	return 0
}

func (r *Runner) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}

// raise converts a Go error into a Lua error.
// Note: L.RaiseError does not return.
func raise(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}
