package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/netedit/internal/engine/history"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	undoneStyle   = lipgloss.NewStyle().Faint(true)
)

// renderHistory writes the action labels and the undo/redo entries.
// Redoable entries are listed above the cursor, undoable ones below it,
// newest first.
func renderHistory(w io.Writer, u *history.UndoList) error {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Actions"))
	b.WriteString("\n")
	for _, st := range []history.ActionState{u.UndoActionState(), u.RedoActionState()} {
		style := disabledStyle
		if st.Enabled {
			style = enabledStyle
		}
		b.WriteString("  " + style.Render(st.Label) + "\n")
	}

	b.WriteString(headerStyle.Render("History"))
	b.WriteString("\n")
	redo := u.RedoInfo()
	for i := len(redo) - 1; i >= 0; i-- {
		b.WriteString("  " + undoneStyle.Render("  "+redo[i].Description) + "\n")
	}
	for i, info := range u.UndoInfo() {
		marker := "  "
		if i == 0 {
			marker = "> "
		}
		b.WriteString("  " + marker + info.Description + "\n")
	}
	if len(redo) == 0 && u.UndoCount() == 0 {
		b.WriteString("  " + disabledStyle.Render("(empty)") + "\n")
	}

	_, err := fmt.Fprint(w, b.String())
	return err
}
