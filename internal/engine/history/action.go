package history

// ActionState is what a UI needs to present an undo or redo control.
type ActionState struct {
	Enabled bool
	Label   string
}

// UndoActionState describes the undo control.
func (u *UndoList) UndoActionState() ActionState {
	u.mu.Lock()
	defer u.mu.Unlock()

	info, ok := u.log.PeekUndo()
	return u.actionStateLocked("Undo", ok, info.Description)
}

// RedoActionState describes the redo control.
func (u *UndoList) RedoActionState() ActionState {
	u.mu.Lock()
	defer u.mu.Unlock()

	info, ok := u.log.PeekRedo()
	return u.actionStateLocked("Redo", ok, info.Description)
}

func (u *UndoList) actionStateLocked(verb string, available bool, description string) ActionState {
	busy := ""
	if u.busy != nil {
		busy = u.busy()
	}

	state := ActionState{
		Enabled: available && len(u.groups) == 0 && busy == "",
	}
	switch {
	case busy != "":
		state.Label = "Cannot " + verb + " in the middle of " + busy
	case len(u.groups) > 0:
		state.Label = "Cannot " + verb + " in the middle of " + u.groups[len(u.groups)-1].Name()
	case !available:
		state.Label = verb
	default:
		state.Label = verb + " " + description
	}
	return state
}
