package keymap

// DefaultBindings returns the default key bindings, grouped by context.
func DefaultBindings() []Binding {
	return []Binding{
		// Global
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},

		// Landing
		{Key: "l", Command: CmdOpenLogin, Context: ContextLanding, Description: "Log in"},
		{Key: "r", Command: CmdOpenRegister, Context: ContextLanding, Description: "Register"},
		{Key: "q", Command: CmdQuit, Context: ContextLanding, Description: "Quit"},

		// Dashboard
		{Key: "j", Command: CmdCursorDown, Context: ContextDashboard, Description: "Move down"},
		{Key: "down", Command: CmdCursorDown, Context: ContextDashboard, Description: "Move down"},
		{Key: "k", Command: CmdCursorUp, Context: ContextDashboard, Description: "Move up"},
		{Key: "up", Command: CmdCursorUp, Context: ContextDashboard, Description: "Move up"},
		{Key: "g g", Command: CmdCursorTop, Context: ContextDashboard, Description: "Go to top"},
		{Key: "G", Command: CmdCursorBottom, Context: ContextDashboard, Description: "Go to bottom"},
		{Key: "enter", Command: CmdOpenDetails, Context: ContextDashboard, Description: "Open task"},
		{Key: "n", Command: CmdNewTask, Context: ContextDashboard, Description: "New task"},
		{Key: "d", Command: CmdDelete, Context: ContextDashboard, Description: "Delete task"},
		{Key: "x", Command: CmdDelete, Context: ContextDashboard, Description: "Delete task"},
		{Key: "r", Command: CmdRefresh, Context: ContextDashboard, Description: "Refresh"},
		{Key: "L", Command: CmdLogout, Context: ContextDashboard, Description: "Log out"},
		{Key: "?", Command: CmdToggleHelp, Context: ContextDashboard, Description: "Toggle help"},
		{Key: "q", Command: CmdQuit, Context: ContextDashboard, Description: "Quit"},

		// Detail view
		{Key: "j", Command: CmdScrollDown, Context: ContextDetail, Description: "Scroll down"},
		{Key: "down", Command: CmdScrollDown, Context: ContextDetail, Description: "Scroll down"},
		{Key: "k", Command: CmdScrollUp, Context: ContextDetail, Description: "Scroll up"},
		{Key: "up", Command: CmdScrollUp, Context: ContextDetail, Description: "Scroll up"},
		{Key: "esc", Command: CmdBack, Context: ContextDetail, Description: "Back to list"},
		{Key: "enter", Command: CmdBack, Context: ContextDetail, Description: "Back to list"},
		{Key: "d", Command: CmdDelete, Context: ContextDetail, Description: "Delete task"},
		{Key: "q", Command: CmdBack, Context: ContextDetail, Description: "Back to list"},

		// Delete confirmation
		{Key: "y", Command: CmdConfirm, Context: ContextConfirm, Description: "Confirm delete"},
		{Key: "Y", Command: CmdConfirm, Context: ContextConfirm, Description: "Confirm delete"},
		{Key: "n", Command: CmdCancel, Context: ContextConfirm, Description: "Cancel"},
		{Key: "N", Command: CmdCancel, Context: ContextConfirm, Description: "Cancel"},
		{Key: "esc", Command: CmdCancel, Context: ContextConfirm, Description: "Cancel"},

		// Forms: other keys go to the huh form
		{Key: "esc", Command: CmdFormCancel, Context: ContextForm, Description: "Cancel"},
		{Key: "ctrl+s", Command: CmdFormSubmit, Context: ContextForm, Description: "Submit"},

		// Help overlay
		{Key: "?", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
		{Key: "esc", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
		{Key: "q", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
	}
}

// RegisterDefaults registers all default bindings with the registry
func RegisterDefaults(r *Registry) {
	r.RegisterBindings(DefaultBindings())
}
