package models

import tea "github.com/charmbracelet/bubbletea"

// View represents a specific UI view in the application
type View string

// Available views in the application
const (
	ViewLoading View = "loading"
	ViewPlayer  View = "player"
	ViewHelp    View = "help"
	ViewError   View = "error"
)

// Modal represents a UI intended to be temporarily shown to the user before returning to the original view
type Modal string

// Available modals in the application
const (
	ModalNone Modal = "none"
	ModalHelp Modal = "help"
)

// Model is implemented by every child model the AppModel delegates to
type Model interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Model, tea.Cmd)
	View() string
	Resize(width, height int)
	ViewType() View
}
