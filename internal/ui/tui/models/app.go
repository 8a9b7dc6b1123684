package models

import (
	"context"
	"time"

	"github.com/PizzaHomicide/reel/internal/config"
	"github.com/PizzaHomicide/reel/internal/domain"
	"github.com/PizzaHomicide/reel/internal/log"
	"github.com/PizzaHomicide/reel/internal/player"
	kb "github.com/PizzaHomicide/reel/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/reel/internal/ui/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// mediaStartTimeout bounds how long the media backend may take to come up
const mediaStartTimeout = 20 * time.Second

// AppModel is the main application model that coordinates all child models.  It is the high level wrapper.
type AppModel struct {
	config        *config.Config
	activeView    View  // Track the current active 'main view'
	activeModal   Modal // Track the current active 'modal overlay' if any
	width, height int
	err           error

	media player.MediaBackend

	// Models used for various views
	loadingModel *LoadingModel
	playerModel  *PlayerModel
	helpModel    *HelpModel
}

// NewAppModel creates a new instance of the main application model.  The media backend is started by Init.
func NewAppModel(cfg *config.Config, movie *domain.Movie, media player.MediaBackend, controller *player.Controller) AppModel {
	loading := NewLoadingModel("Starting " + cfg.Player.Type).
		WithTitle(movie.Title).
		WithSlowHint("Still waiting for the player.  Check player.path in your config file.")

	return AppModel{
		config:       cfg,
		activeView:   ViewLoading,
		activeModal:  ModalNone,
		media:        media,
		loadingModel: loading,
		playerModel:  NewPlayerModel(movie, controller),
		helpModel:    NewHelpModel(ViewLoading),
	}
}

func (m AppModel) Init() tea.Cmd {
	log.Info("Initialising Reel TUI")
	return tea.Batch(m.loadingModel.Init(), startMedia(m.media))
}

// startMedia launches the media backend off the bubbletea loop
func startMedia(media player.MediaBackend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mediaStartTimeout)
		defer cancel()

		if err := media.Start(ctx); err != nil {
			return MediaStartErrorMsg{Error: err}
		}
		return MediaStartedMsg{}
	}
}

// Update handles messages and updates the models as appropriate
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextGlobal) {
		case kb.ActionQuit:
			log.Info("Quit command received.  Shutting down...")
			m.playerModel.Stop()
			return m, tea.Quit
		case kb.ActionToggleHelp:
			log.Debug("Help requested", "active_view", m.activeView)
			// Disable/toggle modal if one already active
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
			} else {
				m.helpModel.SetContext(m.activeView)
				m.activeModal = ModalHelp
			}
			return m, nil
		case kb.ActionBack:
			// Handle closing modal when esc is pressed if any is active
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
				return m, nil
			}
		}

		if m.activeView == ViewError {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "old_width", m.width, "new_width", msg.Width, "old_height", m.height, "new_height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

		// Propagate new window size to all views so they are aware and can render correctly
		m.loadingModel.Resize(msg.Width, msg.Height)
		m.playerModel.Resize(msg.Width, msg.Height)
		m.helpModel.Resize(msg.Width, msg.Height)
		return m, nil

	case MediaStartedMsg:
		log.Info("Media backend started")
		m.activeView = ViewPlayer
		return m, m.playerModel.Init()

	case MediaStartErrorMsg:
		log.Error("Failed to start media backend", "error", msg.Error)
		m.err = msg.Error
		m.activeView = ViewError
		m.activeModal = ModalNone
		return m, nil

	case PlaybackClosedMsg:
		log.Info("Playback closed.  Shutting down...")
		return m, tea.Quit
	}

	// Input goes to the modal if one is active.  Everything else keeps flowing to the view underneath.
	if m.activeModal == ModalHelp {
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg:
			model, cmd := m.helpModel.Update(msg)
			m.helpModel = model.(*HelpModel)
			return m, cmd
		}
	}

	// Delegate message processing to the active view
	switch m.activeView {
	case ViewLoading:
		model, cmd := m.loadingModel.Update(msg)
		m.loadingModel = model.(*LoadingModel)
		return m, cmd
	case ViewPlayer:
		model, cmd := m.playerModel.Update(msg)
		m.playerModel = model.(*PlayerModel)
		return m, cmd
	}

	return m, nil
}

func (m AppModel) View() string {
	// If there is an active modal it takes precedence
	switch m.activeModal {
	case ModalHelp:
		return m.helpModel.View()
	}

	// Else display the actual view
	switch m.activeView {
	case ViewLoading:
		return m.loadingModel.View()
	case ViewPlayer:
		return m.playerModel.View()
	case ViewError:
		return m.errorView()
	default:
		return "Unknown view\nPress ctrl+c to quit."
	}
}

func (m AppModel) errorView() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.Error.Render("Unable to start playback"),
		"",
		styles.Info.Render(m.err.Error()),
		"",
		styles.Muted.Render("Press any key to quit"),
	)
	return styles.CenteredView(m.width, m.height, styles.Panel(content))
}
