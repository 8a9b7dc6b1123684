package models

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/PizzaHomicide/reel/internal/domain"
	"github.com/PizzaHomicide/reel/internal/log"
	"github.com/PizzaHomicide/reel/internal/player"
	"github.com/PizzaHomicide/reel/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/reel/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/reel/internal/ui/tui/styles"
	"github.com/PizzaHomicide/reel/internal/ui/tui/util"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// VolumeStep is the change applied by one volume key press or wheel notch
	VolumeStep = 0.1

	controlsHeight = 3 // Progress bar, status line, key bar
	progressMargin = 2
	volumeBarWidth = 10
)

// PlayerModel drives a playback controller from terminal input and renders its state
type PlayerModel struct {
	width, height int
	movie         *domain.Movie
	controller    *player.Controller
	settings      *SettingsModel
	progress      progress.Model
	spinner       spinner.Model
}

// NewPlayerModel creates a player view for a movie.  The controller is mounted by Init.
func NewPlayerModel(movie *domain.Movie, controller *player.Controller) *PlayerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Accent)

	return &PlayerModel{
		movie:      movie,
		controller: controller,
		settings:   NewSettingsModel(),
		progress:   progress.New(progress.WithSolidFill(string(styles.Accent)), progress.WithoutPercentage()),
		spinner:    s,
	}
}

func (m *PlayerModel) ViewType() View {
	return ViewPlayer
}

// Init mounts the controller, which starts loading the source, and begins listening for its events
func (m *PlayerModel) Init() tea.Cmd {
	if err := m.controller.Mount(context.Background()); err != nil {
		log.Error("Failed to mount playback controller", "error", err)
		return func() tea.Msg {
			return MediaStartErrorMsg{Error: err}
		}
	}
	return tea.Batch(m.listenForControllerEvents(), m.spinner.Tick)
}

// listenForControllerEvents waits for the next event in the controller's inbox.  It must be re-issued after every
// event so that all events are handled on the bubbletea loop, one at a time.
func (m *PlayerModel) listenForControllerEvents() tea.Cmd {
	inbox, done := m.controller.Inbox(), m.controller.Done()
	return func() tea.Msg {
		select {
		case ev := <-inbox:
			return controllerEventMsg{event: ev}
		case <-done:
			return PlaybackClosedMsg{}
		}
	}
}

// Update handles messages
func (m *PlayerModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case controllerEventMsg:
		m.controller.Handle(msg.event)
		if !m.controller.Mounted() {
			return m, func() tea.Msg { return PlaybackClosedMsg{} }
		}
		return m, m.listenForControllerEvents()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.FocusMsg:
		m.controller.ShowControlsTemporarily()
		return m, nil

	case tea.BlurMsg:
		m.controller.HideControlsNow()
		return m, nil
	}

	return m, nil
}

// Stop unmounts the controller.  It is safe to call more than once.
func (m *PlayerModel) Stop() {
	m.controller.Unmount()
}

func (m *PlayerModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.controller.Snapshot().ShowSettings {
		return m.handleSettingsKey(msg)
	}

	switch kb.GetActionByKey(msg, kb.ContextPlayer) {
	case kb.ActionTogglePlay:
		m.controller.TogglePlay()
	case kb.ActionSkipBack:
		m.controller.Skip(-player.SkipInterval)
	case kb.ActionSkipForward:
		m.controller.Skip(player.SkipInterval)
	case kb.ActionSeekStart:
		m.controller.Seek(0)
	case kb.ActionSeekEnd:
		m.controller.Seek(m.controller.Snapshot().Duration)
	case kb.ActionVolumeUp:
		m.changeVolume(VolumeStep)
	case kb.ActionVolumeDown:
		m.changeVolume(-VolumeStep)
	case kb.ActionToggleMute:
		m.controller.ToggleMute()
	case kb.ActionSpeedDown:
		m.setSpeed(player.PrevSpeed(m.controller.Snapshot().PlaybackRate))
	case kb.ActionSpeedUp:
		m.setSpeed(player.NextSpeed(m.controller.Snapshot().PlaybackRate))
	case kb.ActionShowControls:
		m.controller.ShowControlsTemporarily()
	case kb.ActionOpenSettings:
		m.settings.Reset(m.controller.Snapshot())
		m.controller.ToggleSettings()
	case kb.ActionQualityAuto:
		m.switchQuality(player.QualityAuto)
	case kb.ActionQuality1080:
		m.switchQuality(player.Quality1080)
	case kb.ActionQuality720:
		m.switchQuality(player.Quality720)
	case kb.ActionQuality480:
		m.switchQuality(player.Quality480)
	case kb.ActionQuality240:
		m.switchQuality(player.Quality240)
	case kb.ActionQuit:
		log.Info("Stopping playback", "title", m.title())
		m.Stop()
		return tea.Quit
	}
	return nil
}

func (m *PlayerModel) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	action := kb.GetActionByKey(msg, kb.ContextSettings)
	if action == "" {
		action = kb.GetActionByKey(msg, kb.ContextGlobal)
	}

	switch action {
	case kb.ActionMoveUp:
		m.settings.MoveUp()
	case kb.ActionMoveDown:
		m.settings.MoveDown()
	case kb.ActionMoveTop, kb.ActionPageUp:
		m.settings.MoveTop()
	case kb.ActionMoveBottom, kb.ActionPageDown:
		m.settings.MoveBottom()
	case kb.ActionSelectSetting:
		item := m.settings.Selected()
		if item.isQuality() {
			m.switchQuality(item.quality)
		} else {
			m.setSpeed(item.speed)
		}
	case kb.ActionBack:
		m.controller.CloseSettings()
	}
	return nil
}

func (m *PlayerModel) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionMotion:
		m.controller.ShowControlsTemporarily()
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.changeVolume(VolumeStep)
		case tea.MouseButtonWheelDown:
			m.changeVolume(-VolumeStep)
		case tea.MouseButtonLeft:
			if fraction, ok := m.progressFraction(msg.X, msg.Y); ok {
				m.controller.Seek(fraction * m.controller.Snapshot().Duration)
				return
			}
			m.controller.TogglePlay()
		}
	}
}

// progressFraction maps a click on the progress bar to a fraction of the duration
func (m *PlayerModel) progressFraction(x, y int) (float64, bool) {
	if !m.controller.Snapshot().ShowControls || y != m.height-controlsHeight {
		return 0, false
	}
	width := m.progressWidth()
	if x < progressMargin || x >= progressMargin+width {
		return 0, false
	}
	if width == 1 {
		return 0, true
	}
	return float64(x-progressMargin) / float64(width-1), true
}

// changeVolume steps the volume, snapping to whole steps so repeated presses land exactly on 0 and mute
func (m *PlayerModel) changeVolume(delta float64) {
	v := m.controller.Snapshot().EffectiveVolume() + delta
	m.controller.SetVolume(math.Round(v/VolumeStep) * VolumeStep)
}

func (m *PlayerModel) setSpeed(rate float64) {
	if err := m.controller.SetSpeed(rate); err != nil {
		log.Warn("Failed to change playback speed", "speed", rate, "error", err)
	}
}

func (m *PlayerModel) switchQuality(q player.Quality) {
	if err := m.controller.SwitchQuality(q); err != nil {
		log.Warn("Failed to switch quality", "quality", q, "error", err)
	}
}

// Resize updates the dimensions of the player model
func (m *PlayerModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.progress.Width = m.progressWidth()
}

func (m *PlayerModel) progressWidth() int {
	return max(m.width-2*progressMargin, 1)
}

func (m *PlayerModel) title() string {
	if m.movie == nil || m.movie.Title == "" {
		return "Reel"
	}
	return m.movie.Title
}

// View renders the player
func (m *PlayerModel) View() string {
	s := m.controller.Snapshot()

	header := styles.Header(m.width, util.TruncateString(m.title(), max(m.width-2, 1)))
	bodyHeight := max(m.height-lipgloss.Height(header)-controlsHeight, 0)
	body := styles.CenteredView(m.width, bodyHeight, m.renderBody(s))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderControls(s))
}

func (m *PlayerModel) renderBody(s player.Snapshot) string {
	if s.ShowSettings {
		return m.settings.View(s)
	}

	var rows []string
	switch {
	case s.SwitchingQuality:
		rows = append(rows, m.spinner.View()+" Switching to "+s.Quality.Label())
	case s.Phase == player.PhaseLoading:
		rows = append(rows, m.spinner.View()+" Loading")
	case s.ShowCenterButton():
		rows = append(rows, lipgloss.NewStyle().Bold(true).Foreground(styles.Accent).Render(centerGlyph(s)))
	}

	if s.ShowUnmutePrompt() {
		rows = append(rows, "", styles.CallToAction.Render("Muted: press m to unmute"))
	}
	if s.Notice != "" {
		rows = append(rows, "", styles.Notice.Render(s.Notice))
	}
	if !s.Playing && m.movie != nil && m.movie.Description != "" {
		description := lipgloss.NewStyle().
			Width(min(60, max(m.width-4, 1))).
			Align(lipgloss.Center).
			Inherit(styles.Muted).
			Render(m.movie.Description)
		rows = append(rows, "", description)
	}

	return lipgloss.JoinVertical(lipgloss.Center, rows...)
}

func centerGlyph(s player.Snapshot) string {
	switch {
	case s.Phase == player.PhaseEnded:
		return "↻  Play again"
	case s.Playing:
		return "❚❚"
	default:
		return "▶"
	}
}

// renderControls draws the transport bar, or blank space of the same height while it is hidden
func (m *PlayerModel) renderControls(s player.Snapshot) string {
	if !s.ShowControls {
		return strings.Repeat("\n", controlsHeight-1)
	}

	bar := strings.Repeat(" ", progressMargin) + m.progress.ViewAs(s.Progress())

	state := "▶"
	if s.Playing {
		state = "❚❚"
	}
	volume := "vol"
	if s.Muted {
		volume = "muted"
	}
	status := []string{
		state,
		fmt.Sprintf("%s / %s", s.Elapsed(), s.Total()),
		fmt.Sprintf("%s %s %3.0f%%", volume, components.LevelBar(volumeBarWidth, s.EffectiveVolume()), s.EffectiveVolume()*100),
		player.SpeedLabel(s.PlaybackRate),
		s.Quality.Label(),
	}
	if s.Loop {
		status = append(status, "loop")
	}

	keys := components.KeyBindingsBar(m.width, []components.KeyBinding{
		{Key: playerKey(kb.ActionTogglePlay), Desc: "play/pause"},
		{Key: "←/→", Desc: "skip 10s"},
		{Key: "↑/↓", Desc: "volume"},
		{Key: playerKey(kb.ActionToggleMute), Desc: "mute"},
		{Key: playerKey(kb.ActionOpenSettings), Desc: "settings"},
		{Key: kb.GetActionKey(kb.ActionToggleHelp, kb.ContextBindings[kb.ContextGlobal]), Desc: "help"},
		{Key: playerKey(kb.ActionQuit), Desc: "quit"},
	})

	return lipgloss.JoinVertical(lipgloss.Left,
		bar,
		styles.CenteredText(m.width, styles.Info.Render(strings.Join(status, "   "))),
		keys,
	)
}

// playerKey is the printable primary key bound to a player action
func playerKey(action kb.Action) string {
	return kb.DisplayKey(kb.GetActionKey(action, kb.ContextBindings[kb.ContextPlayer]))
}
