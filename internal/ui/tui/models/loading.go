package models

import (
	"time"

	"github.com/PizzaHomicide/reel/internal/log"
	"github.com/PizzaHomicide/reel/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// slowStartThreshold is how long loading may take before the slow hint is shown
const slowStartThreshold = 5 * time.Second

// LoadingModel displays a loading indicator while the media backend starts
type LoadingModel struct {
	width, height int
	title         string // Optional title above the box, usually the movie title
	message       string // Primary message displayed with the spinner
	slowHint      string // Shown under the message once loading has taken a while
	spinner       spinner.Model
	startTime     time.Time
}

// NewLoadingModel creates a new loading model with the required message
func NewLoadingModel(message string) *LoadingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Accent).Bold(true)

	return &LoadingModel{
		message:   message,
		spinner:   s,
		startTime: time.Now(),
	}
}

// WithTitle adds an optional title to the loading box
func (m *LoadingModel) WithTitle(title string) *LoadingModel {
	m.title = title
	return m
}

// WithSlowHint sets text that is only shown if loading takes longer than expected
func (m *LoadingModel) WithSlowHint(text string) *LoadingModel {
	m.slowHint = text
	return m
}

// ViewType returns the type of view
func (m *LoadingModel) ViewType() View {
	return ViewLoading
}

// Init initializes the model
func (m *LoadingModel) Init() tea.Cmd {
	m.startTime = time.Now()
	return m.spinner.Tick
}

// Update handles messages
func (m *LoadingModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	log.Trace("Loading model ignoring message", "message", msg)
	return m, nil
}

// View renders the loading state
func (m *LoadingModel) View() string {
	// Not too wide, not too narrow
	contentWidth := min(m.width-20, 60)
	if contentWidth < 30 {
		contentWidth = max(m.width-4, 1)
	}

	rows := []string{m.spinner.View() + " " + lipgloss.NewStyle().Bold(true).Render(m.message)}
	if m.slowHint != "" && m.Elapsed() > slowStartThreshold {
		rows = append(rows, "", styles.Notice.Width(contentWidth).Align(lipgloss.Center).Render(m.slowHint))
	}

	box := lipgloss.NewStyle().
		Width(contentWidth).
		Padding(1, 2).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Accent).
		Render(lipgloss.JoinVertical(lipgloss.Center, rows...))

	if m.title != "" {
		header := styles.Title.Width(lipgloss.Width(box)).Align(lipgloss.Center).Render(m.title)
		box = lipgloss.JoinVertical(lipgloss.Center, header, box)
	}

	return styles.CenteredView(m.width, m.height, box)
}

// Resize updates the dimensions of the loading model
func (m *LoadingModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// Elapsed returns the time elapsed since loading started
func (m *LoadingModel) Elapsed() time.Duration {
	return time.Since(m.startTime)
}
