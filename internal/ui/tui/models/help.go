package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PizzaHomicide/reel/internal/player"
	kb "github.com/PizzaHomicide/reel/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/reel/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel displays contextual help with scrolling
type HelpModel struct {
	width, height int
	context       View
	viewport      viewport.Model
}

// NewHelpModel creates a new help model for the given context
func NewHelpModel(context View) *HelpModel {
	return &HelpModel{
		context:  context,
		viewport: viewport.New(0, 0),
	}
}

// SetContext switches the help content to the given view
func (m *HelpModel) SetContext(context View) {
	if m.context == context {
		return
	}
	m.context = context
	m.updateContent()
}

func (m *HelpModel) ViewType() View {
	return ViewHelp
}

// Init initializes the model
func (m *HelpModel) Init() tea.Cmd {
	// Set initial content if dimensions are available
	if m.width > 0 && m.height > 0 {
		m.updateContent()
	}
	return nil
}

// Update handles messages
func (m *HelpModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextHelp) {
		case kb.ActionMoveUp, kb.ActionMoveDown, kb.ActionPageUp, kb.ActionPageDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case kb.ActionMoveTop:
			m.viewport.GotoTop()
			return m, cmd
		case kb.ActionMoveBottom:
			m.viewport.GotoBottom()
			return m, cmd
		}

	}
	return m, cmd
}

// Resize updates the dimensions
func (m *HelpModel) Resize(width, height int) {
	m.width = width
	m.height = height

	// Update viewport dimensions
	contentWidth := width - 4    // Account for borders
	contentHeight := height - 10 // Account for header, footer, spacing

	// Ensure we don't set negative dimensions
	if contentWidth < 1 {
		contentWidth = 1
	}
	if contentHeight < 1 {
		contentHeight = 1
	}

	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight

	// Update content for new dimensions
	m.updateContent()
}

// updateContent generates help content and updates the viewport
func (m *HelpModel) updateContent() {
	content := m.generateHelpContent()
	m.viewport.SetContent(content)
	// Reset to top when content changes
	m.viewport.GotoTop()
}

// View renders the help screen
func (m *HelpModel) View() string {
	title := m.getContextTitle()

	// Create header
	header := styles.Header(m.width, "Help: "+title)

	// Main content area with viewport
	contentView := m.viewport.View()

	// Footer with navigation help
	scrollText := "↑/↓: Scroll • PgUp/PgDn: Page scroll • Home/End: Goto top/bottom • ESC/?: Return"
	footer := styles.CenteredText(m.width, styles.Info.Render(scrollText))

	// Combine elements
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"", // Spacing
		styles.ContentBox(m.width-2, contentView, 1),
		"", // Spacing
		footer,
	)
}

// getContextTitle returns a user-friendly title for the context
func (m *HelpModel) getContextTitle() string {
	switch m.context {
	case ViewPlayer:
		return "Player"
	case ViewLoading:
		return "Starting"
	default:
		return "General"
	}
}

// formatKeybindingSection formats a section of keybindings with aligned colons
func (m *HelpModel) formatKeybindingSection(title string, bindings []kb.Binding, skipActions map[kb.Action]bool) string {
	if len(bindings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")

	// First pass: determine the maximum key width for alignment
	maxKeyWidth := 0
	for _, binding := range bindings {
		if skipActions != nil && skipActions[binding.Action] {
			continue
		}

		if width := utf8.RuneCountInString(keyText(binding)); width > maxKeyWidth {
			maxKeyWidth = width
		}
	}

	// Second pass: format each binding with aligned colons
	for _, binding := range bindings {
		if skipActions != nil && skipActions[binding.Action] {
			continue
		}

		text := keyText(binding)
		padding := strings.Repeat(" ", maxKeyWidth-utf8.RuneCountInString(text))

		b.WriteString(fmt.Sprintf("• %s%s : %s\n",
			lipgloss.NewStyle().Bold(true).Render(text),
			padding,
			binding.KeyMap.Help))
	}

	return b.String()
}

func keyText(binding kb.Binding) string {
	text := kb.DisplayKey(binding.KeyMap.Primary)
	if binding.KeyMap.Secondary != "" {
		text += " or " + kb.DisplayKey(binding.KeyMap.Secondary)
	}
	return text
}

// generateHelpContent builds the complete help content
func (m *HelpModel) generateHelpContent() string {
	var b strings.Builder

	// Title style for sections
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Accent)

	// Add context description section
	b.WriteString(titleStyle.Render(m.getContextTitle()))
	b.WriteString("\n\n")
	b.WriteString(m.getContextDescription())
	b.WriteString("\n\n")

	// Add keybindings section
	b.WriteString(titleStyle.Render("Keybindings"))
	b.WriteString("\n\n")

	globalBindings := m.formatKeybindingSection("Global commands:", kb.ContextBindings[kb.ContextGlobal], nil)
	b.WriteString(globalBindings)

	if m.context == ViewPlayer {
		b.WriteString("\n")
		b.WriteString(m.formatKeybindingSection("Player commands:", kb.ContextBindings[kb.ContextPlayer], nil))
		b.WriteString("\n")
		b.WriteString(m.formatKeybindingSection("When the settings panel is open:", kb.ContextBindings[kb.ContextSettings], nil))
		b.WriteString("\n")
		b.WriteString(m.getSettingsDetails())
	}

	return b.String()
}

// getSettingsDetails lists the quality tiers and playback speeds on offer
func (m *HelpModel) getSettingsDetails() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Accent)
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	labels := make([]string, 0, len(player.Qualities))
	for _, q := range player.Qualities {
		labels = append(labels, q.Label())
	}
	b.WriteString("Quality: " + strings.Join(labels, ", ") + "\n")

	labels = labels[:0]
	for _, s := range player.Speeds {
		labels = append(labels, player.SpeedLabel(s))
	}
	b.WriteString("Speed:   " + strings.Join(labels, ", ") + "\n\n")

	b.WriteString("Changing quality reloads the video and picks up at the same position.\n")
	b.WriteString("If the new quality does not load in time, the previous one is restored.\n")

	return b.String()
}

// getContextDescription returns help text for the current context
func (m *HelpModel) getContextDescription() string {
	switch m.context {
	case ViewPlayer:
		return "The player screen controls the video playing in the mpv window.\n\n" +
			"Controls hide a few seconds after the last interaction while the video is playing. " +
			"Move the mouse or press c to bring them back. " +
			"Click the progress bar to seek, or anywhere else to play and pause."

	case ViewLoading:
		return "Reel is starting the media player. If this takes a long time, check the player path in your config file."

	default:
		return "Welcome to Reel, a terminal movie player."
	}
}
