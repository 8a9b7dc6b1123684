package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Theme colours
	Accent = lipgloss.Color("#E50914")
	Subtle = lipgloss.Color("#555555")
	Dimmed = lipgloss.Color("#888888")

	// Text styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(Accent).
		Padding(0, 1)

	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#DEDEDE"))

	Muted = lipgloss.NewStyle().
		Foreground(Dimmed)

	Notice = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFB020")).
		Bold(true)

	CallToAction = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(Accent).
			Bold(true).
			Padding(0, 2)

	Selected = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF5555")).
		Bold(true)
)

// Layout helpers
func Header(width int, title string) string {
	return Title.
		Width(width).
		Align(lipgloss.Center).
		Render(title)
}

func ContentBox(width int, content string, padding int) string {
	return lipgloss.NewStyle().
		Width(width).
		Padding(padding).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Subtle).
		Render(content)
}

// Panel is a bordered box in the accent colour used for overlays such as the settings menu
func Panel(content string) string {
	return lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Accent).
		Render(content)
}

func CenteredView(width int, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func CenteredText(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(text)
}
