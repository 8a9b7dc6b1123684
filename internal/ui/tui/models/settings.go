package models

import (
	"fmt"
	"strings"

	"github.com/PizzaHomicide/reel/internal/player"
	"github.com/PizzaHomicide/reel/internal/ui/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// settingItem is one selectable row of the settings panel.  Exactly one of quality or speed is set.
type settingItem struct {
	quality player.Quality
	speed   float64
}

func (i settingItem) isQuality() bool {
	return i.quality != ""
}

// SettingsModel is the cursor over the quality and speed options.  The panel's visibility is owned by the controller.
type SettingsModel struct {
	items  []settingItem
	cursor int
}

// NewSettingsModel creates a settings panel listing every quality tier followed by every speed
func NewSettingsModel() *SettingsModel {
	items := make([]settingItem, 0, len(player.Qualities)+len(player.Speeds))
	for _, q := range player.Qualities {
		items = append(items, settingItem{quality: q})
	}
	for _, s := range player.Speeds {
		items = append(items, settingItem{speed: s})
	}
	return &SettingsModel{items: items}
}

// Reset puts the cursor on the active quality tier
func (m *SettingsModel) Reset(s player.Snapshot) {
	m.cursor = 0
	for i, item := range m.items {
		if item.quality == s.Quality {
			m.cursor = i
			return
		}
	}
}

func (m *SettingsModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *SettingsModel) MoveDown() {
	if m.cursor < len(m.items)-1 {
		m.cursor++
	}
}

func (m *SettingsModel) MoveTop() {
	m.cursor = 0
}

func (m *SettingsModel) MoveBottom() {
	m.cursor = len(m.items) - 1
}

// Selected returns the item under the cursor
func (m *SettingsModel) Selected() settingItem {
	return m.items[m.cursor]
}

// View renders the panel, marking the active quality and speed
func (m *SettingsModel) View(s player.Snapshot) string {
	var b strings.Builder

	heading := lipgloss.NewStyle().Bold(true).Foreground(styles.Accent)
	b.WriteString(heading.Render("Quality"))
	b.WriteString("\n")

	for i, item := range m.items {
		if i == len(player.Qualities) {
			b.WriteString("\n")
			b.WriteString(heading.Render("Speed"))
			b.WriteString("\n")
		}

		var label string
		var active bool
		if item.isQuality() {
			label = item.quality.Label()
			active = item.quality == s.Quality
		} else {
			label = player.SpeedLabel(item.speed)
			active = item.speed == s.PlaybackRate
		}

		marker := "  "
		if active {
			marker = "✓ "
		}
		line := fmt.Sprintf("%s%s", marker, label)
		if i == m.cursor {
			line = styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return styles.Panel(strings.TrimSuffix(b.String(), "\n"))
}
