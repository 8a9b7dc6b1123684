package components

import (
	"strings"

	"github.com/PizzaHomicide/reel/internal/ui/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

var levelStyle = lipgloss.NewStyle().Foreground(styles.Accent)

// LevelBar draws a fixed width gauge for a value in [0,1], e.g. the volume
func LevelBar(width int, level float64) string {
	if width <= 0 {
		return ""
	}
	level = max(0, min(1, level))
	filled := int(level*float64(width) + 0.5)
	return levelStyle.Render(strings.Repeat("█", filled)) +
		styles.Muted.Render(strings.Repeat("░", width-filled))
}
