package util

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "Alien", 10, "Alien"},
		{"exact fit", "The Matrix", 10, "The Matrix"},
		{"too long", "The Good, the Bad and the Ugly", 12, "The Good,..."},
		{"wide runes", "千と千尋の神隠し", 9, "千と千..."},
		{"tiny width", "Heat", 2, "He"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateString(tt.input, tt.maxWidth)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, runewidth.StringWidth(got), tt.maxWidth)
		})
	}
}
