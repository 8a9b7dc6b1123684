package player

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{65, "1:05"},
		{599, "9:59"},
		{59.9, "0:59"},
		{3600, "60:00"},
		{-5, "0:00"},
		{math.NaN(), "0:00"},
		{math.Inf(1), "0:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.seconds), "FormatTime(%v)", tt.seconds)
	}
}

func TestSnapshotDerivedFields(t *testing.T) {
	s := Snapshot{CurrentTime: 30, Duration: 120, Volume: 0.5, Playing: true}

	assert.Equal(t, "0:30", s.Elapsed())
	assert.Equal(t, "2:00", s.Total())
	assert.Equal(t, 0.25, s.Progress())
	assert.Equal(t, 0.5, s.EffectiveVolume())
	assert.False(t, s.ShowCenterButton())
	assert.False(t, s.ShowUnmutePrompt())

	s.Muted = true
	assert.Equal(t, 0.0, s.EffectiveVolume())
	assert.True(t, s.ShowUnmutePrompt())

	s.Playing = false
	assert.True(t, s.ShowCenterButton())

	assert.Equal(t, 0.0, Snapshot{CurrentTime: 5}.Progress())
}
