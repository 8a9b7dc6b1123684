package models

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/PizzaHomicide/reel/internal/domain"
	"github.com/PizzaHomicide/reel/internal/player"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMedia is a media backend whose play requests always succeed
type stubMedia struct {
	mu          sync.Mutex
	currentTime float64
	duration    float64
	paused      bool
	volume      float64
	muted       bool
	rate        float64
	src         string
	plays       int
	signals     chan player.Signal
	closeOnce   sync.Once
}

func newStubMedia() *stubMedia {
	return &stubMedia{paused: true, rate: 1, signals: make(chan player.Signal, 16)}
}

func (m *stubMedia) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

func (m *stubMedia) SetCurrentTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = seconds
}

func (m *stubMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *stubMedia) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *stubMedia) SetVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
}

func (m *stubMedia) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

func (m *stubMedia) SetPlaybackRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = rate
}

func (m *stubMedia) SetSource(src string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.src = src
}

func (m *stubMedia) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

func (m *stubMedia) Load() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
	m.currentTime = 0
}

func (m *stubMedia) Play() <-chan error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays++
	m.paused = false
	result := make(chan error)
	close(result)
	return result
}

func (m *stubMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

func (m *stubMedia) Signals() <-chan player.Signal {
	return m.signals
}

func (m *stubMedia) Start(context.Context) error {
	return nil
}

func (m *stubMedia) Close() error {
	m.closeOnce.Do(func() { close(m.signals) })
	return nil
}

var testMovie = &domain.Movie{
	ID:          "tt0133093",
	Title:       "The Matrix",
	Description: "A hacker learns the truth about his reality.",
	VideoURL:    "https://cdn.example.com/matrix.mp4",
}

// newTestPlayer creates a mounted player model over a stub media element that already knows its duration
func newTestPlayer(t *testing.T) (*PlayerModel, *stubMedia) {
	t.Helper()

	media := newStubMedia()
	controller, err := player.NewController(media, player.Options{Source: testMovie.VideoURL})
	require.NoError(t, err)

	m := NewPlayerModel(testMovie, controller)
	m.Resize(100, 30)
	require.NotNil(t, m.Init())
	t.Cleanup(m.Stop)

	media.mu.Lock()
	media.duration = 5400
	media.mu.Unlock()
	controller.Handle(player.MediaEvent{Signal: player.Signal{Type: player.SignalLoadedMetadata}})
	controller.Handle(player.MediaEvent{Signal: player.Signal{Type: player.SignalCanPlay}})

	return m, media
}

func press(m *PlayerModel, key tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(key)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func TestPlayerModelTransportKeys(t *testing.T) {
	m, media := newTestPlayer(t)

	press(m, spaceKey)
	s := m.controller.Snapshot()
	assert.True(t, s.Playing)
	assert.Equal(t, 1, media.plays)

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 10.0, media.CurrentTime())
	press(m, tea.KeyMsg{Type: tea.KeyLeft})
	press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0.0, media.CurrentTime(), "skip back is clamped at the start")

	press(m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 5400.0, media.CurrentTime())

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.InDelta(t, 0.6, m.controller.Snapshot().Volume, 1e-9)

	press(m, runes("m"))
	assert.True(t, m.controller.Snapshot().Muted)
	press(m, runes("m"))
	assert.False(t, m.controller.Snapshot().Muted)

	press(m, runes(">"))
	assert.Equal(t, 1.25, m.controller.Snapshot().PlaybackRate)
	press(m, runes("<"))
	press(m, runes("<"))
	assert.Equal(t, 0.75, m.controller.Snapshot().PlaybackRate)

	press(m, runes("3"))
	assert.Equal(t, player.Quality720, m.controller.Snapshot().Quality)
	assert.Equal(t, "https://cdn.example.com/matrix.mp4?quality=720", media.Source())
}

func TestPlayerModelSettingsPanel(t *testing.T) {
	m, media := newTestPlayer(t)

	press(m, runes("s"))
	require.True(t, m.controller.Snapshot().ShowSettings)
	assert.Contains(t, m.View(), "Quality")
	assert.Contains(t, m.View(), "1.25x")

	// The cursor starts on the active tier, Auto
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	s := m.controller.Snapshot()
	assert.False(t, s.ShowSettings)
	assert.Equal(t, player.Quality720, s.Quality)
	assert.Equal(t, "https://cdn.example.com/matrix.mp4?quality=720", media.Source())

	press(m, runes("s"))
	press(m, tea.KeyMsg{Type: tea.KeyEnd})
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 2.0, m.controller.Snapshot().PlaybackRate)

	press(m, runes("s"))
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.controller.Snapshot().ShowSettings)
}

func TestPlayerModelMouse(t *testing.T) {
	m, _ := newTestPlayer(t)

	press(m, spaceKey)
	m.controller.HideControlsNow()
	require.False(t, m.controller.Snapshot().ShowControls)

	m.Update(tea.MouseMsg{X: 50, Y: 10, Action: tea.MouseActionMotion})
	assert.True(t, m.controller.Snapshot().ShowControls)

	// Halfway along the progress bar
	width := m.progressWidth()
	m.Update(tea.MouseMsg{X: progressMargin + (width-1)/2, Y: m.height - controlsHeight, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.InDelta(t, 2700, m.controller.Snapshot().CurrentTime, 5400.0/float64(width))
	assert.True(t, m.controller.Snapshot().Playing, "seeking keeps playing")

	m.Update(tea.MouseMsg{X: 50, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.False(t, m.controller.Snapshot().Playing, "clicking the video toggles play")

	m.Update(tea.MouseMsg{X: 50, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.InDelta(t, 0.6, m.controller.Snapshot().Volume, 1e-9)

	m.Update(tea.BlurMsg{})
	assert.False(t, m.controller.Snapshot().ShowControls)
}

func TestPlayerModelVolumeStepsDownToMuted(t *testing.T) {
	m, media := newTestPlayer(t)
	start := m.controller.Snapshot().Volume

	steps := int(math.Round(start / VolumeStep))
	for i := 0; i < steps; i++ {
		press(m, tea.KeyMsg{Type: tea.KeyDown})
	}

	s := m.controller.Snapshot()
	assert.Zero(t, s.Volume)
	assert.True(t, s.Muted)
	media.mu.Lock()
	assert.True(t, media.muted)
	media.mu.Unlock()
	assert.Contains(t, m.View(), "0%")

	// Back up from silence unmutes at exactly one step
	m.Update(tea.MouseMsg{X: 50, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	s = m.controller.Snapshot()
	assert.False(t, s.Muted)
	assert.Equal(t, VolumeStep, s.Volume)
}

func TestPlayerModelView(t *testing.T) {
	m, _ := newTestPlayer(t)

	view := m.View()
	assert.Contains(t, view, "The Matrix")
	assert.Contains(t, view, "0:00 / 90:00")
	assert.Contains(t, view, "▶")
	assert.Contains(t, view, "Auto")
	assert.Contains(t, view, testMovie.Description)
	assert.NotContains(t, view, "press m to unmute")

	m.controller.HideControlsNow()
	assert.NotContains(t, m.View(), "0:00 / 90:00")
}

func TestPlayerModelUnmutePrompt(t *testing.T) {
	media := newStubMedia()
	controller, err := player.NewController(media, player.Options{Source: testMovie.VideoURL, AutoPlay: true, Muted: true})
	require.NoError(t, err)

	m := NewPlayerModel(testMovie, controller)
	m.Resize(100, 30)
	m.Init()
	t.Cleanup(m.Stop)

	assert.Contains(t, m.View(), "press m to unmute")

	press(m, runes("m"))
	assert.NotContains(t, m.View(), "press m to unmute")
}

func TestPlayerModelControllerEvents(t *testing.T) {
	m, media := newTestPlayer(t)

	media.signals <- player.Signal{Type: player.SignalEnded}

	msg := waitForMsg(t, m.listenForControllerEvents())
	require.IsType(t, controllerEventMsg{}, msg)
	_, cmd := m.Update(msg)
	require.NotNil(t, cmd, "listening must be re-armed")
	assert.Equal(t, player.PhaseEnded, m.controller.Snapshot().Phase)
	assert.Contains(t, m.View(), "Play again")

	// The player window closing unmounts the controller and ends the session
	require.NoError(t, media.Close())
	msg = waitForMsg(t, cmd)
	_, cmd = m.Update(msg)
	assert.False(t, m.controller.Mounted())
	assert.Equal(t, PlaybackClosedMsg{}, cmd())
}

func TestPlayerModelQuit(t *testing.T) {
	m, _ := newTestPlayer(t)

	cmd := press(m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.controller.Mounted())
}

// waitForMsg runs a command with a deadline
func waitForMsg(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	msgs := make(chan tea.Msg, 1)
	go func() { msgs <- cmd() }()
	select {
	case msg := <-msgs:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for command")
		return nil
	}
}
