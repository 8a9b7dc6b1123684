package player

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeMedia is a scripted media element.  Play results are taken from playResults in order; once the script runs out
// every play succeeds.  With holdPlays set, play requests stay pending until resolved by the test.
type fakeMedia struct {
	mu sync.Mutex

	currentTime float64
	duration    float64
	paused      bool
	volume      float64
	muted       bool
	rate        float64
	src         string

	loads       int
	plays       int
	pauses      int
	seeks       []float64
	sources     []string
	playResults []error
	holdPlays   bool
	held        []chan error

	signals chan Signal
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		paused:  true,
		volume:  1,
		rate:    1,
		signals: make(chan Signal, 16),
	}
}

func (m *fakeMedia) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

func (m *fakeMedia) SetCurrentTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = seconds
	m.seeks = append(m.seeks, seconds)
}

func (m *fakeMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *fakeMedia) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *fakeMedia) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = v
}

func (m *fakeMedia) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

func (m *fakeMedia) SetPlaybackRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = rate
}

func (m *fakeMedia) SetSource(src string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.src = src
	m.sources = append(m.sources, src)
}

func (m *fakeMedia) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

func (m *fakeMedia) Load() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	m.paused = true
	m.currentTime = 0
}

func (m *fakeMedia) Play() <-chan error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays++
	m.paused = false

	result := make(chan error, 1)
	if m.holdPlays {
		m.held = append(m.held, result)
		return result
	}

	var err error
	if len(m.playResults) > 0 {
		err = m.playResults[0]
		m.playResults = m.playResults[1:]
	}
	if err != nil {
		m.paused = true
		result <- err
	}
	close(result)
	return result
}

func (m *fakeMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauses++
	m.paused = true
}

func (m *fakeMedia) Signals() <-chan Signal {
	return m.signals
}

// resolveHeld settles the oldest held play request
func (m *fakeMedia) resolveHeld(err error) {
	m.mu.Lock()
	result := m.held[0]
	m.held = m.held[1:]
	if err != nil {
		m.paused = true
	}
	m.mu.Unlock()

	if err != nil {
		result <- err
	}
	close(result)
}

func (m *fakeMedia) playCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}

// fakeClock only fires timers when advanced
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward and runs every timer that came due, in order
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Active counts timers that are still waiting to fire
func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// newTestController creates and mounts a controller over a fake media element and clock
func newTestController(t *testing.T, opts Options) (*Controller, *fakeMedia, *fakeClock) {
	t.Helper()

	media := newFakeMedia()
	clock := &fakeClock{}
	if opts.Source == "" {
		opts.Source = "https://cdn.example.com/movie.mp4"
	}
	opts.Clock = clock

	c, err := NewController(media, opts)
	require.NoError(t, err)
	require.NoError(t, c.Mount(context.Background()))
	t.Cleanup(c.Unmount)

	return c, media, clock
}

// handleNext waits for the next inbox event and hands it to the controller
func handleNext(t *testing.T, c *Controller) Event {
	t.Helper()
	select {
	case ev := <-c.Inbox():
		c.Handle(ev)
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for controller event")
		return nil
	}
}

// handlePending hands every already queued event to the controller, waiting briefly for in-flight play results
func handlePending(c *Controller) {
	for {
		select {
		case ev := <-c.Inbox():
			c.Handle(ev)
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}

// drain hands every queued event to the controller without waiting for more
func drain(c *Controller) {
	for {
		select {
		case ev := <-c.Inbox():
			c.Handle(ev)
		default:
			return
		}
	}
}

// signal delivers a media signal straight to the controller
func signal(c *Controller, t SignalType) {
	c.Handle(MediaEvent{Signal: Signal{Type: t}})
}

// ready loads metadata for a video of the given duration and reports it can play
func ready(c *Controller, m *fakeMedia, duration float64) {
	m.mu.Lock()
	m.duration = duration
	m.mu.Unlock()
	signal(c, SignalLoadedMetadata)
	signal(c, SignalCanPlay)
}

// advanceTo simulates the element reporting a new position
func advanceTo(c *Controller, m *fakeMedia, seconds float64) {
	m.mu.Lock()
	m.currentTime = seconds
	m.mu.Unlock()
	signal(c, SignalTimeUpdate)
}
