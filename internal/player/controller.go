package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/PizzaHomicide/reel/internal/log"
)

const (
	// DefaultVolume is the volume used when starting unmuted and when unmuting without a previous level to restore
	DefaultVolume = 0.7
	// DefaultHideDelay is how long controls stay visible after an interaction while playing
	DefaultHideDelay = 3 * time.Second
	// DefaultRestoreTimeout is how long a quality switch may take to load before it is treated as failed
	DefaultRestoreTimeout = 15 * time.Second
	// SkipInterval is the jump used by the skip forward/back controls, in seconds
	SkipInterval = 10.0

	inboxSize = 64
)

var (
	ErrNoSource     = errors.New("no media source")
	ErrNoMedia      = errors.New("no media element")
	ErrNotMounted   = errors.New("controller is not mounted")
	ErrAlreadyBound = errors.New("controller has already been mounted")
)

// Options configures a Controller.  Zero values fall back to the defaults above.
type Options struct {
	Source   string
	Poster   string
	AutoPlay bool
	Muted    bool
	Loop     bool

	// Quality is the tier to start on.  Empty means auto.
	Quality        Quality
	HideDelay      time.Duration
	RestoreTimeout time.Duration
	Clock          Clock
}

// pendingRestore tracks a quality switch that is waiting for the reloaded source to produce data
type pendingRestore struct {
	at       float64
	resume   bool
	from     Quality
	to       Quality
	revert   bool // This switch is itself the fallback after a failed switch
	gen      uint64
	watchdog Timer
}

// Controller owns the transport state of a single media element.
//
// A Controller is not safe for concurrent use.  Intents and Handle must all be called from the same goroutine (the
// host's event loop).  Asynchronous inputs are posted to Inbox from other goroutines and only take effect once the
// host hands them back to Handle.
type Controller struct {
	media Media
	opts  Options
	clock Clock

	inbox chan Event
	done  chan struct{}
	wg    sync.WaitGroup

	mounted   bool
	unmounted bool

	phase       Phase
	resume      bool // Requested playing status while loading or seeking
	currentTime float64
	duration    float64
	rate        float64

	volume        float64
	muted         bool
	restoreVolume float64 // Level held immediately before the most recent mute-on

	showControls bool
	showSettings bool
	hideTimer    Timer
	hideGen      uint64

	quality    Quality
	interacted bool
	notice     string

	autoplayAttempted bool
	intent            uint64
	restore           *pendingRestore
	restoreGen        uint64
}

// NewController creates a controller for the given media element.  The element is not touched until Mount.
func NewController(media Media, opts Options) (*Controller, error) {
	if media == nil {
		return nil, ErrNoMedia
	}
	if opts.Source == "" {
		return nil, ErrNoSource
	}
	if opts.Quality == "" {
		opts.Quality = QualityAuto
	}
	if !opts.Quality.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuality, opts.Quality)
	}
	if opts.HideDelay <= 0 {
		opts.HideDelay = DefaultHideDelay
	}
	if opts.RestoreTimeout <= 0 {
		opts.RestoreTimeout = DefaultRestoreTimeout
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}

	volume := DefaultVolume
	if opts.Muted {
		volume = 0
	}

	return &Controller{
		media:        media,
		opts:         opts,
		clock:        opts.Clock,
		inbox:        make(chan Event, inboxSize),
		done:         make(chan struct{}),
		phase:        PhaseIdle,
		resume:       opts.AutoPlay,
		rate:         1,
		volume:       volume,
		muted:        opts.Muted,
		showControls: !opts.AutoPlay,
		quality:      opts.Quality,
	}, nil
}

// Inbox is the serial event queue.  The host must drain it and pass every event to Handle.
func (c *Controller) Inbox() <-chan Event {
	return c.inbox
}

// Done is closed once the controller has been unmounted
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Mounted reports whether the controller is bound to its media element
func (c *Controller) Mounted() bool {
	return c.mounted
}

// Mount binds the controller to its media element, starts forwarding the element's signals and begins loading the
// source.  The context bounds the forwarding goroutine in addition to Unmount.
func (c *Controller) Mount(ctx context.Context) error {
	if c.mounted || c.unmounted {
		return ErrAlreadyBound
	}

	c.media.SetMuted(c.muted)
	c.media.SetVolume(c.volume)
	c.media.SetPlaybackRate(c.rate)
	c.media.SetSource(c.opts.Quality.SourceFor(c.opts.Source))

	c.mounted = true
	c.enter(PhaseLoading)

	c.wg.Add(1)
	go c.forwardSignals(ctx)

	c.media.Load()
	log.Info("Playback controller mounted",
		"source", c.opts.Source,
		"quality", c.quality,
		"autoplay", c.opts.AutoPlay,
		"muted", c.muted,
		"loop", c.opts.Loop)
	return nil
}

// Unmount cancels every pending timer, stops forwarding signals and waits for the controller's goroutines to exit.
// Events handled after this are ignored.
func (c *Controller) Unmount() {
	if !c.mounted {
		return
	}
	c.stopHideTimer()
	if c.restore != nil {
		c.restore.watchdog.Stop()
		c.restore = nil
	}
	c.enter(PhaseIdle)
	c.mounted = false
	c.unmounted = true
	close(c.done)
	c.wg.Wait()
	log.Info("Playback controller unmounted")
}

// forwardSignals copies media signals into the inbox until the controller is unmounted
func (c *Controller) forwardSignals(ctx context.Context) {
	defer c.wg.Done()

	signals := c.media.Signals()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case s, ok := <-signals:
			if !ok {
				c.post(MediaDetached{})
				return
			}
			c.post(MediaEvent{Signal: s})
		}
	}
}

// post delivers an event to the inbox, giving up if the controller is unmounted first
func (c *Controller) post(ev Event) {
	select {
	case c.inbox <- ev:
	case <-c.done:
	}
}

// Handle applies one inbound event.  It is the only place asynchronous results mutate controller state.
func (c *Controller) Handle(ev Event) {
	if !c.mounted {
		log.Trace("Dropping event for unmounted controller", "event", fmt.Sprintf("%T", ev))
		return
	}

	switch ev := ev.(type) {
	case MediaEvent:
		c.handleSignal(ev.Signal)
	case MediaDetached:
		log.Info("Media element went away, unmounting controller")
		c.Unmount()
	case PlayResult:
		c.handlePlayResult(ev)
	case HideTimerFired:
		if c.hideTimer != nil && ev.Gen == c.hideGen {
			log.Trace("Auto-hide timer fired", "gen", ev.Gen)
			c.hideTimer = nil
			c.showControls = false
		}
	case RestoreTimeout:
		if c.restore != nil && ev.Gen == c.restore.gen {
			c.failRestore(errors.New("timed out waiting for source to load"))
		}
	default:
		log.Warn("Playback controller received an event it can't handle", "event", fmt.Sprintf("%T", ev))
	}
}

func (c *Controller) handleSignal(s Signal) {
	switch s.Type {
	case SignalTimeUpdate:
		// The reloading element reports position 0 until the restore lands, which is not a real position
		if c.restore != nil {
			return
		}
		c.currentTime = c.clampPosition(c.media.CurrentTime())
		if c.phase == PhaseSeeking {
			c.settle()
		}

	case SignalLoadedMetadata:
		d := c.media.Duration()
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			d = 0
		}
		c.duration = d
		log.Debug("Media duration known", "duration", d)

	case SignalEnded:
		if c.restore != nil {
			return
		}
		if c.opts.Loop {
			log.Debug("Playback ended, looping")
			c.media.SetCurrentTime(0)
			c.currentTime = 0
			c.requestPlay(AttemptLoop)
			return
		}
		log.Info("Playback ended")
		c.resume = false
		c.enter(PhaseEnded)
		c.stopHideTimer()
		c.showControls = true

	case SignalCanPlay:
		if c.phase != PhaseLoading || c.restore != nil {
			return
		}
		if c.opts.AutoPlay && !c.autoplayAttempted {
			c.autoplayAttempted = true
			if !c.muted {
				c.media.SetMuted(false)
			}
			c.requestPlay(AttemptAutoplay)
		}
		c.settle()

	case SignalLoadedData:
		if c.restore != nil {
			c.completeRestore()
		}

	case SignalError:
		if c.restore != nil {
			c.failRestore(s.Error)
			return
		}
		log.Warn("Media element reported an error", "error", s.Error)
	}
}

func (c *Controller) handlePlayResult(r PlayResult) {
	if r.Err == nil {
		log.Debug("Play request resolved", "attempt", r.Attempt)
		return
	}

	if r.Intent != c.intent {
		log.Debug("Ignoring rejected play request for a superseded intent", "attempt", r.Attempt, "error", r.Err)
		return
	}

	if r.Attempt == AttemptRetry {
		// Soft failure.  There is no error state for play failures, playback simply stays paused.
		log.Warn("Muted play retry was rejected, leaving playback paused", "error", r.Err)
		c.media.Pause()
		c.resume = false
		if c.restore != nil {
			c.restore.resume = false
		}
		if c.phase == PhasePlaying {
			c.enter(PhasePaused)
		}
		c.stopHideTimer()
		c.showControls = true
		return
	}

	log.Info("Play request rejected, retrying muted", "attempt", r.Attempt, "error", r.Err)
	if !c.muted {
		c.restoreVolume = c.volume
	}
	c.muted = true
	c.media.SetMuted(true)
	c.requestPlay(AttemptRetry)
}

// requestPlay issues a play request and arranges for its resolution to arrive through the inbox
func (c *Controller) requestPlay(attempt PlayAttempt) {
	result := c.media.Play()
	intent := c.intent

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		var err error
		select {
		case err = <-result:
		case <-c.done:
			return
		}
		c.post(PlayResult{Attempt: attempt, Intent: intent, Err: err})
	}()
}

// settle leaves a transient phase according to the requested playing status
func (c *Controller) settle() {
	if c.resume {
		c.enter(PhasePlaying)
	} else {
		c.enter(PhasePaused)
	}
}

func (c *Controller) enter(to Phase) {
	if c.phase == to {
		return
	}
	if !CanTransition(c.phase, to) {
		log.Warn("Ignoring illegal playback transition", "from", c.phase, "to", to)
		return
	}
	log.Debug("Playback phase changed", "from", c.phase, "to", to)
	c.phase = to
}

// IsPlaying reports the requested (not confirmed) playing status
func (c *Controller) IsPlaying() bool {
	switch c.phase {
	case PhasePlaying:
		return true
	case PhaseLoading, PhaseSeeking:
		return c.resume
	default:
		return false
	}
}

func (c *Controller) markInteraction() {
	if !c.interacted {
		log.Debug("First user interaction")
		c.interacted = true
	}
}

// clampPosition keeps a position within [0, duration].  An unknown duration clamps everything to 0.
func (c *Controller) clampPosition(t float64) float64 {
	if math.IsNaN(t) {
		return 0
	}
	return math.Max(0, math.Min(t, c.duration))
}

// position is the element's position, or the position a pending quality switch will restore to
func (c *Controller) position() float64 {
	if c.restore != nil {
		return c.restore.at
	}
	return c.media.CurrentTime()
}
