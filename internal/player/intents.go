package player

import (
	"fmt"
	"math"

	"github.com/PizzaHomicide/reel/internal/log"
)

// TogglePlay plays when paused and pauses when playing.  The requested status is applied immediately; confirmation
// (or rejection) of the play request arrives later through the inbox.
func (c *Controller) TogglePlay() {
	if !c.mounted {
		return
	}
	c.markInteraction()
	c.intent++

	if c.IsPlaying() {
		c.pause()
	} else {
		c.play()
	}
	c.ShowControlsTemporarily()
}

func (c *Controller) play() {
	// Guard against an element left muted by an earlier autoplay fallback
	if !c.muted {
		c.media.SetMuted(false)
	}

	switch c.phase {
	case PhaseLoading:
		c.resume = true
		if c.restore != nil {
			// The pending quality switch resumes playback once the new source has data
			c.restore.resume = true
			return
		}
		c.autoplayAttempted = true
		c.requestPlay(AttemptManual)
	case PhaseSeeking:
		c.resume = true
		c.requestPlay(AttemptManual)
	case PhaseEnded:
		c.media.SetCurrentTime(0)
		c.currentTime = 0
		c.requestPlay(AttemptManual)
		c.enter(PhasePlaying)
	default:
		c.requestPlay(AttemptManual)
		c.enter(PhasePlaying)
	}
}

func (c *Controller) pause() {
	c.media.Pause()

	switch c.phase {
	case PhaseLoading:
		c.resume = false
		if c.restore != nil {
			c.restore.resume = false
		}
	case PhaseSeeking:
		c.resume = false
	default:
		c.enter(PhasePaused)
	}
}

// Seek moves playback to the given position.  The position is clamped to [0, duration] so an out of range value
// never reaches the media element.
func (c *Controller) Seek(seconds float64) {
	if !c.mounted {
		return
	}
	t := c.clampPosition(seconds)

	if c.restore != nil {
		// The element is mid-reload, so land the pending restore at the new position instead
		c.restore.at = t
		c.currentTime = t
		c.ShowControlsTemporarily()
		return
	}

	c.media.SetCurrentTime(t)
	c.currentTime = t
	switch c.phase {
	case PhasePlaying, PhasePaused, PhaseEnded:
		c.resume = c.phase == PhasePlaying
		c.enter(PhaseSeeking)
	}
	c.ShowControlsTemporarily()
}

// Skip moves playback by delta seconds relative to the element's current position
func (c *Controller) Skip(delta float64) {
	if !c.mounted {
		return
	}
	c.Seek(c.position() + delta)
}

// SetVolume sets the output volume.  A volume of 0 mutes, and any positive volume unmutes.
func (c *Controller) SetVolume(v float64) {
	if !c.mounted {
		return
	}
	if math.IsNaN(v) {
		v = 0
	}
	v = math.Max(0, math.Min(1, v))
	c.markInteraction()

	wasMuted := c.muted
	if v == 0 {
		c.restoreVolume = c.volume
	}
	c.volume = v
	c.muted = v == 0
	c.media.SetVolume(v)

	switch {
	case c.muted:
		c.media.SetMuted(true)
	case wasMuted:
		// A volume change always wins over a stale mute flag
		c.media.SetMuted(false)
	}
	log.Debug("Volume changed", "volume", v, "muted", c.muted)
	c.ShowControlsTemporarily()
}

// ToggleMute mutes without losing the volume level, or unmutes back to the level held before muting
func (c *Controller) ToggleMute() {
	if !c.mounted {
		return
	}
	c.markInteraction()

	if c.muted {
		v := c.restoreVolume
		if v <= 0 {
			v = DefaultVolume
		}
		c.volume = v
		c.muted = false
		c.media.SetVolume(v)
		c.media.SetMuted(false)
	} else {
		c.restoreVolume = c.volume
		c.muted = true
		c.media.SetMuted(true)
	}
	log.Debug("Mute toggled", "muted", c.muted, "volume", c.volume)
	c.ShowControlsTemporarily()
}

// SetSpeed changes the playback rate.  Only the rates in Speeds are accepted.
func (c *Controller) SetSpeed(rate float64) error {
	if !c.mounted {
		return ErrNotMounted
	}
	if !ValidSpeed(rate) {
		return fmt.Errorf("%w: %v", ErrUnsupportedSpeed, rate)
	}
	c.markInteraction()

	c.rate = rate
	c.media.SetPlaybackRate(rate)
	c.showSettings = false
	log.Info("Playback speed changed", "speed", rate)
	c.ShowControlsTemporarily()
	return nil
}

// SwitchQuality reloads the element with the source for the given tier.  The position and playing status from
// before the switch are restored once the new source has data.
func (c *Controller) SwitchQuality(q Quality) error {
	if !c.mounted {
		return ErrNotMounted
	}
	if !q.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownQuality, q)
	}

	if q == c.quality && c.restore == nil {
		c.showSettings = false
		return nil
	}

	at := c.position()
	wasPlaying := !c.media.Paused()
	from := c.quality
	if c.restore != nil {
		// Switching again before the previous switch landed.  Carry its intent over.
		at = c.restore.at
		wasPlaying = c.restore.resume
		from = c.restore.from
		c.restore.watchdog.Stop()
		c.restore = nil
	}

	log.Info("Switching quality", "from", from, "to", q, "position", at, "was_playing", wasPlaying)
	c.notice = ""
	c.beginReload(from, q, at, wasPlaying, false)
	c.showSettings = false
	c.ShowControlsTemporarily()
	return nil
}

// beginReload points the element at the source for a tier and arms the one-shot restore
func (c *Controller) beginReload(from, to Quality, at float64, resume, revert bool) {
	c.intent++
	c.restoreGen++
	gen := c.restoreGen

	c.media.SetSource(to.SourceFor(c.opts.Source))
	c.media.Load()

	c.quality = to
	c.resume = resume
	c.currentTime = at
	c.enter(PhaseLoading)

	c.restore = &pendingRestore{
		at:     at,
		resume: resume,
		from:   from,
		to:     to,
		revert: revert,
		gen:    gen,
		watchdog: c.clock.AfterFunc(c.opts.RestoreTimeout, func() {
			c.post(RestoreTimeout{Gen: gen})
		}),
	}
}

// completeRestore lands a pending quality switch on the freshly loaded source
func (c *Controller) completeRestore() {
	r := c.restore
	c.restore = nil
	r.watchdog.Stop()

	c.media.SetCurrentTime(r.at)
	c.currentTime = r.at
	c.resume = r.resume
	if r.resume {
		c.requestPlay(AttemptRestore)
	}
	c.settle()
	log.Info("Quality switch complete", "quality", r.to, "position", r.at, "resumed", r.resume)
}

// failRestore handles a quality switch whose source never produced data.  The first failure falls back to the tier
// that was playing before; a failed fallback gives up and leaves playback paused.
func (c *Controller) failRestore(err error) {
	r := c.restore
	c.restore = nil
	r.watchdog.Stop()

	log.Error("Quality switch failed", "quality", r.to, "revert", r.revert, "error", err)

	if !r.revert && r.from != r.to {
		c.notice = fmt.Sprintf("%s unavailable, reverted to %s", r.to.Label(), r.from.Label())
		c.beginReload(r.to, r.from, r.at, r.resume, true)
		return
	}

	c.notice = fmt.Sprintf("%s unavailable", r.to.Label())
	c.resume = false
	c.enter(PhasePaused)
	c.stopHideTimer()
	c.showControls = true
}

// ShowControlsTemporarily reveals the controls and, while playing, arms the auto-hide timer.  Any pending timer is
// cancelled first so at most one is ever live.
func (c *Controller) ShowControlsTemporarily() {
	if !c.mounted {
		return
	}
	c.showControls = true
	c.stopHideTimer()

	if c.IsPlaying() {
		c.hideGen++
		gen := c.hideGen
		c.hideTimer = c.clock.AfterFunc(c.opts.HideDelay, func() {
			c.post(HideTimerFired{Gen: gen})
		})
		log.Trace("Auto-hide timer armed", "gen", gen, "delay", c.opts.HideDelay)
	}
}

// HideControlsNow hides the controls immediately
func (c *Controller) HideControlsNow() {
	if !c.mounted {
		return
	}
	c.stopHideTimer()
	c.showControls = false
}

// ToggleSettings opens or closes the quality/speed settings panel
func (c *Controller) ToggleSettings() {
	if !c.mounted {
		return
	}
	c.showSettings = !c.showSettings
	c.ShowControlsTemporarily()
}

// CloseSettings closes the settings panel if it is open
func (c *Controller) CloseSettings() {
	c.showSettings = false
}

func (c *Controller) stopHideTimer() {
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
	}
}
