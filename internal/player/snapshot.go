package player

// Snapshot is a point-in-time copy of everything the controller owns.  Rendering works from snapshots only.
type Snapshot struct {
	Phase        Phase
	Playing      bool
	CurrentTime  float64
	Duration     float64
	PlaybackRate float64

	Volume float64
	Muted  bool

	ShowControls     bool
	HideTimerPending bool
	ShowSettings     bool

	Quality          Quality
	SwitchingQuality bool
	Interacted       bool

	// Notice is a short user-facing message, e.g. after a quality switch had to be reverted
	Notice string
	Poster string
	Loop   bool
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Phase:            c.phase,
		Playing:          c.IsPlaying(),
		CurrentTime:      c.currentTime,
		Duration:         c.duration,
		PlaybackRate:     c.rate,
		Volume:           c.volume,
		Muted:            c.muted,
		ShowControls:     c.showControls,
		HideTimerPending: c.hideTimer != nil,
		ShowSettings:     c.showSettings,
		Quality:          c.quality,
		SwitchingQuality: c.restore != nil,
		Interacted:       c.interacted,
		Notice:           c.notice,
		Poster:           c.opts.Poster,
		Loop:             c.opts.Loop,
	}
}

// EffectiveVolume is the level actually heard.  Muting silences output regardless of the volume setting.
func (s Snapshot) EffectiveVolume() float64 {
	if s.Muted {
		return 0
	}
	return s.Volume
}

// ShowCenterButton reports whether the large play/pause affordance should be drawn
func (s Snapshot) ShowCenterButton() bool {
	return !s.Playing || s.ShowControls
}

// ShowUnmutePrompt reports whether to offer the "unmute" call to action.  It only appears while muted playback was
// never touched by the user, which in practice is the autoplay fallback window.
func (s Snapshot) ShowUnmutePrompt() bool {
	return s.Muted && !s.Interacted
}

// Elapsed is the formatted playback position
func (s Snapshot) Elapsed() string {
	return FormatTime(s.CurrentTime)
}

// Total is the formatted duration
func (s Snapshot) Total() string {
	return FormatTime(s.Duration)
}

// Progress is the playback position as a fraction of the duration
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return s.CurrentTime / s.Duration
}
