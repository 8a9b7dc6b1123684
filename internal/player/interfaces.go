package player

import (
	"context"
)

// SignalType represents the kind of asynchronous status signal raised by a media element
type SignalType string

const (
	// SignalTimeUpdate indicates the playback position has moved
	SignalTimeUpdate SignalType = "time-update"
	// SignalLoadedMetadata indicates the duration of the current source is known
	SignalLoadedMetadata SignalType = "loaded-metadata"
	// SignalEnded indicates playback reached the end of the source
	SignalEnded SignalType = "ended"
	// SignalCanPlay indicates enough data is buffered for playback to begin
	SignalCanPlay SignalType = "can-play"
	// SignalLoadedData indicates the first frame of a (re)loaded source is available
	SignalLoadedData SignalType = "loaded-data"
	// SignalError indicates the current source failed to load or decode
	SignalError SignalType = "error"
)

// Signal is a status notification from a media element.  Values such as position or duration are not carried on
// the signal and must be read back from the element, the same way a browser media element works.
type Signal struct {
	Type  SignalType
	Error error // Set if Type is SignalError
}

// Media is the capability set the playback controller needs from a media element.
//
// Setters never fail from the caller's point of view.  Implementations that talk to an external process log any
// failure themselves.  All methods must be safe to call from the controller's goroutine while signals are being
// produced on another.
type Media interface {
	// CurrentTime returns the playback position in seconds
	CurrentTime() float64
	// SetCurrentTime moves the playback position
	SetCurrentTime(seconds float64)
	// Duration returns the length of the current source in seconds, or 0 while unknown
	Duration() float64
	// Paused reports whether the element is currently paused
	Paused() bool

	SetVolume(volume float64)
	SetMuted(muted bool)
	SetPlaybackRate(rate float64)

	// SetSource points the element at a new source.  It takes effect on the next Load.
	SetSource(src string)
	Source() string
	// Load (re)loads the current source.  Like a browser element, loading leaves the element paused.
	Load()

	// Play requests playback.  The returned channel receives at most one value, a non-nil error if the request was
	// rejected, and is then closed.  A closed channel without a value means playback started.
	Play() <-chan error
	Pause()

	// Signals returns the channel status signals are delivered on.  It is closed when the element goes away.
	Signals() <-chan Signal
}

// MediaBackend is a Media implementation that is backed by an external player which must be started and stopped
type MediaBackend interface {
	Media

	// Start launches the backend and blocks until it is ready to accept commands
	Start(ctx context.Context) error

	// Close stops the backend and releases any resources held by it
	Close() error
}
