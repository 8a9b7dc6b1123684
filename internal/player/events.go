package player

// Event is anything delivered to the controller through its inbox.  The host drains the inbox and passes each event
// to Controller.Handle on the goroutine that owns the controller.
type Event interface {
	isEvent()
}

// PlayAttempt identifies why a play request was issued
type PlayAttempt string

const (
	AttemptAutoplay PlayAttempt = "autoplay"
	AttemptManual   PlayAttempt = "manual"
	AttemptRestore  PlayAttempt = "restore"
	AttemptLoop     PlayAttempt = "loop"
	// AttemptRetry is the single muted retry issued after any other attempt is rejected
	AttemptRetry PlayAttempt = "retry"
)

// MediaEvent carries a signal from the media element
type MediaEvent struct {
	Signal Signal
}

// MediaDetached is posted when the media element's signal channel closes, e.g. the player window was closed
type MediaDetached struct{}

// PlayResult is the resolution of a deferred play request
type PlayResult struct {
	Attempt PlayAttempt
	// Intent is the transport intent sequence the request belongs to.  Results for an intent that has since been
	// superseded (e.g. the user paused) do not trigger a retry.
	Intent uint64
	Err    error
}

// HideTimerFired is posted when the auto-hide timer elapses
type HideTimerFired struct {
	Gen uint64
}

// RestoreTimeout is posted when a quality switch did not finish loading in time
type RestoreTimeout struct {
	Gen uint64
}

func (MediaEvent) isEvent()     {}
func (MediaDetached) isEvent()  {}
func (PlayResult) isEvent()     {}
func (HideTimerFired) isEvent() {}
func (RestoreTimeout) isEvent() {}
