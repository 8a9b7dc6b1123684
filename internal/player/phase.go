package player

// Phase is the transport state of the playback controller
type Phase int

const (
	// PhaseIdle means no source is bound.  The controller starts and finishes here.
	PhaseIdle Phase = iota
	// PhaseLoading means a source is loading, either on mount or while switching quality
	PhaseLoading
	// PhasePlaying means playback has been requested and not since paused
	PhasePlaying
	// PhasePaused means the user (or a failed play request) paused playback
	PhasePaused
	// PhaseEnded means playback reached the end of the source
	PhaseEnded
	// PhaseSeeking means the position was moved and the element has not reported the new position yet
	PhaseSeeking
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseLoading:
		return "Loading"
	case PhasePlaying:
		return "Playing"
	case PhasePaused:
		return "Paused"
	case PhaseEnded:
		return "Ended"
	case PhaseSeeking:
		return "Seeking"
	default:
		return "Unknown"
	}
}

// transitions lists the legal target phases for each phase.  Every phase may return to idle on unmount.
var transitions = map[Phase][]Phase{
	PhaseIdle:    {PhaseLoading},
	PhaseLoading: {PhasePlaying, PhasePaused, PhaseIdle},
	PhasePlaying: {PhasePaused, PhaseEnded, PhaseSeeking, PhaseLoading, PhaseIdle},
	PhasePaused:  {PhasePlaying, PhaseSeeking, PhaseLoading, PhaseEnded, PhaseIdle},
	PhaseSeeking: {PhasePlaying, PhasePaused, PhaseLoading, PhaseEnded, PhaseIdle},
	PhaseEnded:   {PhasePlaying, PhaseSeeking, PhaseLoading, PhaseIdle},
}

// CanTransition reports whether moving from one phase to another is legal
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}
