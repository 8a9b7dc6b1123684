package models

import "github.com/PizzaHomicide/reel/internal/player"

// MediaStartedMsg is sent once the media backend is running and accepting commands
type MediaStartedMsg struct{}

// MediaStartErrorMsg is sent when the media backend could not be started
type MediaStartErrorMsg struct {
	Error error
}

// controllerEventMsg carries one event from the playback controller's inbox into the bubbletea loop
type controllerEventMsg struct {
	event player.Event
}

// PlaybackClosedMsg is sent when the playback controller has been unmounted, e.g. because the player window closed
type PlaybackClosedMsg struct{}
