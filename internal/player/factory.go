package player

import (
	"fmt"

	"github.com/PizzaHomicide/reel/internal/config"
	"github.com/PizzaHomicide/reel/internal/log"
)

// CreateMedia creates the media backend selected by the configuration
func CreateMedia(cfg *config.Config) (MediaBackend, error) {
	playerType := cfg.Player.Type
	log.Info("Creating media backend", "type", playerType)

	switch playerType {
	case config.PlayerTypeMPV:
		return NewMPVMedia(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported player type %q", playerType)
	}
}
