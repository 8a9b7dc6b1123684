package tui

import (
	"fmt"

	"github.com/PizzaHomicide/reel/internal/config"
	"github.com/PizzaHomicide/reel/internal/domain"
	"github.com/PizzaHomicide/reel/internal/log"
	"github.com/PizzaHomicide/reel/internal/player"
	"github.com/PizzaHomicide/reel/internal/ui/tui/models"
	tea "github.com/charmbracelet/bubbletea"
)

// Run plays a movie with the configured media backend, controlled from the terminal.  It returns once the user quits
// or the player window is closed.
func Run(cfg *config.Config, movie *domain.Movie, opts player.Options) error {
	media, err := player.CreateMedia(cfg)
	if err != nil {
		return fmt.Errorf("unable to create media backend: %w", err)
	}
	defer func() {
		if err := media.Close(); err != nil {
			log.Warn("Error closing media backend", "error", err)
		}
	}()

	opts.Source = movie.VideoURL
	opts.Poster = movie.ThumbnailURL
	controller, err := player.NewController(media, opts)
	if err != nil {
		return fmt.Errorf("unable to create playback controller: %w", err)
	}
	// No-op if the controller never mounted or was already unmounted
	defer controller.Unmount()

	p := tea.NewProgram(models.NewAppModel(cfg, movie, media, controller),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	_, err = p.Run()
	return err
}
