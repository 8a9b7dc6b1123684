package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/PizzaHomicide/reel/internal/config"
	"github.com/PizzaHomicide/reel/internal/domain"
	"github.com/PizzaHomicide/reel/internal/log"
	"github.com/PizzaHomicide/reel/internal/player"
	"github.com/PizzaHomicide/reel/internal/repository/catalog"
	"github.com/PizzaHomicide/reel/internal/service"
	"github.com/PizzaHomicide/reel/internal/ui/tui"
	"github.com/PizzaHomicide/reel/internal/version"
	"github.com/spf13/pflag"
)

const resolveTimeout = 15 * time.Second

func main() {
	autoPlay := pflag.Bool("autoplay", false, "Start playing as soon as the video can play")
	muted := pflag.Bool("muted", false, "Start muted")
	loop := pflag.Bool("loop", false, "Restart from the beginning when the video ends")
	quality := pflag.StringP("quality", "q", "", "Quality to start on: auto, 1080, 720, 480 or 240")
	showVersion := pflag.BoolP("version", "v", false, "Print version information and exit")
	pflag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: reel [flags] <url | file | catalog id | title>\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *showVersion {
		fmt.Println(version.GetVersionInfo())
		return
	}
	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// It is unrecoverable if we cannot produce an application config
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags win over the config file, but only when they were actually given
	if pflag.CommandLine.Changed("autoplay") {
		cfg.Player.AutoPlay = *autoPlay
	}
	if pflag.CommandLine.Changed("muted") {
		cfg.Player.Muted = *muted
	}
	if pflag.CommandLine.Changed("loop") {
		cfg.Player.Loop = *loop
	}
	if pflag.CommandLine.Changed("quality") {
		cfg.Player.DefaultQuality = *quality
	}

	// Initialise logger
	logger, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	// Set the default global logger
	log.SetDefaultLogger(logger)

	log.Info("Starting up Reel", "version", version.GetVersion(), "build_time", version.GetBuildTime())

	if err := run(cfg, pflag.Arg(0)); err != nil {
		log.Error("Reel exited with an error", "error", err)
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		logger.Close()
		os.Exit(1)
	}

	log.Info("Reel shutting down.  Goodbye!")
}

func run(cfg *config.Config, ref string) error {
	opts, err := playerOptions(cfg)
	if err != nil {
		return err
	}

	movie, err := resolveMovie(cfg, ref)
	if err != nil {
		return err
	}
	log.Info("Playing movie", "id", movie.ID, "title", movie.Title, "source", movie.VideoURL)

	return tui.Run(cfg, movie, opts)
}

// playerOptions builds the controller options from the player config.  The source is filled in once the movie is known.
func playerOptions(cfg *config.Config) (player.Options, error) {
	q, err := player.ParseQuality(cfg.Player.DefaultQuality)
	if err != nil {
		return player.Options{}, err
	}
	return player.Options{
		AutoPlay:       cfg.Player.AutoPlay,
		Muted:          cfg.Player.Muted,
		Loop:           cfg.Player.Loop,
		Quality:        q,
		HideDelay:      cfg.Player.HideDelay,
		RestoreTimeout: cfg.Player.QualitySwitchTimeout,
	}, nil
}

// resolveMovie looks up the reference.  The catalog is only consulted if one is configured.
func resolveMovie(cfg *config.Config, ref string) (*domain.Movie, error) {
	var repo domain.MovieRepository
	if cfg.Catalog.Endpoint != "" {
		client, err := catalog.NewClient(cfg.Catalog.Endpoint, cfg.Catalog.Token)
		if err != nil {
			return nil, err
		}
		repo = catalog.NewMovieRepository(client)
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	return service.NewMovieService(repo).Resolve(ctx, ref)
}
