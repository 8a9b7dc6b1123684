package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type envVar struct {
	name  string
	desc  string
	apply func(*Config, string) error
}

var supportedEnvVars = []envVar{
	{
		// Documentation only.  The path is read before the config is loaded.
		name:  "REEL_CONFIG_PATH",
		desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) error { return nil },
	},
	{
		name:  "REEL_CONFIG_CATALOG_ENDPOINT",
		desc:  "Sets the GraphQL catalog endpoint movies are resolved from.  Default: None",
		apply: func(c *Config, s string) error { c.Catalog.Endpoint = s; return nil },
	},
	{
		name:  "REEL_CONFIG_CATALOG_TOKEN",
		desc:  "Sets the bearer token sent to the catalog.  Default: None",
		apply: func(c *Config, s string) error { c.Catalog.Token = s; return nil },
	},
	{
		name:  "REEL_CONFIG_PLAYER_TYPE",
		desc:  "Sets the video player type.  Only `mpv` is supported.  Default: mpv",
		apply: func(c *Config, s string) error { c.Player.Type = s; return nil },
	},
	{
		name:  "REEL_CONFIG_PLAYER_PATH",
		desc:  "Sets the path to a video player binary.  Default: mpv",
		apply: func(c *Config, s string) error { c.Player.Path = s; return nil },
	},
	{
		name:  "REEL_CONFIG_PLAYER_ARGS",
		desc:  "Sets extra arguments passed to the video player.  Default: None",
		apply: func(c *Config, s string) error { c.Player.Args = s; return nil },
	},
	{
		name:  "REEL_CONFIG_PLAYER_AUTOPLAY",
		desc:  "Start playback as soon as the video can play.  Default: false",
		apply: boolVar(func(c *Config, b bool) { c.Player.AutoPlay = b }),
	},
	{
		name:  "REEL_CONFIG_PLAYER_MUTED",
		desc:  "Start the video muted.  Default: false",
		apply: boolVar(func(c *Config, b bool) { c.Player.Muted = b }),
	},
	{
		name:  "REEL_CONFIG_PLAYER_LOOP",
		desc:  "Restart the video when it ends.  Default: false",
		apply: boolVar(func(c *Config, b bool) { c.Player.Loop = b }),
	},
	{
		name:  "REEL_CONFIG_PLAYER_DEFAULT_QUALITY",
		desc:  "Sets the initial quality tier.  One of: auto, 1080, 720, 480, 240.  Default: auto",
		apply: func(c *Config, s string) error { c.Player.DefaultQuality = s; return nil },
	},
	{
		name:  "REEL_CONFIG_PLAYER_HIDE_DELAY",
		desc:  "Sets how long controls stay visible without interaction, e.g. 3s.  Default: 3s",
		apply: durationVar(func(c *Config, d time.Duration) { c.Player.HideDelay = d }),
	},
	{
		name:  "REEL_CONFIG_PLAYER_QUALITY_SWITCH_TIMEOUT",
		desc:  "Sets how long a quality switch may take before reverting, e.g. 15s.  Default: 15s",
		apply: durationVar(func(c *Config, d time.Duration) { c.Player.QualitySwitchTimeout = d }),
	},
	{
		name:  "REEL_CONFIG_LOGGING_LEVEL",
		desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) error { c.Logging.Level = s; return nil },
	},
	{
		name:  "REEL_CONFIG_LOGGING_FILE_PATH",
		desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) error { c.Logging.FilePath = s; return nil },
	},
}

func boolVar(set func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, s string) error {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		set(c, b)
		return nil
	}
}

func durationVar(set func(*Config, time.Duration)) func(*Config, string) error {
	return func(c *Config, s string) error {
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		set(c, d)
		return nil
	}
}

func applyEnvVarOverrides(c *Config) error {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.name); value != "" {
			if err := envVar.apply(c, value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar.name, err)
			}
		}
	}
	return nil
}
