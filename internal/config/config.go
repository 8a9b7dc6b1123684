package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PlayerTypeMPV is the only supported video player
const PlayerTypeMPV = "mpv"

// Config represents the application configuration
type Config struct {
	Catalog CatalogConfig `yaml:"catalog,omitempty"`
	Player  PlayerConfig  `yaml:"player,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// CatalogConfig points at the GraphQL catalog that movies are resolved from
type CatalogConfig struct {
	Endpoint string `yaml:"endpoint,omitempty" validate:"omitempty,url"`
	Token    string `yaml:"token,omitempty"`
}

// PlayerConfig contains media player and playback settings
type PlayerConfig struct {
	Type                 string        `yaml:"type,omitempty" validate:"oneof=mpv"`
	Path                 string        `yaml:"path,omitempty"`
	Args                 string        `yaml:"args,omitempty"`
	AutoPlay             bool          `yaml:"autoplay,omitempty"`
	Muted                bool          `yaml:"muted,omitempty"`
	Loop                 bool          `yaml:"loop,omitempty"`
	DefaultQuality       string        `yaml:"default_quality,omitempty" validate:"oneof=auto 1080 720 480 240 1080p 720p 480p 240p"`
	HideDelay            time.Duration `yaml:"hide_delay,omitempty" validate:"gt=0"`
	QualitySwitchTimeout time.Duration `yaml:"quality_switch_timeout,omitempty" validate:"gt=0"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty" validate:"oneof=trace debug info warn error"`
	FilePath string `yaml:"file_path,omitempty"`
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties.  Dynamic properties are those that are determined at runtime, for example log file location which is different per OS.
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply environment variable overrides
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	// 1. Start with base defaults
	cfg := createBaseDefaultConfig()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	// 2. If no config file exists on disk, then write a default one
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// Still start up on the defaults if the file cannot be written
		_ = save(cfg, configPath)
	}

	// 3. Apply dynamic defaults if necessary
	applyDynamicDefaults(cfg)

	// 4. Load the config from disk and merge it into the base defaults
	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	// 5. Apply the environment variable overrides which take precedence
	if err = applyEnvVarOverrides(cfg); err != nil {
		return nil, err
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report yaml names so messages match what the user wrote in the file
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("invalid config: %w", err)
	}

	problems := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		// Namespace is Config.player.hide_delay, drop the root type name
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		problems = append(problems, fmt.Sprintf("%s failed '%s' (value: %v)", field, fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}

// applyDynamicDefaults sets runtime-determined default values for any properties that haven't been explicitly configured.
// Unlike static defaults, these values might change between runs based on the environment or system configuration.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func save(cfg *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	updateFn(cfg)

	return save(cfg, configPath)
}

// getConfigPath returns the path to the config file.  Uses the environment variable override if present, else tries
// to use OS config location defaults.
func getConfigPath() (string, error) {
	configPath := os.Getenv("REEL_CONFIG_PATH")
	if configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "reel", "config.yaml"), nil
}

// createBaseDefaultConfig creates a config with all default values.  Booleans are left false as a merged file can only
// ever switch them on.
func createBaseDefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{},
		Player: PlayerConfig{
			Type:                 PlayerTypeMPV,
			Path:                 "mpv",
			DefaultQuality:       "auto",
			HideDelay:            3 * time.Second,
			QualitySwitchTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultLogFilePath returns the path to the log file.  Tries to use expected OS location defaults.
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "reel.log")
	}

	switch runtime.GOOS {
	case "windows":
		// Windows:  %LOCALAPPDATA%\reel\logs
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, "reel", "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", "reel", "logs")
		}
	case "darwin":
		// macOS:  ~/Library/Logs/reel
		basePath = filepath.Join(homedir, "Library", "Logs", "reel")
	default:
		// Linux/BSD:  XDG_STATE_HOME
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, "reel", "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", "reel", "logs")
		}
	}

	if err = os.MkdirAll(basePath, 0700); err != nil {
		return filepath.Join(".", "reel.log")
	}
	return filepath.Join(basePath, "reel.log")
}
