// Package config holds the environment configuration: where the target
// application runs, how the browser session is shaped, and the episode
// limits. Configuration is YAML on disk with flag overrides applied by the
// CLI layer.
package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/marvelxcodes/asana-rl-gym/internal/observe"
)

// Config is the full environment configuration.
type Config struct {
	// Target application.
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Browser session, forwarded to the automation bridge.
	BridgeURL        string `yaml:"bridge_url"`
	Browser          string `yaml:"browser"`
	Headless         bool   `yaml:"headless"`
	WindowWidth      int    `yaml:"window_width"`
	WindowHeight     int    `yaml:"window_height"`
	ScreenshotWidth  int    `yaml:"screenshot_width"`
	ScreenshotHeight int    `yaml:"screenshot_height"`

	// Episode shape.
	ObservationMode      string  `yaml:"observation_mode"`
	MaxEpisodeSteps      int     `yaml:"max_episode_steps"`
	ActionTimeoutSeconds float64 `yaml:"action_timeout_seconds"`

	// Training artifacts and reward shaping.
	LogDir      string `yaml:"log_dir"`
	Scenario    string `yaml:"scenario"`
	WeightsFile string `yaml:"weights_file"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		BaseURL:              "http://localhost:3000",
		BridgeURL:            "http://localhost:7310",
		Browser:              "chromium",
		Headless:             true,
		WindowWidth:          1920,
		WindowHeight:         1080,
		ScreenshotWidth:      1024,
		ScreenshotHeight:     768,
		ObservationMode:      string(observe.ModeHybrid),
		MaxEpisodeSteps:      100,
		ActionTimeoutSeconds: 10,
		LogDir:               "training_logs",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged. The result is validated; invalid configuration is a
// startup error, never a silently patched value.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, used by `config init` to seed a file the
// operator then edits.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url %q is not an http(s) URL", c.BaseURL)
	}
	if c.WindowWidth < 100 || c.WindowHeight < 100 {
		return fmt.Errorf("window dimensions %dx%d below minimum 100x100", c.WindowWidth, c.WindowHeight)
	}
	if c.ScreenshotWidth < 100 || c.ScreenshotHeight < 100 {
		return fmt.Errorf("screenshot dimensions %dx%d below minimum 100x100", c.ScreenshotWidth, c.ScreenshotHeight)
	}
	if _, err := observe.ParseMode(c.ObservationMode); err != nil {
		return err
	}
	if c.MaxEpisodeSteps < 1 {
		return fmt.Errorf("max_episode_steps %d must be at least 1", c.MaxEpisodeSteps)
	}
	if c.ActionTimeoutSeconds <= 0 {
		return fmt.Errorf("action_timeout_seconds %v must be positive", c.ActionTimeoutSeconds)
	}
	if c.LogDir == "" {
		return fmt.Errorf("log_dir required")
	}
	return nil
}

// Mode returns the parsed observation mode. Call after Validate.
func (c *Config) Mode() observe.Mode {
	m, _ := observe.ParseMode(c.ObservationMode)
	return m
}
