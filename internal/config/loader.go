package config

import (
	"errors"
	"fmt"
	"honeylog/internal/types"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Built-in run constants, used when no config file is given
const (
	DefaultLogPath   = "cowrie.json"
	DefaultThreshold = 10
	DefaultWindow    = 5 * time.Minute
	DefaultTopN      = 10
)

// Default returns the configuration used when no file is passed
func Default() *types.Config {
	var cfg types.Config
	if err := validateConfig(&cfg); err != nil {
		// defaults are always valid
		panic(err)
	}
	return &cfg
}

// LoadConfig reads the configuration from the given path
func LoadConfig(path string) (*types.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg types.Config
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// validateConfig applies defaults and hard rules
func validateConfig(cfg *types.Config) error {
	if cfg.Input.LogPath == "" {
		cfg.Input.LogPath = DefaultLogPath
	}

	bf := &cfg.Detection.BruteForce
	if bf.Threshold == 0 {
		bf.Threshold = DefaultThreshold
	}
	if bf.Threshold < 1 {
		return fmt.Errorf("detection.brute_force.threshold must be at least 1, got %d", bf.Threshold)
	}
	if bf.Window == "" {
		bf.WindowDuration = DefaultWindow
		bf.Window = DefaultWindow.String()
	} else {
		d, err := time.ParseDuration(bf.Window)
		if err != nil {
			return fmt.Errorf("detection.brute_force.window: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("detection.brute_force.window must be positive, got %s", bf.Window)
		}
		bf.WindowDuration = d
	}
	bf.Strategy = strings.ToLower(strings.TrimSpace(bf.Strategy))
	switch bf.Strategy {
	case "":
		bf.Strategy = types.StrategyAnchored
	case types.StrategyAnchored, types.StrategyLinear:
	default:
		return fmt.Errorf("detection.brute_force.strategy: unknown strategy %q", bf.Strategy)
	}

	// 0 keeps the default; a negative value lists every password
	if cfg.Passwords.TopN == 0 {
		cfg.Passwords.TopN = DefaultTopN
	}

	policy := strings.ToLower(strings.TrimSpace(cfg.Parsing.MalformedLines))
	switch policy {
	case "":
		policy = types.PolicySkip
	case types.PolicySkip, types.PolicyReport:
	default:
		return fmt.Errorf("parsing.malformed_lines: unknown policy %q", cfg.Parsing.MalformedLines)
	}
	cfg.Parsing.MalformedLines = policy

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = "honeylog"
	}
	return nil
}
