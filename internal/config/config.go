// Package config loads the client configuration from ~/.sbp/config.toml
// with environment overrides and built-in defaults. A missing file is not
// an error; the defaults point at a local backend.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// HealthGate values: whether a failed health probe blocks the attendance
// form or only shows a warning. The source deployments disagreed on this,
// so it is a knob rather than a guess.
const (
	HealthGateBlock    = "block"
	HealthGateAdvisory = "advisory"
)

// defaultAPIURL matches a backend running beside the client.
const defaultAPIURL = "http://localhost:8080"

// Config is the complete client configuration.
type Config struct {
	// APIURL is the backend origin. Env override: SBP_API_URL.
	APIURL string `toml:"api_url"`
	// HealthGate is "block" or "advisory". Env override: SBP_HEALTH_GATE.
	HealthGate string `toml:"health_gate"`
	// Location holds the fixed device coordinates reported with
	// attendance records. Absent coordinates mean location is
	// unsupported on this install.
	Location Location `toml:"location"`
}

// Location is a fixed coordinate pair. Pointers distinguish "not
// configured" from 0,0.
type Location struct {
	Lat *float64 `toml:"lat"`
	Lng *float64 `toml:"lng"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:     defaultAPIURL,
		HealthGate: HealthGateBlock,
	}
}

// Dir returns the per-user state directory (~/.sbp), creating it if
// needed. Config, session record, device ID and log file all live here.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config.Dir: %w", err)
	}
	dir := filepath.Join(home, ".sbp")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("config.Dir: %w", err)
	}
	return dir, nil
}

// Load reads the config file under dir, applies env overrides and
// validates. A missing file yields the defaults.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config.Load: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SBP_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("SBP_HEALTH_GATE"); v != "" {
		cfg.HealthGate = v
	}
	// SBP_LOCATION is "lat,lng", mainly for testing installs without a
	// config file.
	if v := os.Getenv("SBP_LOCATION"); v != "" {
		parts := strings.SplitN(v, ",", 2)
		if len(parts) == 2 {
			lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if latErr == nil && lngErr == nil {
				cfg.Location = Location{Lat: &lat, Lng: &lng}
			}
		}
	}
}

func (c Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url %q is not a valid URL", c.APIURL)
	}
	switch c.HealthGate {
	case HealthGateBlock, HealthGateAdvisory:
	default:
		return fmt.Errorf("health_gate %q must be %q or %q", c.HealthGate, HealthGateBlock, HealthGateAdvisory)
	}
	if (c.Location.Lat == nil) != (c.Location.Lng == nil) {
		return fmt.Errorf("location needs both lat and lng")
	}
	return nil
}
