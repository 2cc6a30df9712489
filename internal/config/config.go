// Package config provides configuration management for the MediLink client.
// Configurations are loaded from TOML files with XDG-compliant paths, with
// environment overrides for the API base URL.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Session    SessionConfig    `toml:"session"`
	Display    DisplayConfig    `toml:"display"`
	Logging    LoggingConfig    `toml:"logging"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
}

// APIConfig locates the backend REST API.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (a *APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// SessionConfig controls where the login session is persisted.
type SessionConfig struct {
	Path string `toml:"path"`
}

// QRDir returns the directory QR images are saved under, next to the
// session database.
func (s SessionConfig) QRDir() string {
	return filepath.Join(filepath.Dir(s.Path), "qr")
}

// DisplayConfig controls TUI appearance.
type DisplayConfig struct {
	ColorScheme ColorScheme `toml:"color_scheme"`
	DateFormat  string      `toml:"date_format"`
}

// ColorScheme defines the terminal color palette.
type ColorScheme string

const (
	ColorSchemeGreenPhosphor ColorScheme = "green_phosphor"
	ColorSchemeAmber         ColorScheme = "amber"
	ColorSchemeWhite         ColorScheme = "white"
)

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level LogLevel `toml:"level"`
	File  string   `toml:"file"`
}

// LogLevel defines logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ThresholdsConfig holds the client-side stock classification defaults.
// The per-shelter server-side thresholds live in the admin settings and are
// not edited here.
type ThresholdsConfig struct {
	Warning        int `toml:"warning"`
	ExpireWarnDays int `toml:"expire_warn_days"`
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("api: %w", err))
	}

	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("session: %w", err))
	}

	if err := c.Display.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Thresholds.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("thresholds: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the API configuration is valid.
func (a *APIConfig) Validate() error {
	var errs []error

	if a.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	} else if _, err := url.Parse(a.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("invalid base_url: %w", err))
	}

	if a.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("timeout_seconds must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the session configuration is valid.
func (s *SessionConfig) Validate() error {
	if s.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

// Validate checks that the display configuration is valid.
func (d *DisplayConfig) Validate() error {
	validSchemes := map[ColorScheme]bool{
		ColorSchemeGreenPhosphor: true,
		ColorSchemeAmber:         true,
		ColorSchemeWhite:         true,
	}

	if !validSchemes[d.ColorScheme] && d.ColorScheme != "" {
		return fmt.Errorf("invalid color_scheme: %s", d.ColorScheme)
	}

	return nil
}

// Validate checks that the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}

	if !validLevels[l.Level] && l.Level != "" {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	return nil
}

// Validate checks that the thresholds configuration is valid.
func (t *ThresholdsConfig) Validate() error {
	var errs []error

	if t.Warning < 0 {
		errs = append(errs, errors.New("warning must be non-negative"))
	}

	if t.ExpireWarnDays < 0 {
		errs = append(errs, errors.New("expire_warn_days must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000/api",
			TimeoutSeconds: 15,
		},
		Session: SessionConfig{
			Path: "session.db",
		},
		Display: DisplayConfig{
			ColorScheme: ColorSchemeGreenPhosphor,
			DateFormat:  "2006-01-02",
		},
		Logging: LoggingConfig{
			Level: LogLevelInfo,
			File:  "logs/medilink.log",
		},
		Thresholds: ThresholdsConfig{
			Warning:        3,
			ExpireWarnDays: 30,
		},
	}
}
