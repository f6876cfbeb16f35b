package config

import (
	"fmt"
	"strconv"
)

// Environment variables that override file settings.
const (
	EnvTheme           = "MEMECANVAS_THEME"
	EnvBackend         = "MEMECANVAS_BACKEND"
	EnvMaxDimension    = "MEMECANVAS_MAX_DIMENSION"
	EnvMaxDisplayWidth = "MEMECANVAS_MAX_DISPLAY_WIDTH"
	EnvMaxFileBytes    = "MEMECANVAS_MAX_FILE_BYTES"
	EnvDraftsDSN       = "MEMECANVAS_DRAFTS_DSN"
	EnvLogLevel        = "MEMECANVAS_LOG_LEVEL"
	EnvLogFile         = "MEMECANVAS_LOG_FILE"
)

// ApplyEnv overrides cfg from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvTheme); v != "" {
		c.Theme = v
	}
	if v := getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := getenv(EnvMaxDimension); v != "" {
		if err := setCanvasField(&c.Canvas, "max_dimension", v); err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDimension, err)
		}
	}
	if v := getenv(EnvMaxDisplayWidth); v != "" {
		if err := setCanvasField(&c.Canvas, "max_display_width", v); err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDisplayWidth, err)
		}
	}
	if v := getenv(EnvMaxFileBytes); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s: invalid byte count %q", EnvMaxFileBytes, v)
		}
		c.Ingest.MaxFileBytes = n
	}
	if v := getenv(EnvDraftsDSN); v != "" {
		c.Drafts.Driver = "sqlite"
		c.Drafts.DSN = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvLogFile); v != "" {
		c.Log.File = v
	}
	return nil
}
