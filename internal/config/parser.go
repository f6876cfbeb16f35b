package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/memecanvas/internal/theme"
)

// Parse reads RC configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if strings.HasPrefix(currentSection, "theme.") {
				themeName := strings.TrimPrefix(currentSection, "theme.")
				currentTheme = theme.Default()
				currentTheme.Name = themeName
				cfg.Themes[themeName] = currentTheme
			}
			continue
		}

		// Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}

		if currentTheme != nil {
			if err := theme.Set(currentTheme, key, value); err != nil {
				return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
			}
			continue
		}
		if err := Set(cfg, currentSection, key, value); err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	return cfg, scanner.Err()
}

// Set assigns a single key in section. Unknown keys are ignored.
func Set(cfg *Config, section, key, value string) error {
	k := strings.ToLower(key)
	switch strings.ToLower(section) {
	case "":
		switch k {
		case "theme":
			cfg.Theme = value
		case "save_dir":
			cfg.SaveDir = value
		case "backend":
			cfg.Backend = value
		}
	case "canvas":
		return setCanvasField(&cfg.Canvas, k, value)
	case "text":
		return setTextField(&cfg.Text, k, value)
	case "ingest":
		return setIngestField(&cfg.Ingest, k, value)
	case "output":
		if k == "download_name" {
			cfg.Output.DownloadName = value
		}
	case "notify":
		return setNotifyField(&cfg.Notify, k, value)
	case "log":
		switch k {
		case "level":
			cfg.Log.Level = value
		case "file":
			cfg.Log.File = value
		case "format":
			cfg.Log.Format = value
		}
	case "drafts":
		switch k {
		case "driver":
			cfg.Drafts.Driver = value
		case "dsn":
			cfg.Drafts.DSN = value
		}
	case "fonts":
		if cfg.Fonts == nil {
			cfg.Fonts = make(map[string]string)
		}
		cfg.Fonts[key] = value
	}
	return nil
}

func setCanvasField(c *Canvas, key, value string) error {
	var dst *int
	switch key {
	case "width":
		dst = &c.Width
	case "height":
		dst = &c.Height
	case "max_dimension":
		dst = &c.MaxDimension
	case "max_display_width":
		dst = &c.MaxDisplayWidth
	default:
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid positive integer for key %s: %q", key, value)
	}
	*dst = n
	return nil
}

func setTextField(t *Text, key, value string) error {
	var dst *float64
	switch key {
	case "font_family":
		t.FontFamily = value
		return nil
	case "fill":
		t.Fill = value
		return nil
	case "stroke":
		t.Stroke = value
		return nil
	case "stroke_width":
		dst = &t.StrokeWidth
	case "max_stroke_width":
		dst = &t.MaxStrokeWidth
	case "min_font_size":
		dst = &t.MinFontSize
	case "max_font_size":
		dst = &t.MaxFontSize
	default:
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("invalid number for key %s: %q", key, value)
	}
	*dst = f
	return nil
}

func setIngestField(in *Ingest, key, value string) error {
	switch key {
	case "max_file_bytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid byte count for key %s: %q", key, value)
		}
		in.MaxFileBytes = n
	case "fetch_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for key %s: %w", key, err)
		}
		in.FetchTimeout = d
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "save":
		n.Save = b
	case "download":
		n.Download = b
	case "copy":
		n.Copy = b
	}
	return nil
}
