package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time if needed
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load attempts to load the configuration. Files ending in .yaml or .yml are
// read as YAML, anything else as RC.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a configuration file, choosing the format by extension.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(f)
	}
	return Parse(f)
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".memecanvasrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	home, _ := os.UserHomeDir()
	for _, name := range []string{"config.rc", "config.yaml", "memecanvas.rc"} {
		p := filepath.Join(home, ".config", "memecanvas", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// DefaultSavePath is where `config save` writes when no file exists yet.
func DefaultSavePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "memecanvas", "config.rc")
}
