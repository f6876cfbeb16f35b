package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/example/memecanvas/internal/theme"
)

// ParseYAML reads configuration in YAML form. Keys mirror the RC sections;
// themes are maps of field name to colour.
func ParseYAML(r io.Reader) (*Config, error) {
	cfg := New()
	var doc struct {
		Config `yaml:",inline"`
		Themes map[string]map[string]string `yaml:"themes"`
	}
	doc.Config = *cfg
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	*cfg = doc.Config
	if cfg.Fonts == nil {
		cfg.Fonts = make(map[string]string)
	}
	cfg.Themes = make(map[string]*theme.Theme)
	for name, fields := range doc.Themes {
		t := theme.Default()
		t.Name = name
		for k, v := range fields {
			if err := theme.Set(t, k, v); err != nil {
				return nil, fmt.Errorf("themes.%s: %w", name, err)
			}
		}
		cfg.Themes[name] = t
	}
	return cfg, nil
}
