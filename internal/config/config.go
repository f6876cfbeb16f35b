package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/memecanvas/internal/layers"
	"github.com/example/memecanvas/internal/theme"
)

// Canvas holds document and preview sizing.
type Canvas struct {
	Width           int `yaml:"width"`
	Height          int `yaml:"height"`
	MaxDimension    int `yaml:"max_dimension"`
	MaxDisplayWidth int `yaml:"max_display_width"`
}

// Text holds the defaults for new annotations.
type Text struct {
	FontFamily     string  `yaml:"font_family"`
	Fill           string  `yaml:"fill"`
	Stroke         string  `yaml:"stroke"`
	StrokeWidth    float64 `yaml:"stroke_width"`
	MaxStrokeWidth float64 `yaml:"max_stroke_width"`
	MinFontSize    float64 `yaml:"min_font_size"`
	MaxFontSize    float64 `yaml:"max_font_size"`
}

// Ingest holds background loading limits.
type Ingest struct {
	MaxFileBytes int64         `yaml:"max_file_bytes"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// Output holds export settings.
type Output struct {
	DownloadName string `yaml:"download_name"`
}

// Notify holds notification settings.
type Notify struct {
	Save     bool `yaml:"save"`
	Download bool `yaml:"download"`
	Copy     bool `yaml:"copy"`
}

// Log holds logging settings.
type Log struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// Drafts selects the saved meme store.
type Drafts struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Config holds the application configuration.
type Config struct {
	Theme   string `yaml:"theme"`
	SaveDir string `yaml:"save_dir"`
	Backend string `yaml:"backend"`

	Canvas Canvas `yaml:"canvas"`
	Text   Text   `yaml:"text"`
	Ingest Ingest `yaml:"ingest"`
	Output Output `yaml:"output"`
	Notify Notify `yaml:"notify"`
	Log    Log    `yaml:"log"`
	Drafts Drafts `yaml:"drafts"`

	// Fonts maps a family name to a TTF or OTF file.
	Fonts  map[string]string       `yaml:"fonts"`
	Themes map[string]*theme.Theme `yaml:"-"`
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:   "", // Empty falls back to env or the built-in theme
		Backend: "raster",
		Canvas: Canvas{
			Width:           400,
			Height:          400,
			MaxDimension:    400,
			MaxDisplayWidth: 600,
		},
		Text: Text{
			FontFamily:     "Impact",
			Fill:           "#ffffff",
			Stroke:         "#000000",
			StrokeWidth:    2,
			MaxStrokeWidth: 8,
			MinFontSize:    24,
			MaxFontSize:    48,
		},
		Ingest: Ingest{
			MaxFileBytes: 5 << 20,
			FetchTimeout: 15 * time.Second,
		},
		Output: Output{DownloadName: "web3-meme.png"},
		Log:    Log{Level: "info", Format: "text"},
		Drafts: Drafts{Driver: "memory"},
		Fonts:  make(map[string]string),
		Themes: make(map[string]*theme.Theme),
	}
}

// Style converts the text section into annotation defaults.
func (c *Config) Style() (layers.Style, error) {
	s := layers.DefaultStyle()
	if c.Text.FontFamily != "" {
		s.FontFamily = c.Text.FontFamily
	}
	var err error
	if s.Fill, err = layers.ParseColor(c.Text.Fill); err != nil {
		return s, fmt.Errorf("text.fill: %w", err)
	}
	if s.Stroke, err = layers.ParseColor(c.Text.Stroke); err != nil {
		return s, fmt.Errorf("text.stroke: %w", err)
	}
	s.StrokeWidth = c.Text.StrokeWidth
	if c.Text.MaxStrokeWidth > 0 {
		s.MaxStrokeWidth = c.Text.MaxStrokeWidth
	}
	if c.Text.MinFontSize > 0 {
		s.MinFontSize = c.Text.MinFontSize
	}
	if c.Text.MaxFontSize >= s.MinFontSize {
		s.MaxFontSize = c.Text.MaxFontSize
	}
	return s, nil
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "backend = %s\n", c.Backend)
	sb.WriteString("\n")

	sb.WriteString("[canvas]\n")
	fmt.Fprintf(&sb, "width = %d\n", c.Canvas.Width)
	fmt.Fprintf(&sb, "height = %d\n", c.Canvas.Height)
	fmt.Fprintf(&sb, "max_dimension = %d\n", c.Canvas.MaxDimension)
	fmt.Fprintf(&sb, "max_display_width = %d\n", c.Canvas.MaxDisplayWidth)
	sb.WriteString("\n")

	sb.WriteString("[text]\n")
	fmt.Fprintf(&sb, "font_family = %s\n", c.Text.FontFamily)
	fmt.Fprintf(&sb, "fill = %s\n", c.Text.Fill)
	fmt.Fprintf(&sb, "stroke = %s\n", c.Text.Stroke)
	fmt.Fprintf(&sb, "stroke_width = %g\n", c.Text.StrokeWidth)
	fmt.Fprintf(&sb, "max_stroke_width = %g\n", c.Text.MaxStrokeWidth)
	fmt.Fprintf(&sb, "min_font_size = %g\n", c.Text.MinFontSize)
	fmt.Fprintf(&sb, "max_font_size = %g\n", c.Text.MaxFontSize)
	sb.WriteString("\n")

	sb.WriteString("[ingest]\n")
	fmt.Fprintf(&sb, "max_file_bytes = %d\n", c.Ingest.MaxFileBytes)
	fmt.Fprintf(&sb, "fetch_timeout = %s\n", c.Ingest.FetchTimeout)
	sb.WriteString("\n")

	sb.WriteString("[output]\n")
	fmt.Fprintf(&sb, "download_name = %s\n", c.Output.DownloadName)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "download = %v\n", c.Notify.Download)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	sb.WriteString("[log]\n")
	fmt.Fprintf(&sb, "level = %s\n", c.Log.Level)
	if c.Log.File != "" {
		fmt.Fprintf(&sb, "file = %s\n", c.Log.File)
	}
	fmt.Fprintf(&sb, "format = %s\n", c.Log.Format)
	sb.WriteString("\n")

	sb.WriteString("[drafts]\n")
	fmt.Fprintf(&sb, "driver = %s\n", c.Drafts.Driver)
	if c.Drafts.DSN != "" {
		fmt.Fprintf(&sb, "dsn = %s\n", c.Drafts.DSN)
	}
	sb.WriteString("\n")

	if len(c.Fonts) > 0 {
		sb.WriteString("[fonts]\n")
		for _, fam := range sortedKeys(c.Fonts) {
			fmt.Fprintf(&sb, "%s = %s\n", fam, c.Fonts[fam])
		}
		sb.WriteString("\n")
	}

	for _, name := range sortedKeys(c.Themes) {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range theme.Fields(t) {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, layers.FormatColor(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
