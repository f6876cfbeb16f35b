package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/example/memecanvas/internal/clipboard"
	"github.com/example/memecanvas/internal/editor"
	"github.com/example/memecanvas/internal/ingest"
	"github.com/example/memecanvas/internal/logging"
	"github.com/example/memecanvas/internal/render"
)

type editorOptions struct {
	saveDrafts bool
	clipboard  bool
	backend    string
}

// newEditor builds an editor from the effective configuration.
func (r *root) newEditor(opts editorOptions) (*editor.Editor, error) {
	cfg := r.config
	style, err := cfg.Style()
	if err != nil {
		return nil, err
	}

	fonts := render.NewFontBook()
	families := make([]string, 0, len(cfg.Fonts))
	for family := range cfg.Fonts {
		families = append(families, family)
	}
	sort.Strings(families)
	for _, family := range families {
		if err := fonts.LoadFile(family, cfg.Fonts[family]); err != nil {
			return nil, err
		}
	}

	backend := cfg.Backend
	if opts.backend != "" {
		backend = opts.backend
	}
	surface, err := render.NewSurface(backend, fonts)
	if err != nil {
		return nil, err
	}

	ph := render.DefaultPlaceholder()
	if r.activeTheme != nil {
		ph.Fill = r.activeTheme.Placeholder
		ph.Text = r.activeTheme.PlaceholderText
	}
	limits := ingest.Limits{
		MaxFileBytes: cfg.Ingest.MaxFileBytes,
		MaxWidth:     cfg.Canvas.MaxDimension,
		MaxHeight:    cfg.Canvas.MaxDimension,
	}
	ing := ingest.New(
		ingest.WithLimits(limits),
		ingest.WithHTTPClient(&http.Client{Timeout: cfg.Ingest.FetchTimeout}),
		ingest.WithLogger(logging.For("ingest")),
	)

	edOpts := []editor.Option{
		editor.WithConfig(editor.Config{
			CanvasWidth:     cfg.Canvas.Width,
			CanvasHeight:    cfg.Canvas.Height,
			MaxDisplayWidth: cfg.Canvas.MaxDisplayWidth,
			Limits:          limits,
			Style:           style,
			Placeholder:     ph,
			DownloadName:    cfg.Output.DownloadName,
		}),
		editor.WithSurface(surface),
		editor.WithIngestor(ing),
		editor.WithLogger(logging.For("editor")),
	}
	if opts.saveDrafts {
		edOpts = append(edOpts, editor.WithSaveFunc(r.saveDraft))
	}
	if opts.clipboard {
		edOpts = append(edOpts, editor.WithClipboard(clipboard.WriteImage))
	}
	return editor.New(edOpts...), nil
}

// saveDir is where downloads go: save_dir, else ~/Pictures, else the
// working directory.
func (r *root) saveDir() string {
	if dir := r.config.SaveDir; dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		pics := filepath.Join(home, "Pictures")
		if st, err := os.Stat(pics); err == nil && st.IsDir() {
			return pics
		}
	}
	return "."
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
