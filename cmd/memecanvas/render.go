package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/example/memecanvas/assets"
	"github.com/example/memecanvas/internal/scene"
)

type renderCmd struct {
	*root
	fs      *flag.FlagSet
	scene   string
	output  string
	backend string
	dataURL bool
	draft   bool
	timeout time.Duration
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	c := &renderCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.scene, "scene", "", "scene JSON file, - for stdin")
	fs.StringVar(&c.output, "output", r.config.Output.DownloadName, "PNG file to write, - for stdout")
	fs.StringVar(&c.backend, "backend", "", "render backend: raster or gg (default from config)")
	fs.BoolVar(&c.dataURL, "data-url", false, "print a data:image/png;base64 URL instead of writing a file")
	fs.BoolVar(&c.draft, "draft", false, "also store the result in the drafts store")
	fs.DurationVar(&c.timeout, "timeout", time.Minute, "give up on loading the background after this long")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.scene == "" && fs.NArg() > 0 {
		c.scene = fs.Arg(0)
	}
	if c.scene == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *renderCmd) readScene() ([]byte, error) {
	if c.scene == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(c.scene)
}

func (c *renderCmd) Run() error {
	data, err := c.readScene()
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}
	sc, err := scene.Parse(data)
	if err != nil {
		return err
	}
	ed, err := c.newEditor(editorOptions{saveDrafts: c.draft, backend: c.backend})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := sc.Apply(ctx, ed, assets.TemplateURL); err != nil {
		return fmt.Errorf("render scene: %w", err)
	}

	if c.dataURL || c.draft {
		url, err := ed.Save()
		if err != nil {
			return err
		}
		if c.dataURL {
			fmt.Fprintln(c.stdout, url)
			return nil
		}
	}

	if c.output == "-" {
		return ed.Download(c.stdout)
	}
	f, err := os.Create(c.output)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.output, err)
	}
	if err := ed.Download(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	doc := ed.Document()
	fmt.Fprintf(c.stderr, "wrote %s (%d × %dpx)\n", c.output, doc.Width, doc.Height)
	return nil
}
