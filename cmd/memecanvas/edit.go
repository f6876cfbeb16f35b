package main

import (
	"flag"
	"fmt"
	"image"

	"github.com/example/memecanvas/assets"
	"github.com/example/memecanvas/internal/appstate"
	"github.com/example/memecanvas/internal/clipboard"
	"github.com/example/memecanvas/internal/editor"
)

type editCmd struct {
	*root
	fs          *flag.FlagSet
	name        string
	file        string
	url         string
	template    string
	paste       bool
	downloadDir string
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(name string, args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	e := &editCmd{root: r, fs: fs, name: name}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.file, "file", "", "open this image as the background")
	fs.StringVar(&e.url, "url", "", "fetch the background from this URL")
	fs.StringVar(&e.template, "template", "", "start from a built-in template id")
	fs.BoolVar(&e.paste, "paste", false, "use the clipboard image as the background")
	fs.StringVar(&e.downloadDir, "download-dir", "", "directory for downloads (default save_dir or ~/Pictures)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		if e.file != "" {
			return nil, &UsageError{of: e}
		}
		e.file = fs.Arg(0)
	}
	n := 0
	for _, set := range []bool{e.file != "", e.url != "", e.template != "", e.paste} {
		if set {
			n++
		}
	}
	if n > 1 {
		return nil, fmt.Errorf("choose only one of -file, -url, -template and -paste")
	}
	if e.template != "" {
		if _, ok := assets.Lookup(e.template); !ok {
			return nil, fmt.Errorf("unknown template %q", e.template)
		}
	}
	return e, nil
}

// source returns the background to load on open, if any.
func (e *editCmd) source() (editor.Source, string, error) {
	switch {
	case e.file != "":
		return editor.FromFile(e.file), e.file, nil
	case e.url != "":
		return editor.FromURL(e.url), e.url, nil
	case e.template != "":
		t, _ := assets.Lookup(e.template)
		return editor.FromURL(t.URL), t.Title, nil
	case e.paste:
		img, err := clipboard.ReadImage()
		if err != nil {
			return nil, "", fmt.Errorf("read clipboard: %w", err)
		}
		return editor.FromImage("clipboard", img), "clipboard image", nil
	}
	return nil, "", nil
}

func (e *editCmd) Run() error {
	ed, err := e.newEditor(editorOptions{saveDrafts: true, clipboard: true})
	if err != nil {
		return err
	}
	dir := e.downloadDir
	if dir == "" {
		dir = e.saveDir()
	}
	if err := ensureDir(dir); err != nil {
		return err
	}
	mode := appstate.ModeEdit
	if e.name == "preview" {
		mode = appstate.ModePreview
	}
	opts := []appstate.Option{
		appstate.WithEditor(ed),
		appstate.WithTheme(e.activeTheme),
		appstate.WithMode(mode),
		appstate.WithDownloadDir(dir),
		appstate.WithMaxStrokeWidth(e.config.Text.MaxStrokeWidth),
		appstate.WithPaste(clipboard.ReadImage),
		appstate.WithDownloadListener(e.notifier.Download),
		appstate.WithCopyListener(func(img image.Image) { e.notifier.Copy("meme", img) }),
	}
	src, label, err := e.source()
	if err != nil {
		return err
	}
	if src != nil {
		opts = append(opts, appstate.WithInitialLoad(src, label))
	}
	appstate.New(opts...).Run()
	return nil
}
