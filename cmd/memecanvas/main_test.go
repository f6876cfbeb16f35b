package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/memecanvas/internal/config"
	"github.com/example/memecanvas/internal/scene"
)

func noEnv(string) string { return "" }

func testRoot(cfg *config.Config) (*root, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	if cfg == nil {
		cfg = config.New()
	}
	return newRootWith(cfg, noEnv, &stdout, &stderr), &stdout, &stderr
}

func writeBackground(t *testing.T, dir string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "bg.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeScene(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "scene.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootUsage(t *testing.T) {
	r, _, _ := testRoot(nil)
	err := r.Run(nil)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if msg := uerr.Error(); !strings.Contains(msg, "Commands:") || !strings.Contains(msg, "-theme") {
		t.Fatalf("help text missing sections:\n%s", msg)
	}

	r, _, _ = testRoot(nil)
	if err := r.Run([]string{"bogus"}); !errors.As(err, &uerr) {
		t.Fatalf("unknown command: %v", err)
	}
}

func TestRenderWritesPNG(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, 800, 400)
	sc := writeScene(t, dir, fmt.Sprintf(`{"background": {"file": %q}, "annotations": [{"content": "GM", "y": 40}]}`, bg))
	out := filepath.Join(dir, "out.png")

	r, _, stderr := testRoot(nil)
	if err := r.Run([]string{"render", "-scene", sc, "-output", out}); err != nil {
		t.Fatalf("render: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 400 || cfg.Height != 200 {
		t.Fatalf("output %dx%d, want 400x200", cfg.Width, cfg.Height)
	}
	if !strings.Contains(stderr.String(), "400 × 200px") {
		t.Fatalf("summary %q", stderr.String())
	}
}

func TestRenderDataURLWithGGBackend(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, 120, 90)
	sc := writeScene(t, dir, fmt.Sprintf(`{"background": {"file": %q}, "annotations": [{"content": "WAGMI", "fill": "gold"}]}`, bg))

	r, stdout, _ := testRoot(nil)
	if err := r.Run([]string{"-backend", "gg", "render", "-data-url", sc}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "data:image/png;base64,") {
		t.Fatalf("stdout %.40q", stdout.String())
	}
	if r.config.Backend != "gg" {
		t.Fatalf("backend flag not applied: %q", r.config.Backend)
	}
}

func TestRenderRejectsInvalidScene(t *testing.T) {
	dir := t.TempDir()
	sc := writeScene(t, dir, `{"annotations": [{"x": 1}]}`)
	r, _, _ := testRoot(nil)
	err := r.Run([]string{"render", "-scene", sc})
	var verr *scene.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Problems) < 2 {
		t.Fatalf("problems %v", verr.Problems)
	}
}

func TestRenderRequiresScene(t *testing.T) {
	r, _, _ := testRoot(nil)
	var uerr *UsageError
	if err := r.Run([]string{"render"}); !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestDraftsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, 64, 48)
	sc := writeScene(t, dir, fmt.Sprintf(`{"background": {"file": %q}}`, bg))
	db := filepath.Join(dir, "drafts.db")

	r, _, _ := testRoot(nil)
	if err := r.Run([]string{"-drafts", db, "render", "-draft", "-output", filepath.Join(dir, "out.png"), sc}); err != nil {
		t.Fatalf("render: %v", err)
	}

	r, stdout, _ := testRoot(nil)
	if err := r.Run([]string{"-drafts", db, "drafts", "list"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "64x48") {
		t.Fatalf("list output:\n%s", stdout.String())
	}
	id := strings.Fields(lines[1])[0]

	exported := filepath.Join(dir, "export.png")
	r, _, _ = testRoot(nil)
	if err := r.Run([]string{"-drafts", db, "drafts", "export", "-output", exported, id}); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil || img.Bounds().Dx() != 64 {
		t.Fatalf("exported image err=%v", err)
	}

	r, _, _ = testRoot(nil)
	if err := r.Run([]string{"-drafts", db, "drafts", "delete", id}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	r, _, _ = testRoot(nil)
	if err := r.Run([]string{"-drafts", db, "drafts", "export", id}); err == nil {
		t.Fatal("export of deleted draft succeeded")
	}
}

func TestTemplatesCommand(t *testing.T) {
	r, stdout, _ := testRoot(nil)
	if err := r.Run([]string{"templates", "square"}); err != nil {
		t.Fatalf("templates: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "Classic Square") || !strings.Contains(out, "Medium Square") || strings.Contains(out, "Portrait") {
		t.Fatalf("unexpected listing:\n%s", out)
	}

	r, stdout, _ = testRoot(nil)
	if err := r.Run([]string{"templates", "-quick"}); err != nil {
		t.Fatalf("quick: %v", err)
	}
	if got := strings.Count(stdout.String(), "\n"); got != 8 {
		t.Fatalf("%d quick texts", got)
	}

	r, _, _ = testRoot(nil)
	if err := r.Run([]string{"templates", "zzz"}); err == nil {
		t.Fatal("expected no-match error")
	}
}

func TestParseEditSources(t *testing.T) {
	r, _, _ := testRoot(nil)
	if _, err := parseEditCmd("edit", []string{"-file", "a.png", "-url", "https://example.com/a.png"}, r); err == nil {
		t.Fatal("two sources accepted")
	}
	if _, err := parseEditCmd("edit", []string{"-template", "99"}, r); err == nil {
		t.Fatal("unknown template accepted")
	}
	e, err := parseEditCmd("preview", []string{"meme.png"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	src, label, err := e.source()
	if err != nil || src == nil || label != "meme.png" {
		t.Fatalf("source %v %q %v", src != nil, label, err)
	}
	if e.Template() != "preview.txt" {
		t.Fatalf("template %q", e.Template())
	}
}

func TestConfigFlagAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, "memecanvas.rc")
	if err := os.WriteFile(rc, []byte("backend = gg\n\n[output]\ndownload_name = file.png\n\n[notify]\ncopy = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout bytes.Buffer
	env := map[string]string{config.EnvBackend: "raster"}
	r := newRootWith(config.New(), func(k string) string { return env[k] }, &stdout, &bytes.Buffer{})
	if err := r.Run([]string{"-config", rc, "-notify-copy=false", "config", "print"}); err != nil {
		t.Fatalf("config print: %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"backend = raster", "download_name = file.png", "copy = false"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestConfigSave(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, "saved.rc")
	if err := os.WriteFile(rc, []byte("[canvas]\nwidth = 500\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, _, _ := testRoot(nil)
	if err := r.Run([]string{"-config", rc, "-theme", "dark", "config", "save"}); err != nil {
		t.Fatalf("config save: %v", err)
	}
	cfg, err := config.LoadFile(rc)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Canvas.Width != 500 || cfg.Theme != "dark" {
		t.Fatalf("saved config %+v", cfg)
	}
}

func TestVersion(t *testing.T) {
	r, stdout, _ := testRoot(nil)
	if err := r.Run([]string{"version"}); err != nil {
		t.Fatal(err)
	}
	if got := stdout.String(); got != "memecanvas version dev\n" {
		t.Fatalf("version output %q", got)
	}
}
