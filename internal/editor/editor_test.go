package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/memecanvas/internal/ingest"
	"github.com/example/memecanvas/internal/interact"
	"github.com/example/memecanvas/internal/layers"
	"github.com/example/memecanvas/internal/render"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(w, h, color.RGBA{20, 40, 60, 255})); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func result(w, h int) ingest.Result {
	return ingest.Result{Image: solid(w, h, color.RGBA{0, 0, 255, 255}), Width: w, Height: h, Source: "test"}
}

func TestNewEditorIsEmpty(t *testing.T) {
	e := New()
	doc := e.Document()
	if doc.Width != 400 || doc.Height != 400 || doc.Background != nil {
		t.Fatalf("unexpected document %+v", doc)
	}
	if got := e.Caption(); got != "Canvas: 400 × 400px" {
		t.Fatalf("caption %q", got)
	}
	if f := e.Frame(); f.Bounds() != image.Rect(0, 0, 400, 400) {
		t.Fatalf("frame bounds %v", f.Bounds())
	}
}

func TestExportRequiresBackground(t *testing.T) {
	called := false
	e := New(WithSaveFunc(func(string) error { called = true; return nil }),
		WithClipboard(func(image.Image) error { called = true; return nil }))
	e.AddText("GM")
	if _, err := e.Save(); !errors.Is(err, ErrNoBackground) {
		t.Fatalf("Save error %v", err)
	}
	if err := e.Download(&bytes.Buffer{}); !errors.Is(err, ErrNoBackground) {
		t.Fatalf("Download error %v", err)
	}
	if _, err := e.DownloadTo(t.TempDir()); !errors.Is(err, ErrNoBackground) {
		t.Fatalf("DownloadTo error %v", err)
	}
	if err := e.Copy(); !errors.Is(err, ErrNoBackground) {
		t.Fatalf("Copy error %v", err)
	}
	if called {
		t.Fatal("callback invoked without a background")
	}
}

func TestLoadFromBytesResizesCanvas(t *testing.T) {
	e := New()
	e.AddText("GM")
	if err := e.Load(context.Background(), FromBytes("wide.png", pngData(t, 800, 400))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	doc := e.Document()
	if doc.Width != 400 || doc.Height != 200 {
		t.Fatalf("canvas %dx%d, want 400x200", doc.Width, doc.Height)
	}
	if e.Caption() != "Canvas: 400 × 200px" {
		t.Fatalf("caption %q", e.Caption())
	}
	if len(e.Layers()) != 1 {
		t.Fatal("annotations dropped on background change")
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	e := New()
	first := e.BeginLoad()
	second := e.BeginLoad()

	applied, err := e.CompleteLoad(second, result(300, 200), nil)
	if !applied || err != nil {
		t.Fatalf("latest load: applied=%v err=%v", applied, err)
	}
	applied, err = e.CompleteLoad(first, result(120, 90), nil)
	if applied || !errors.Is(err, ErrSuperseded) {
		t.Fatalf("stale load: applied=%v err=%v", applied, err)
	}
	if doc := e.Document(); doc.Width != 300 || doc.Height != 200 {
		t.Fatalf("stale result applied: %dx%d", doc.Width, doc.Height)
	}
}

func TestLoadStartedLaterWinsEvenIfUnfinished(t *testing.T) {
	e := New()
	first := e.BeginLoad()
	e.BeginLoad()
	if applied, _ := e.CompleteLoad(first, result(120, 90), nil); applied {
		t.Fatal("older load applied while a newer one is pending")
	}
	if e.Document().Background != nil {
		t.Fatal("document changed")
	}
}

func TestFailedLoadKeepsDocument(t *testing.T) {
	e := New()
	if err := e.Load(context.Background(), FromBytes("a.png", pngData(t, 200, 100))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := e.Document()
	err := e.Load(context.Background(), FromBytes("notes.txt", []byte("hello")))
	if !errors.Is(err, ingest.ErrInvalidFormat) {
		t.Fatalf("err %v, want invalid format", err)
	}
	err = e.Load(context.Background(), FromBytes("broken.png", []byte("\x89PNG\r\n\x1a\nnope")))
	if !errors.Is(err, ingest.ErrDecodeFailure) {
		t.Fatalf("err %v, want decode failure", err)
	}
	after := e.Document()
	if after.Width != before.Width || after.Height != before.Height || after.Background != before.Background {
		t.Fatal("failed load modified the document")
	}
}

func TestLoadAsync(t *testing.T) {
	e := New()
	done := make(chan error, 1)
	e.LoadAsync(context.Background(), FromImage("clipboard", solid(50, 25, color.RGBA{1, 2, 3, 255})), func(applied bool, err error) {
		if err == nil && !applied {
			err = errors.New("not applied")
		}
		done <- err
	})
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("async load: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("async load timed out")
	}
	if doc := e.Document(); doc.Width != 50 || doc.Height != 25 || doc.Source != "clipboard" {
		t.Fatalf("document %+v", doc)
	}
}

func TestPointerRendersOncePerMove(t *testing.T) {
	e := New()
	if _, err := e.CompleteLoad(e.BeginLoad(), result(400, 400), nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	id := e.AddText("GM")
	vp := e.Viewport(image.Point{})

	base := e.Renders()
	if e.Pointer(interact.Event{Phase: interact.PhaseStart, ClientX: 200, ClientY: 200}, vp) {
		t.Fatal("start reported a change")
	}
	if e.Gesture().Kind != interact.Dragging {
		t.Fatal("not dragging after start on text")
	}
	for i := 1; i <= 3; i++ {
		if !e.Pointer(interact.Event{Phase: interact.PhaseMove, ClientX: 200 + float64(10*i), ClientY: 200}, vp) {
			t.Fatalf("move %d not applied", i)
		}
		if got := e.Renders() - base; got != i {
			t.Fatalf("after %d moves rendered %d frames", i, got)
		}
	}
	e.Pointer(interact.Event{Phase: interact.PhaseEnd}, vp)
	if e.Pointer(interact.Event{Phase: interact.PhaseMove, ClientX: 10, ClientY: 10}, vp) {
		t.Fatal("idle move reported a change")
	}
	if got := e.Renders() - base; got != 3 {
		t.Fatalf("rendered %d frames, want 3", got)
	}
	a, _ := layersByID(e, id)
	if a.X != 230 || a.Y != 200 {
		t.Fatalf("annotation at (%v,%v), want (230,200)", a.X, a.Y)
	}
}

func TestTouchDragUsesScaledViewport(t *testing.T) {
	e := New()
	if _, err := e.CompleteLoad(e.BeginLoad(), result(400, 400), nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	id := e.AddText("WAGMI")
	vp := interact.Viewport{CanvasWidth: 400, CanvasHeight: 400, Display: interact.Rect{Left: 100, Top: 0, Width: 200, Height: 200}}
	e.Pointer(interact.Event{Phase: interact.PhaseStart, Touches: []interact.Point{{X: 200, Y: 100}}}, vp)
	e.Pointer(interact.Event{Phase: interact.PhaseMove, Touches: []interact.Point{{X: 210, Y: 120}, {X: 0, Y: 0}}}, vp)
	e.Pointer(interact.Event{Phase: interact.PhaseEnd, Touches: []interact.Point{}}, vp)
	a, _ := layersByID(e, id)
	if a.X != 220 || a.Y != 240 {
		t.Fatalf("annotation at (%v,%v), want (220,240)", a.X, a.Y)
	}
}

func layersByID(e *Editor, id string) (layers.Annotation, bool) {
	for _, a := range e.Layers() {
		if a.ID == id {
			return a, true
		}
	}
	return layers.Annotation{}, false
}

func TestSaveHandsOffDataURL(t *testing.T) {
	var got string
	e := New(WithSaveFunc(func(u string) error { got = u; return nil }))
	if _, err := e.CompleteLoad(e.BeginLoad(), result(320, 240), nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	e.AddText("To the moon")
	url, err := e.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got != url {
		t.Fatal("callback did not receive the returned url")
	}
	data, err := render.DecodeDataURL(got)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 320, 240) {
		t.Fatalf("saved bounds %v", img.Bounds())
	}

	failing := New(WithSaveFunc(func(string) error { return errors.New("boom") }))
	failing.CompleteLoad(failing.BeginLoad(), result(10, 10), nil)
	if _, err := failing.Save(); err == nil {
		t.Fatal("callback error not reported")
	}
}

func TestDownloadAndCopy(t *testing.T) {
	var copied image.Image
	e := New(WithClipboard(func(img image.Image) error { copied = img; return nil }))
	if _, err := e.CompleteLoad(e.BeginLoad(), result(64, 48), nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	dir := t.TempDir()
	path, err := e.DownloadTo(dir)
	if err != nil {
		t.Fatalf("DownloadTo: %v", err)
	}
	if filepath.Base(path) != "web3-meme.png" {
		t.Fatalf("download name %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil || cfg.Width != 64 || cfg.Height != 48 {
		t.Fatalf("downloaded %+v err=%v", cfg, err)
	}

	if err := e.Copy(); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if copied == nil || copied.Bounds().Dx() != 64 {
		t.Fatal("clipboard did not receive the meme")
	}
	if err := New().Copy(); err == nil {
		t.Fatal("expected error without background")
	}
}

func TestSetFieldAndRemove(t *testing.T) {
	e := New()
	id := e.AddText("GM")
	if e.Selected() != id {
		t.Fatal("new text not selected")
	}
	if err := e.SetField(id, layers.FieldFontSize, "60"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if a, _ := layersByID(e, id); a.FontSize != 60 {
		t.Fatalf("font size %v", a.FontSize)
	}
	if err := e.SetField(id, layers.FieldFill, "not-a-colour"); err == nil {
		t.Fatal("expected parse error")
	}
	if !e.RemoveText(id) || e.RemoveText(id) {
		t.Fatal("remove semantics")
	}
	if len(e.Layers()) != 0 {
		t.Fatal("layer not removed")
	}
}

func TestSetFieldKeepsTextHittable(t *testing.T) {
	e := New()
	id := e.AddText("GM")
	for _, v := range []string{"NaN", "Inf"} {
		if err := e.SetField(id, layers.FieldFontSize, v); err == nil {
			t.Fatalf("font size %q accepted", v)
		}
	}
	if err := e.SetField(id, layers.FieldFontSize, "5000"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	a, _ := layersByID(e, id)
	if _, hi := layers.FontSizeRange(400); a.FontSize != hi {
		t.Fatalf("font size %v, want %v", a.FontSize, hi)
	}
	vp := e.Viewport(image.Point{})
	centre := vp.ToDisplay(interact.Point{X: a.X, Y: a.Y})
	e.Pointer(interact.Event{Phase: interact.PhaseStart, ClientX: centre.X, ClientY: centre.Y}, vp)
	if g := e.Gesture(); g.Kind != interact.Dragging || g.LayerID != id {
		t.Fatalf("text not grabbed after resize: %+v", g)
	}
}
