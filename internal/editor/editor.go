// Package editor is a single-document meme editing session. It owns the
// canvas document, the annotation store and the drag controller, and keeps a
// rendered frame in step with every change.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/memecanvas/internal/ingest"
	"github.com/example/memecanvas/internal/interact"
	"github.com/example/memecanvas/internal/layers"
	"github.com/example/memecanvas/internal/preview"
	"github.com/example/memecanvas/internal/render"
)

var (
	// ErrNoBackground is returned when exporting a document with nothing loaded.
	ErrNoBackground = errors.New("no background loaded")
	// ErrSuperseded is returned for a load that finished after a newer one began.
	ErrSuperseded = errors.New("load superseded by a newer request")
)

// DefaultText is the content of a freshly added annotation.
const DefaultText = "NEW TEXT"

// Document is the canvas: its size always follows the loaded background.
type Document struct {
	Width      int
	Height     int
	Background *image.RGBA
	Source     string
}

// Config holds the tunable editor settings.
type Config struct {
	CanvasWidth     int
	CanvasHeight    int
	MaxDisplayWidth int
	Limits          ingest.Limits
	Style           layers.Style
	Placeholder     render.Placeholder
	DownloadName    string
}

// DefaultConfig returns a 400x400 empty canvas shown at most 600px wide.
func DefaultConfig() Config {
	return Config{
		CanvasWidth:     400,
		CanvasHeight:    400,
		MaxDisplayWidth: preview.DefaultMaxWidth,
		Limits:          ingest.DefaultLimits(),
		Style:           layers.DefaultStyle(),
		Placeholder:     render.DefaultPlaceholder(),
		DownloadName:    "web3-meme.png",
	}
}

// SaveFunc receives the finished meme as a PNG data URL.
type SaveFunc func(dataURL string) error

// ClipboardFunc publishes an image to the system clipboard.
type ClipboardFunc func(img image.Image) error

// Editor is safe for use from a UI goroutine plus background loaders.
type Editor struct {
	mu        sync.Mutex
	cfg       Config
	doc       Document
	store     *layers.Store
	ctrl      *interact.Controller
	surface   render.Surface
	ingestor  *ingest.Ingestor
	onSave    SaveFunc
	clipboard ClipboardFunc
	log       *logrus.Entry

	seq     uint64
	frame   *image.RGBA
	renders int
}

// Option configures an Editor.
type Option func(*Editor)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option { return func(e *Editor) { e.cfg = cfg } }

// WithSurface selects the render backend.
func WithSurface(s render.Surface) Option { return func(e *Editor) { e.surface = s } }

// WithIngestor supplies a preconfigured ingestor.
func WithIngestor(i *ingest.Ingestor) Option { return func(e *Editor) { e.ingestor = i } }

// WithSaveFunc registers the save hand-off.
func WithSaveFunc(fn SaveFunc) Option { return func(e *Editor) { e.onSave = fn } }

// WithClipboard registers the clipboard writer used by Copy.
func WithClipboard(fn ClipboardFunc) Option { return func(e *Editor) { e.clipboard = fn } }

// WithLogger sets the logger entry.
func WithLogger(l *logrus.Entry) Option { return func(e *Editor) { e.log = l } }

// New creates an editor with an empty document.
func New(opts ...Option) *Editor {
	e := &Editor{cfg: DefaultConfig()}
	for _, o := range opts {
		o(e)
	}
	def := DefaultConfig()
	if e.cfg.CanvasWidth <= 0 || e.cfg.CanvasHeight <= 0 {
		e.cfg.CanvasWidth, e.cfg.CanvasHeight = def.CanvasWidth, def.CanvasHeight
	}
	if e.cfg.DownloadName == "" {
		e.cfg.DownloadName = def.DownloadName
	}
	if e.log == nil {
		e.log = logrus.WithField("component", "editor")
	}
	if e.surface == nil {
		e.surface = render.NewRasterSurface(nil)
	}
	if e.ingestor == nil {
		e.ingestor = ingest.New(ingest.WithLimits(e.cfg.Limits), ingest.WithLogger(e.log.WithField("component", "ingest")))
	}
	e.doc = Document{Width: e.cfg.CanvasWidth, Height: e.cfg.CanvasHeight}
	e.store = layers.NewStore(e.doc.Width, e.doc.Height, e.cfg.Style)
	e.ctrl = interact.NewController(e.store, e.surface)
	return e
}

// Config returns the editor settings.
func (e *Editor) Config() Config { return e.cfg }

// Document returns the current document. The background must not be modified.
func (e *Editor) Document() Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

// Caption describes the canvas size for status lines.
func (e *Editor) Caption() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fmt.Sprintf("Canvas: %d × %dpx", e.doc.Width, e.doc.Height)
}

// Layers returns the annotations in paint order.
func (e *Editor) Layers() []layers.Annotation { return e.store.List() }

// Annotation returns a single annotation by id.
func (e *Editor) Annotation(id string) (layers.Annotation, bool) { return e.store.Get(id) }

// Box returns the canvas-space hit box of an annotation.
func (e *Editor) Box(id string) (minX, minY, maxX, maxY float64, ok bool) {
	a, ok := e.store.Get(id)
	if !ok {
		return 0, 0, 0, 0, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	minX, minY, maxX, maxY = interact.Box(a, e.surface)
	return minX, minY, maxX, maxY, true
}

// Gesture returns the drag state.
func (e *Editor) Gesture() interact.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.State()
}

// Selected returns the annotation targeted by property edits.
func (e *Editor) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Selected()
}

// Select makes id the edit target.
func (e *Editor) Select(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctrl.Select(id)
}

// AddText appends an annotation at the canvas centre and selects it.
func (e *Editor) AddText(content string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.store.Add(content)
	e.ctrl.Select(id)
	e.renderLocked()
	e.log.WithFields(logrus.Fields{"id": id, "content": content}).Debug("text added")
	return id
}

// RemoveText deletes an annotation. Unknown ids are ignored.
func (e *Editor) RemoveText(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.Remove(id) {
		return false
	}
	e.renderLocked()
	return true
}

// UpdateText applies change to an annotation and re-renders.
func (e *Editor) UpdateText(id string, change layers.Change) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.Update(id, change) {
		return false
	}
	e.renderLocked()
	return true
}

// SetField parses and applies a single property change.
func (e *Editor) SetField(id string, field layers.Field, value string) error {
	change, err := layers.ParseChange(field, value)
	if err != nil {
		return err
	}
	e.UpdateText(id, change)
	return nil
}

// Viewport places the display copy of the canvas at origin.
func (e *Editor) Viewport(origin image.Point) interact.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return preview.Layout(origin, e.doc.Width, e.doc.Height, e.cfg.MaxDisplayWidth)
}

// Pointer feeds one pointer or touch event through the drag controller.
// A move that changes the document renders exactly one new frame.
func (e *Editor) Pointer(ev interact.Event, vp interact.Viewport) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ctrl.Handle(ev, vp) {
		return false
	}
	e.renderLocked()
	return true
}

// Frame returns the most recent frame, rendering one if none exists yet.
func (e *Editor) Frame() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frame == nil {
		e.renderLocked()
	}
	return e.frame
}

// Render repaints the document unconditionally.
func (e *Editor) Render() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderLocked()
}

// Renders reports how many frames have been painted.
func (e *Editor) Renders() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renders
}

func (e *Editor) scene() render.Scene {
	sc := render.Scene{
		Width:       e.doc.Width,
		Height:      e.doc.Height,
		Annotations: e.store.List(),
	}
	if e.doc.Background != nil {
		sc.Background = e.doc.Background
	}
	return sc
}

func (e *Editor) renderLocked() *image.RGBA {
	e.frame = render.Compose(e.surface, e.scene(), e.cfg.Placeholder)
	e.renders++
	return e.frame
}

func (e *Editor) exportFrame() (*image.RGBA, error) {
	if e.doc.Background == nil {
		return nil, ErrNoBackground
	}
	return e.renderLocked(), nil
}

// Save renders the meme and hands it to the save callback as a data URL.
func (e *Editor) Save() (string, error) {
	e.mu.Lock()
	frame, err := e.exportFrame()
	fn := e.onSave
	e.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("save: %w", err)
	}
	data, err := render.PNGBytes(frame)
	if err != nil {
		return "", fmt.Errorf("save: %w", err)
	}
	url := render.DataURL(data)
	if fn != nil {
		if err := fn(url); err != nil {
			return "", fmt.Errorf("save callback: %w", err)
		}
	}
	e.log.WithField("bytes", len(data)).Info("meme saved")
	return url, nil
}

// Download writes the meme as PNG to w.
func (e *Editor) Download(w io.Writer) error {
	e.mu.Lock()
	frame, err := e.exportFrame()
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	return render.EncodePNG(w, frame)
}

// DownloadTo writes the meme into dir under the configured download name and
// returns the path written.
func (e *Editor) DownloadTo(dir string) (string, error) {
	e.mu.Lock()
	frame, err := e.exportFrame()
	e.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	path := filepath.Join(dir, e.cfg.DownloadName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	if err := render.EncodePNG(f, frame); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	e.log.WithField("path", path).Info("meme downloaded")
	return path, nil
}

// Copy places the meme on the clipboard.
func (e *Editor) Copy() error {
	e.mu.Lock()
	frame, err := e.exportFrame()
	fn := e.clipboard
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if fn == nil {
		return fmt.Errorf("copy: clipboard unavailable")
	}
	if err := fn(frame); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}

// Source produces a background through an ingestor.
type Source func(ctx context.Context, ing *ingest.Ingestor) (ingest.Result, error)

// FromFile loads a local file.
func FromFile(path string) Source {
	return func(_ context.Context, ing *ingest.Ingestor) (ingest.Result, error) { return ing.LoadFile(path) }
}

// FromBytes loads an in-memory upload.
func FromBytes(name string, data []byte) Source {
	return func(_ context.Context, ing *ingest.Ingestor) (ingest.Result, error) { return ing.LoadBytes(name, data) }
}

// FromURL fetches a remote template.
func FromURL(url string) Source {
	return func(ctx context.Context, ing *ingest.Ingestor) (ingest.Result, error) { return ing.LoadURL(ctx, url) }
}

// FromImage uses an already decoded image, such as a clipboard paste.
func FromImage(name string, img image.Image) Source {
	return func(_ context.Context, ing *ingest.Ingestor) (ingest.Result, error) { return ing.FromImage(name, img) }
}

// Ticket identifies one load request.
type Ticket uint64

// BeginLoad starts a load request. Only the newest ticket may complete.
func (e *Editor) BeginLoad() Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	return Ticket(e.seq)
}

// CompleteLoad applies the result of the load started with t. Errors and
// results for any ticket but the newest leave the document untouched.
func (e *Editor) CompleteLoad(t Ticket, res ingest.Result, err error) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fields := logrus.Fields{"ticket": uint64(t), "latest": e.seq, "source": res.Source}
	if uint64(t) != e.seq {
		e.log.WithFields(fields).Debug("stale load discarded")
		return false, ErrSuperseded
	}
	if err != nil {
		e.log.WithFields(fields).WithError(err).Warn("load failed")
		return false, err
	}
	if res.Image == nil {
		return false, fmt.Errorf("%w: empty result", ingest.ErrDecodeFailure)
	}
	e.doc = Document{Width: res.Width, Height: res.Height, Background: res.Image, Source: res.Source}
	e.store.SetCanvasSize(res.Width, res.Height)
	e.ctrl.End()
	e.renderLocked()
	e.log.WithFields(fields).WithField("size", fmt.Sprintf("%dx%d", res.Width, res.Height)).Info("background loaded")
	return true, nil
}

// Load runs src to completion and applies it.
func (e *Editor) Load(ctx context.Context, src Source) error {
	t := e.BeginLoad()
	res, err := src(ctx, e.ingestor)
	_, err = e.CompleteLoad(t, res, err)
	return err
}

// LoadAsync runs src on a new goroutine. done, if set, is called from that
// goroutine once the result has been applied or discarded.
func (e *Editor) LoadAsync(ctx context.Context, src Source, done func(applied bool, err error)) Ticket {
	t := e.BeginLoad()
	go func() {
		res, err := src(ctx, e.ingestor)
		applied, err := e.CompleteLoad(t, res, err)
		if done != nil {
			done(applied, err)
		}
	}()
	return t
}
