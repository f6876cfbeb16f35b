package appstate

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/memecanvas/internal/editor"
	"github.com/example/memecanvas/internal/theme"
)

// AppState holds the window configuration for one editing session.
type AppState struct {
	Editor      *editor.Editor
	Theme       *theme.Theme
	Mode        Mode
	DownloadDir string
	MaxStroke   float64

	initial      editor.Source
	initialLabel string

	paste      func() (image.Image, error)
	onDownload func(path string)
	onCopy     func(img image.Image)
	log        *logrus.Entry

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithEditor sets the editor driven by the window.
func WithEditor(ed *editor.Editor) Option { return func(a *AppState) { a.Editor = ed } }

// WithTheme sets the window colours.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithMode configures the UI mode.
func WithMode(mode Mode) Option { return func(a *AppState) { a.Mode = mode } }

// WithDownloadDir sets where downloads are written.
func WithDownloadDir(dir string) Option { return func(a *AppState) { a.DownloadDir = dir } }

// WithMaxStrokeWidth bounds the stroke width cycle.
func WithMaxStrokeWidth(w float64) Option { return func(a *AppState) { a.MaxStroke = w } }

// WithInitialLoad starts loading src as soon as the window opens.
func WithInitialLoad(src editor.Source, label string) Option {
	return func(a *AppState) { a.initial, a.initialLabel = src, label }
}

// WithPaste sets the clipboard reader used for pasting a background.
func WithPaste(fn func() (image.Image, error)) Option { return func(a *AppState) { a.paste = fn } }

// WithDownloadListener is called with the path of every download.
func WithDownloadListener(fn func(path string)) Option {
	return func(a *AppState) { a.onDownload = fn }
}

// WithCopyListener is called with the image after every copy.
func WithCopyListener(fn func(img image.Image)) Option { return func(a *AppState) { a.onCopy = fn } }

// WithLogger sets the logger entry.
func WithLogger(l *logrus.Entry) Option { return func(a *AppState) { a.log = l } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates a new AppState.
func New(opts ...Option) *AppState {
	a := &AppState{Mode: ModeEdit, DownloadDir: ".", MaxStroke: 8}
	for _, o := range opts {
		o(a)
	}
	if a.Editor == nil {
		a.Editor = editor.New()
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	if a.log == nil {
		a.log = logrus.WithField("component", "appstate")
	}
	return a
}

func (a *AppState) newSession() *session {
	s := newSession(a.Editor, a.Theme, a.Mode)
	s.log = a.log
	s.downloadDir = a.DownloadDir
	if a.MaxStroke > 0 {
		s.maxStroke = a.MaxStroke
	}
	s.paste = a.paste
	s.onDownload = a.onDownload
	s.onCopy = a.onCopy
	return s
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

func (a *AppState) Main(s screen.Screen) {
	sess := a.newSession()
	width, height := sess.width, sess.height
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "memecanvas"})
	if err != nil {
		a.log.WithError(err).Error("new window")
		return
	}
	defer w.Release()
	defer a.notifyClose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess.load = func(src editor.Source, label string) {
		a.Editor.LoadAsync(ctx, src, func(applied bool, err error) {
			w.Send(loadedEvent{label: label, applied: applied, err: err})
		})
	}
	sess.wake = func(d time.Duration) {
		time.AfterFunc(d, func() { w.Send(paint.Event{}) })
	}
	if a.initial != nil {
		sess.startLoad(a.initial, a.initialLabel)
	}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			sess.resize(e.WidthPx, e.HeightPx)
			w.Send(paint.Event{})
		case paint.Event:
			a.paint(s, w, sess)
		case loadedEvent:
			sess.loaded(e)
			w.Send(paint.Event{})
		case mouse.Event:
			if sess.handleMouse(e) {
				w.Send(paint.Event{})
			}
		case touch.Event:
			if sess.handleTouch(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if sess.handleKey(e) {
				w.Send(paint.Event{})
			}
		case error:
			a.log.WithError(e).Warn("window event")
		}
		if sess.closing {
			return
		}
	}
}

func (a *AppState) paint(s screen.Screen, w screen.Window, sess *session) {
	if sess.width <= 0 || sess.height <= 0 {
		return
	}
	b, err := s.NewBuffer(image.Point{sess.width, sess.height})
	if err != nil {
		a.log.WithError(err).Error("new buffer")
		return
	}
	defer b.Release()
	sess.draw(b.RGBA())
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
