// Package notify sends desktop notifications after a meme leaves the editor.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/memecanvas/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave fires when a meme is handed to the drafts store.
	EventSave Event = "save"
	// EventDownload fires when a meme is written to disk.
	EventDownload Event = "download"
	// EventCopy fires when a meme is placed on the clipboard.
	EventCopy Event = "copy"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "memecanvas",
		Events: map[Event]EventPreference{
			EventSave:     {Template: "Saved draft %s"},
			EventDownload: {Template: "Downloaded %s"},
			EventCopy:     {Template: "Copied %s to clipboard"},
		},
	}
}

// LoadPreferences reads overrides from environment variables through getenv.
func LoadPreferences(getenv func(string) string) Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(getenv("MEMECANVAS_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			p := prefs.Events[event]
			p.Template = v
			prefs.Events[event] = p
		}
	}
	apply("MEMECANVAS_NOTIFY_SAVE_TEXT", EventSave)
	apply("MEMECANVAS_NOTIFY_DOWNLOAD_TEXT", EventDownload)
	apply("MEMECANVAS_NOTIFY_COPY_TEXT", EventCopy)
	return prefs
}

// SendFunc delivers one notification.
type SendFunc func(title, body string, opts platform.Options) error

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    SendFunc
	log     *logrus.Entry
}

// New creates a Notifier that delivers through the host platform.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{
		prefs:   cloned,
		enabled: make(map[Event]bool),
		send:    platform.Notify,
		log:     logrus.WithField("component", "notify"),
	}
}

// WithSender replaces the delivery function.
func (n *Notifier) WithSender(fn SendFunc) *Notifier {
	n.send = fn
	return n
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Save reports a stored draft.
func (n *Notifier) Save(draftID string) {
	n.dispatch(EventSave, draftID, platform.Options{})
}

// Download reports a written file, using it as the notification icon.
func (n *Notifier) Download(path string) {
	if !n.enabledFor(EventDownload) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventDownload, detail, opts)
}

// Copy reports a clipboard copy with an optional image preview.
func (n *Notifier) Copy(detail string, img image.Image) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "meme"
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			n.log.WithError(err).Warn("notification preview")
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCopy, detail, opts)
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil || n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	template := strings.TrimSpace(n.prefs.Events[event].Template)
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		n.log.WithError(err).WithField("event", string(event)).Warn("notification failed")
	}
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "memecanvas-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).Warn("remove preview")
		}
	}
	return path, cleanup, nil
}
