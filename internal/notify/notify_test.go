package notify

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/memecanvas/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func recorder(out *[]sent) SendFunc {
	return func(title, body string, opts platform.Options) error {
		_, err := os.Stat(opts.IconPath)
		*out = append(*out, sent{title, body, opts, opts.IconPath != "" && err == nil})
		return nil
	}
}

func TestDisabledEventsAreSilent(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences()).WithSender(recorder(&got))
	n.Save("01H")
	n.Download("meme.png")
	n.Copy("", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if len(got) != 0 {
		t.Fatalf("sent %v with nothing enabled", got)
	}
	var nilNotifier *Notifier
	nilNotifier.Save("x")
	nilNotifier.Enable(EventSave, true)
}

func TestEnabledEvents(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences()).WithSender(recorder(&got))
	for _, e := range []Event{EventSave, EventDownload, EventCopy} {
		n.Enable(e, true)
	}
	path := filepath.Join(t.TempDir(), "web3-meme.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	n.Save("01HXYZ")
	n.Download(path)
	n.Copy("", image.NewRGBA(image.Rect(0, 0, 2, 2)))

	if len(got) != 3 {
		t.Fatalf("sent %d notifications", len(got))
	}
	if got[0].body != "Saved draft 01HXYZ" || got[0].title != "memecanvas" {
		t.Errorf("save %+v", got[0])
	}
	if got[1].body != "Downloaded "+path || got[1].opts.IconPath != path {
		t.Errorf("download %+v", got[1])
	}
	if got[2].body != "Copied meme to clipboard" || !got[2].iconExisted {
		t.Errorf("copy %+v", got[2])
	}
	if _, err := os.Stat(got[2].opts.IconPath); !os.IsNotExist(err) {
		t.Errorf("preview %s not cleaned up", got[2].opts.IconPath)
	}
}

func TestLoadPreferences(t *testing.T) {
	env := map[string]string{
		"MEMECANVAS_NOTIFY_TITLE":     "Memes",
		"MEMECANVAS_NOTIFY_COPY_TEXT": "Clipboard has %s",
	}
	prefs := LoadPreferences(func(k string) string { return env[k] })
	if prefs.Title != "Memes" || prefs.Events[EventCopy].Template != "Clipboard has %s" {
		t.Fatalf("prefs %+v", prefs)
	}
	if prefs.Events[EventSave].Template != DefaultPreferences().Events[EventSave].Template {
		t.Fatal("save template overridden")
	}
}
