// Package drafts keeps saved memes. It is the sink behind the editor's save
// callback.
package drafts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/memecanvas/internal/render"
)

// ErrNotFound is returned for an unknown draft id.
var ErrNotFound = errors.New("draft not found")

// Draft is one saved meme.
type Draft struct {
	ID        string
	Name      string
	DataURL   string // empty in List results
	Width     int
	Height    int
	CreatedAt time.Time
}

// PNG returns the draft image bytes.
func (d *Draft) PNG() ([]byte, error) {
	return render.DecodeDataURL(d.DataURL)
}

// FromDataURL builds a draft from a saved meme, reading its size from the PNG
// header.
func FromDataURL(name, dataURL string) (*Draft, error) {
	data, err := render.DecodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("draft image: %w", err)
	}
	return &Draft{Name: name, DataURL: dataURL, Width: cfg.Width, Height: cfg.Height}, nil
}

// Store persists drafts.
type Store interface {
	// Create stores d, assigning ID and CreatedAt, and returns the new id.
	Create(ctx context.Context, d *Draft) (string, error)
	Get(ctx context.Context, id string) (*Draft, error)
	// List returns drafts newest first without their image data.
	List(ctx context.Context) ([]*Draft, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open returns the store for driver: "memory" (default) or "sqlite".
func Open(driver, dsn string) (Store, error) {
	fields := logrus.Fields{"driver": driver}
	var (
		s   Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "memory":
		s = NewMemoryStore()
		fields["driver"] = "memory"
	case "sqlite":
		if dsn == "" {
			dsn = "memecanvas.db"
		}
		fields["dsn"] = dsn
		s, err = NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("unknown drafts driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	logrus.WithFields(fields).Debug("drafts store opened")
	return s, nil
}
