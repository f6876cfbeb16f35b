package drafts

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/memecanvas/internal/render"
)

func sampleURL(t *testing.T, w, h int) string {
	t.Helper()
	data, err := render.PNGBytes(image.NewRGBA(image.Rect(0, 0, w, h)))
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	return render.DataURL(data)
}

func stores(t *testing.T) map[string]Store {
	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{"memory": NewMemoryStore(), "sqlite": sq}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			first, err := FromDataURL("gm", sampleURL(t, 40, 30))
			if err != nil {
				t.Fatalf("FromDataURL: %v", err)
			}
			if first.Width != 40 || first.Height != 30 {
				t.Fatalf("size %dx%d", first.Width, first.Height)
			}
			id1, err := s.Create(ctx, first)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			time.Sleep(2 * time.Millisecond)
			second, _ := FromDataURL("wagmi", sampleURL(t, 10, 10))
			id2, err := s.Create(ctx, second)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}

			got, err := s.Get(ctx, id1)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.DataURL != first.DataURL || got.Name != "gm" || got.Width != 40 {
				t.Fatalf("got %+v", got)
			}
			if _, err := got.PNG(); err != nil {
				t.Fatalf("PNG: %v", err)
			}

			list, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != 2 || list[0].ID != id2 || list[1].ID != id1 {
				t.Fatalf("list order %v", list)
			}
			if list[0].DataURL != "" {
				t.Fatal("list carries image data")
			}

			if err := s.Delete(ctx, id1); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, id1); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get after delete: %v", err)
			}
			if err := s.Delete(ctx, id1); !errors.Is(err, ErrNotFound) {
				t.Fatalf("second delete: %v", err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	s, err := Open("", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("default store %T", s)
	}
	s, err = Open("sqlite", filepath.Join(t.TempDir(), "x.db"))
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	s.Close()
	if _, err := Open("postgres", ""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if _, err := FromDataURL("x", "data:text/plain,hi"); err == nil {
		t.Fatal("expected error for non-png data url")
	}
}
