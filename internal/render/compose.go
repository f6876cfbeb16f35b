package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/example/memecanvas/internal/layers"
)

// Scene is an immutable view of a document taken for one frame.
type Scene struct {
	Width       int
	Height      int
	Background  image.Image
	Annotations []layers.Annotation
}

// Placeholder is what an empty document shows instead of a background.
type Placeholder struct {
	Fill    color.Color
	Text    color.Color
	Caption string
	Font    Font
}

// DefaultPlaceholder is a light grey fill with a grey 20px caption.
func DefaultPlaceholder() Placeholder {
	return Placeholder{
		Fill:    color.RGBA{0xf0, 0xf0, 0xf0, 0xff},
		Text:    color.RGBA{0x66, 0x66, 0x66, 0xff},
		Caption: "Upload an image or select a template",
		Font:    Font{Family: "Arial", Size: 20},
	}
}

// Compose paints sc onto s and returns the finished frame. Without a
// background only the placeholder is painted.
func Compose(s Surface, sc Scene, ph Placeholder) *image.RGBA {
	s.Resize(sc.Width, sc.Height)
	s.Clear()
	if sc.Background == nil {
		s.FillRect(image.Rect(0, 0, sc.Width, sc.Height), ph.Fill)
		if ph.Caption != "" {
			s.FillText(ph.Caption, float64(sc.Width)/2, float64(sc.Height)/2, ph.Font, ph.Text)
		}
		return s.Snapshot()
	}
	s.DrawImage(sc.Background)
	for _, a := range sc.Annotations {
		f := Font{Family: a.FontFamily, Size: a.FontSize}
		if a.StrokeWidth > 0 {
			s.StrokeText(a.Content, a.X, a.Y, f, a.Stroke, a.StrokeWidth)
		}
		s.FillText(a.Content, a.X, a.Y, f, a.Fill)
	}
	return s.Snapshot()
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNGBytes returns img encoded as PNG.
func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const dataURLPrefix = "data:image/png;base64,"

// DataURL wraps PNG bytes in a self-contained data URL.
func DataURL(pngData []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(pngData)
}

// DecodeDataURL extracts the PNG bytes from a data URL made by DataURL.
func DecodeDataURL(s string) ([]byte, error) {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return nil, fmt.Errorf("not a png data url")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, dataURLPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return data, nil
}
