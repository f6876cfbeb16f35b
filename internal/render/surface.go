// Package render composites a background and text annotations into a raster.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Surface is the drawing capability the compositor needs. Text is always
// anchored at its horizontal centre and vertical middle.
type Surface interface {
	// Resize sets the surface dimensions. Content is undefined until Clear.
	Resize(width, height int)
	Clear()
	FillRect(r image.Rectangle, c color.Color)
	// DrawImage scales img to exactly cover the surface.
	DrawImage(img image.Image)
	MeasureText(text string, f Font) float64
	FillText(text string, x, y float64, f Font, c color.Color)
	StrokeText(text string, x, y float64, f Font, c color.Color, width float64)
	// Snapshot returns a copy of the current pixels.
	Snapshot() *image.RGBA
}

// Backend names a Surface implementation.
type Backend string

const (
	// BackendRaster draws with golang.org/x/image.
	BackendRaster Backend = "raster"
	// BackendGG draws with github.com/fogleman/gg.
	BackendGG Backend = "gg"
)

// NewSurface returns a surface for the named backend. An empty name selects
// the raster backend.
func NewSurface(name string, fonts *FontBook) (Surface, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(name))) {
	case "", BackendRaster:
		return NewRasterSurface(fonts), nil
	case BackendGG:
		return NewGGSurface(fonts), nil
	}
	return nil, fmt.Errorf("unknown render backend %q", name)
}
