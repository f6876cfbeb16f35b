// Package preview sizes the on-screen copy of a canvas.
package preview

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/example/memecanvas/internal/interact"
)

// DefaultMaxWidth is the widest a canvas is ever shown.
const DefaultMaxWidth = 600

// DisplaySize returns the on-screen size for a width x height canvas. Wide
// canvases are shrunk to maxWidth keeping their aspect ratio; others are
// shown at native size.
func DisplaySize(width, height, maxWidth int) (float64, float64) {
	if maxWidth <= 0 || width <= maxWidth {
		return float64(width), float64(height)
	}
	ratio := float64(maxWidth) / float64(width)
	return float64(maxWidth), float64(height) * ratio
}

// Layout places the display copy of a canvas at origin.
func Layout(origin image.Point, canvasW, canvasH, maxWidth int) interact.Viewport {
	dw, dh := DisplaySize(canvasW, canvasH, maxWidth)
	return interact.Viewport{
		CanvasWidth:  canvasW,
		CanvasHeight: canvasH,
		Display: interact.Rect{
			Left:   float64(origin.X),
			Top:    float64(origin.Y),
			Width:  dw,
			Height: dh,
		},
	}
}

// Bounds returns the integer screen rectangle covered by vp.
func Bounds(vp interact.Viewport) image.Rectangle {
	origin := image.Pt(int(vp.Display.Left), int(vp.Display.Top))
	return image.Rectangle{
		Min: origin,
		Max: origin.Add(image.Pt(int(vp.Display.Width+0.5), int(vp.Display.Height+0.5))),
	}
}

// Draw paints frame into dst scaled to the viewport's display rectangle.
func Draw(dst draw.Image, frame image.Image, vp interact.Viewport) {
	r := Bounds(vp)
	if r.Dx() == frame.Bounds().Dx() && r.Dy() == frame.Bounds().Dy() {
		draw.Draw(dst, r, frame, frame.Bounds().Min, draw.Src)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, r, frame, frame.Bounds(), draw.Src, nil)
}
