package ingest

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// FitSize returns the dimensions src would have after ResizeToFit. Images are
// only ever shrunk: a landscape image is bounded by maxW, anything else by
// maxH, and an image inside both bounds keeps its size.
func FitSize(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := 1.0
	if w > h {
		if maxW > 0 && w > maxW {
			scale = float64(maxW) / float64(w)
		}
	} else if maxH > 0 && h > maxH {
		scale = float64(maxH) / float64(h)
	}
	if scale == 1 {
		return w, h
	}
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// ResizeToFit scales src down so it fits maxW x maxH while keeping its aspect
// ratio. The result always has a zero origin.
func ResizeToFit(src image.Image, maxW, maxH int) (*image.RGBA, int, int) {
	b := src.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst, w, h
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst, w, h
}
