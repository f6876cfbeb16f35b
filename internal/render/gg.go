package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
)

// GGSurface draws with a fogleman/gg context. It shares text geometry with
// RasterSurface, so hit boxes line up whichever backend paints.
type GGSurface struct {
	fonts *FontBook
	dc    *gg.Context
}

var _ Surface = (*GGSurface)(nil)

// NewGGSurface creates an empty gg-backed surface.
func NewGGSurface(fonts *FontBook) *GGSurface {
	if fonts == nil {
		fonts = NewFontBook()
	}
	return &GGSurface{fonts: fonts, dc: gg.NewContext(1, 1)}
}

func (s *GGSurface) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if s.dc.Width() == width && s.dc.Height() == height {
		return
	}
	s.dc = gg.NewContext(width, height)
}

func (s *GGSurface) Clear() {
	s.dc.SetColor(color.Transparent)
	s.dc.Clear()
}

func (s *GGSurface) FillRect(r image.Rectangle, c color.Color) {
	s.dc.SetColor(c)
	s.dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	s.dc.Fill()
}

func (s *GGSurface) DrawImage(img image.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if b.Empty() {
		return
	}
	if b.Min != (image.Point{}) {
		rebased := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rebased, rebased.Bounds(), img, b.Min, draw.Src)
		img = rebased
	}
	w, h := s.dc.Width(), s.dc.Height()
	if b.Dx() == w && b.Dy() == h {
		s.dc.DrawImage(img, 0, 0)
		return
	}
	s.dc.Push()
	s.dc.Scale(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	s.dc.DrawImage(img, 0, 0)
	s.dc.Pop()
}

func (s *GGSurface) MeasureText(text string, f Font) float64 {
	return s.fonts.MeasureText(text, f)
}

func (s *GGSurface) FillText(text string, x, y float64, f Font, c color.Color) {
	left, base := s.fonts.baseline(text, x, y, f)
	s.dc.SetFontFace(s.fonts.Face(f))
	s.dc.SetColor(c)
	s.dc.DrawString(text, left, base)
}

func (s *GGSurface) StrokeText(text string, x, y float64, f Font, c color.Color, width float64) {
	left, base := s.fonts.baseline(text, x, y, f)
	s.dc.SetFontFace(s.fonts.Face(f))
	s.dc.SetColor(c)
	for _, off := range strokeOffsets(width) {
		s.dc.DrawString(text, left+off[0], base+off[1])
	}
}

func (s *GGSurface) Snapshot() *image.RGBA {
	src := s.dc.Image()
	out := image.NewRGBA(image.Rect(0, 0, s.dc.Width(), s.dc.Height()))
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}
