package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// RasterSurface draws into an *image.RGBA using golang.org/x/image.
type RasterSurface struct {
	fonts *FontBook
	img   *image.RGBA
}

var _ Surface = (*RasterSurface)(nil)

// NewRasterSurface creates an empty surface. A nil FontBook gets a fresh one.
func NewRasterSurface(fonts *FontBook) *RasterSurface {
	if fonts == nil {
		fonts = NewFontBook()
	}
	return &RasterSurface{fonts: fonts, img: image.NewRGBA(image.Rect(0, 0, 0, 0))}
}

func (s *RasterSurface) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if s.img.Bounds().Dx() == width && s.img.Bounds().Dy() == height {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (s *RasterSurface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (s *RasterSurface) FillRect(r image.Rectangle, c color.Color) {
	draw.Draw(s.img, r.Intersect(s.img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func (s *RasterSurface) DrawImage(img image.Image) {
	if img == nil {
		return
	}
	src := img.Bounds()
	dst := s.img.Bounds()
	if src.Dx() == dst.Dx() && src.Dy() == dst.Dy() {
		draw.Draw(s.img, dst, img, src.Min, draw.Over)
		return
	}
	xdraw.CatmullRom.Scale(s.img, dst, img, src, draw.Over, nil)
}

func (s *RasterSurface) MeasureText(text string, f Font) float64 {
	return s.fonts.MeasureText(text, f)
}

func (s *RasterSurface) FillText(text string, x, y float64, f Font, c color.Color) {
	left, base := s.fonts.baseline(text, x, y, f)
	s.stamp(text, left, base, f, c)
}

func (s *RasterSurface) StrokeText(text string, x, y float64, f Font, c color.Color, width float64) {
	left, base := s.fonts.baseline(text, x, y, f)
	for _, off := range strokeOffsets(width) {
		s.stamp(text, left+off[0], base+off[1], f, c)
	}
}

func (s *RasterSurface) stamp(text string, left, base float64, f Font, c color.Color) {
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.fonts.Face(f),
		Dot:  fixed.Point26_6{X: toFixed(left), Y: toFixed(base)},
	}
	d.DrawString(text)
}

func (s *RasterSurface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
