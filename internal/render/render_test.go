package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"golang.org/x/image/font/opentype"

	"github.com/example/memecanvas/internal/layers"
)

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func backends() map[string]func() Surface {
	return map[string]func() Surface{
		"raster": func() Surface { return NewRasterSurface(nil) },
		"gg":     func() Surface { return NewGGSurface(nil) },
	}
}

func annotation(content string, x, y float64) layers.Annotation {
	return layers.Annotation{
		ID: content, Content: content, X: x, Y: y,
		FontSize: 40, FontFamily: "Impact",
		Fill:   color.RGBA{255, 0, 0, 255},
		Stroke: color.RGBA{0, 0, 0, 255}, StrokeWidth: 4,
	}
}

func count(img *image.RGBA, match func(color.RGBA) bool) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if match(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}

func isRed(c color.RGBA) bool   { return c.R > 200 && c.G < 40 && c.B < 40 }
func isBlack(c color.RGBA) bool { return c.R < 30 && c.G < 30 && c.B < 30 && c.A > 200 }

func TestStrokeOffsets(t *testing.T) {
	if got := strokeOffsets(0); got != nil {
		t.Fatalf("zero width produced %v", got)
	}
	if got := len(strokeOffsets(1)); got != 4 {
		t.Fatalf("1px outline uses %d stamps, want 4", got)
	}
	if got := len(strokeOffsets(2)); got != 8 {
		t.Fatalf("2px outline uses %d stamps, want 8", got)
	}
}

func TestPlaceholderWithoutBackground(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			sc := Scene{
				Width: 400, Height: 400,
				Annotations: []layers.Annotation{annotation("GM", 200, 40)},
			}
			frame := Compose(mk(), sc, DefaultPlaceholder())
			if frame.Bounds() != image.Rect(0, 0, 400, 400) {
				t.Fatalf("bounds %v", frame.Bounds())
			}
			if c := frame.RGBAAt(2, 2); c != (color.RGBA{0xf0, 0xf0, 0xf0, 0xff}) {
				t.Fatalf("corner %v, want placeholder fill", c)
			}
			if n := count(frame, isRed); n != 0 {
				t.Fatalf("%d annotation pixels drawn over the placeholder", n)
			}
			caption := func(c color.RGBA) bool { return c.R < 0xd0 && c.R == c.G && c.G == c.B }
			if count(frame, caption) == 0 {
				t.Fatal("caption missing")
			}
		})
	}
}

func TestBackgroundFillsSurface(t *testing.T) {
	blue := color.RGBA{0, 0, 255, 255}
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			sc := Scene{Width: 200, Height: 100, Background: uniform(100, 50, blue)}
			frame := Compose(mk(), sc, DefaultPlaceholder())
			for _, p := range []image.Point{{0, 0}, {199, 99}, {100, 50}, {0, 99}} {
				c := frame.RGBAAt(p.X, p.Y)
				if c.B < 250 || c.R > 5 || c.G > 5 || c.A < 250 {
					t.Fatalf("pixel %v = %v, want blue", p, c)
				}
			}
		})
	}
}

func TestAnnotationsStrokeThenFill(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			sc := Scene{
				Width: 300, Height: 150,
				Background:  uniform(300, 150, color.RGBA{255, 255, 255, 255}),
				Annotations: []layers.Annotation{annotation("HODL", 150, 75)},
			}
			frame := Compose(mk(), sc, DefaultPlaceholder())
			if count(frame, isRed) == 0 {
				t.Fatal("fill missing")
			}
			if count(frame, isBlack) == 0 {
				t.Fatal("outline missing")
			}

			noStroke := sc
			a := annotation("HODL", 150, 75)
			a.StrokeWidth = 0
			noStroke.Annotations = []layers.Annotation{a}
			if n := count(Compose(mk(), noStroke, DefaultPlaceholder()), isBlack); n != 0 {
				t.Fatalf("%d outline pixels with zero stroke width", n)
			}
		})
	}
}

func TestComposeIsIdempotent(t *testing.T) {
	bg := uniform(320, 240, color.RGBA{10, 120, 60, 255})
	sc := Scene{
		Width: 400, Height: 300, Background: bg,
		Annotations: []layers.Annotation{
			annotation("WAGMI! 🚀", 200, 60),
			annotation("Wen Lambo?", 180, 250),
			annotation("off canvas", 600, -40),
		},
	}
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			s := mk()
			first := Compose(s, sc, DefaultPlaceholder())
			second := Compose(s, sc, DefaultPlaceholder())
			third := Compose(mk(), sc, DefaultPlaceholder())
			if !bytes.Equal(first.Pix, second.Pix) {
				t.Fatal("re-render on the same surface differs")
			}
			if !bytes.Equal(first.Pix, third.Pix) {
				t.Fatal("render on a fresh surface differs")
			}
		})
	}
}

func TestFontBookFallbackAndMeasure(t *testing.T) {
	b := NewFontBook()
	impact := b.MeasureText("WAGMI", Font{Family: "Impact", Size: 32})
	if impact <= 0 {
		t.Fatalf("width %v", impact)
	}
	if got := b.MeasureText("WAGMI", Font{Family: "Papyrus", Size: 32}); got != impact {
		t.Fatalf("unknown family measured %v, want fallback %v", got, impact)
	}
	if got := b.MeasureText("WAGMI", Font{Family: "impact ", Size: 32}); got != impact {
		t.Fatalf("family lookup is not case-insensitive: %v", got)
	}
	if bigger := b.MeasureText("WAGMI", Font{Family: "Impact", Size: 64}); bigger <= impact {
		t.Fatalf("64px width %v not larger than 32px %v", bigger, impact)
	}
	for _, fam := range Families {
		if !b.Has(fam) {
			t.Errorf("family %s not registered", fam)
		}
	}
	if err := b.LoadFile("Custom", "does-not-exist.ttf"); err == nil {
		t.Fatal("expected error for missing font file")
	}
}

func TestNewSurface(t *testing.T) {
	if _, err := NewSurface("", nil); err != nil {
		t.Fatalf("default backend: %v", err)
	}
	if s, err := NewSurface("GG", nil); err != nil {
		t.Fatalf("gg backend: %v", err)
	} else if _, ok := s.(*GGSurface); !ok {
		t.Fatalf("got %T", s)
	}
	if _, err := NewSurface("cairo", nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestDataURL(t *testing.T) {
	data, err := PNGBytes(uniform(4, 4, color.RGBA{1, 2, 3, 255}))
	if err != nil {
		t.Fatalf("PNGBytes: %v", err)
	}
	url := DataURL(data)
	if url[:22] != "data:image/png;base64," {
		t.Fatalf("prefix %q", url[:22])
	}
	back, err := DecodeDataURL(url)
	if err != nil || !bytes.Equal(back, data) {
		t.Fatalf("DecodeDataURL: %v", err)
	}
	if _, err := DecodeDataURL("data:text/plain,hi"); err == nil {
		t.Fatal("expected error for non-png data url")
	}
}

func TestFaceFallsBackWithoutFonts(t *testing.T) {
	b := &FontBook{fonts: map[string]*opentype.Font{}}
	face := b.Face(Font{Family: "Impact", Size: 20})
	if face == nil {
		t.Fatal("nil face")
	}
	if w := b.MeasureText("GM", Font{Family: "Impact", Size: 20}); w != 14 {
		t.Fatalf("fixed face width %v, want 14", w)
	}
}
