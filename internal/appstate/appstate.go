// Package appstate runs the shiny editor window.
package appstate

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/memecanvas/internal/theme"
)

const (
	statusHeight = 24
	rowHeight    = 22
	bottomRows   = 2
	bottomHeight = rowHeight * bottomRows
	margin       = 16
	minWidth     = 640
)

// Mode selects what the window allows.
type Mode int

const (
	// ModeEdit allows dragging and editing annotations.
	ModeEdit Mode = iota
	// ModePreview only shows the meme and offers export shortcuts.
	ModePreview
)

// KeyShortcut identifies a key press bound to an action.
type KeyShortcut struct {
	Rune rune
	Code key.Code
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// Shortcut is a clickable key hint in the bottom bar.
type Shortcut struct {
	label  string
	action string
	rect   image.Rectangle
	theme  *theme.Theme
	fire   func(string)
}

var _ Button = (*Shortcut)(nil)

func (s *Shortcut) Draw(dst *image.RGBA, state ButtonState) {
	col := s.theme.ButtonBackground
	switch state {
	case StateHover:
		col = shade(col, 20)
	case StatePressed:
		col = shade(col, 50)
	}
	draw.Draw(dst, s.rect, &image.Uniform{col}, image.Point{}, draw.Src)
	drawRect(dst, s.rect, s.theme.ButtonBorder)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(s.theme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(s.rect.Min.X+3, s.rect.Min.Y+14)}
	d.DrawString(s.label)
}

func (s *Shortcut) Rect() image.Rectangle { return s.rect }

func (s *Shortcut) SetRect(r image.Rectangle) { s.rect = r }

func (s *Shortcut) Activate() {
	if s.fire != nil {
		s.fire(s.action)
	}
}

// shade darkens c, or lightens it when it is already dark.
func shade(c color.RGBA, by uint8) color.RGBA {
	if int(c.R)+int(c.G)+int(c.B) < 3*96 {
		return color.RGBA{sat(c.R, by), sat(c.G, by), sat(c.B, by), c.A}
	}
	return color.RGBA{c.R - min(c.R, by), c.G - min(c.G, by), c.B - min(c.B, by), c.A}
}

func sat(v, by uint8) uint8 {
	if int(v)+int(by) > 255 {
		return 255
	}
	return v + by
}

// layoutShortcuts places labels left to right, wrapping onto the next row.
func layoutShortcuts(shortcuts []Shortcut, top, width int) {
	meas := &font.Drawer{Face: basicfont.Face7x13}
	x, y := 6, top+2
	for i := range shortcuts {
		w := meas.MeasureString(shortcuts[i].label).Ceil() + 6
		if x+w > width-6 && x > 6 {
			x = 6
			y += rowHeight
		}
		shortcuts[i].SetRect(image.Rect(x, y, x+w, y+rowHeight-4))
		x += w + 6
	}
}

func fill(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color) {
	for x := rect.Min.X; x < rect.Max.X; x++ {
		img.Set(x, rect.Min.Y, col)
		img.Set(x, rect.Max.Y-1, col)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		img.Set(rect.Min.X, y, col)
		img.Set(rect.Max.X-1, y, col)
	}
}

// drawDashedRect outlines rect with alternating dashes of c1 and c2.
func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash int, c1, c2 color.Color) {
	pick := func(i int) color.Color {
		if (i/dash)%2 == 0 {
			return c1
		}
		return c2
	}
	i := 0
	for x := rect.Min.X; x < rect.Max.X; x, i = x+1, i+1 {
		img.Set(x, rect.Min.Y, pick(i))
	}
	for y := rect.Min.Y; y < rect.Max.Y; y, i = y+1, i+1 {
		img.Set(rect.Max.X-1, y, pick(i))
	}
	for x := rect.Max.X - 1; x >= rect.Min.X; x, i = x-1, i+1 {
		img.Set(x, rect.Max.Y-1, pick(i))
	}
	for y := rect.Max.Y - 1; y >= rect.Min.Y; y, i = y-1, i+1 {
		img.Set(rect.Min.X, y, pick(i))
	}
}

// drawLabel writes text with its baseline at (x, y) and returns the advance.
func drawLabel(dst *image.RGBA, face font.Face, x, y int, text string, col color.Color) int {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face, Dot: fixed.P(x, y)}
	d.DrawString(text)
	return d.Dot.X.Ceil() - x
}
