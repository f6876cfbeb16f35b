// Package layers holds the ordered text annotations of a meme. Slice order is
// paint order: the first annotation is drawn first, the last one on top.
package layers

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Annotation is a single text layer. Values are never mutated once stored;
// updates replace the whole value.
type Annotation struct {
	ID          string
	Content     string
	X, Y        float64 // anchor: horizontal centre, vertical middle
	FontSize    float64
	FontFamily  string
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64
}

// Style carries the defaults applied to new annotations.
type Style struct {
	FontFamily     string
	Fill           color.RGBA
	Stroke         color.RGBA
	StrokeWidth    float64
	MaxStrokeWidth float64
	MinFontSize    float64
	MaxFontSize    float64
}

// DefaultStyle is white Impact with a 2px black outline, sized between 24 and
// 48 pixels. Outlines are capped at 8px.
func DefaultStyle() Style {
	return Style{
		FontFamily:     "Impact",
		Fill:           color.RGBA{255, 255, 255, 255},
		Stroke:         color.RGBA{0, 0, 0, 255},
		StrokeWidth:    2,
		MaxStrokeWidth: 8,
		MinFontSize:    24,
		MaxFontSize:    48,
	}
}

// DefaultFontSize is canvasWidth/12 clamped to [min, max].
func DefaultFontSize(canvasWidth int, lo, hi float64) float64 {
	size := float64(canvasWidth) / 12
	return math.Max(lo, math.Min(hi, size))
}

// FontSizeRange returns the adjustable font size bounds for a canvas width:
// 12 up to the smaller of 72 and a quarter of the width.
func FontSizeRange(canvasWidth int) (float64, float64) {
	hi := math.Min(72, float64(canvasWidth)/4)
	if hi < 12 {
		hi = 12
	}
	return 12, hi
}

// Store is the ordered annotation collection for one document.
type Store struct {
	mu     sync.RWMutex
	items  []Annotation
	style  Style
	width  int
	height int
}

// NewStore creates an empty store for a canvas of the given size.
func NewStore(width, height int, style Style) *Store {
	return &Store{style: style, width: width, height: height}
}

// SetCanvasSize updates the size used to place and size new annotations.
// Existing annotations keep their positions.
func (s *Store) SetCanvasSize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

// Style returns the defaults used for new annotations.
func (s *Store) Style() Style {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

// Add appends a new annotation centred on the canvas and returns its id.
func (s *Store) Add(content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := Annotation{
		ID:          ulid.Make().String(),
		Content:     content,
		X:           float64(s.width) / 2,
		Y:           float64(s.height) / 2,
		FontSize:    DefaultFontSize(s.width, s.style.MinFontSize, s.style.MaxFontSize),
		FontFamily:  s.style.FontFamily,
		Fill:        s.style.Fill,
		Stroke:      s.style.Stroke,
		StrokeWidth: math.Max(0, s.style.StrokeWidth),
	}
	next := make([]Annotation, len(s.items), len(s.items)+1)
	copy(next, s.items)
	s.items = append(next, a)
	return a.ID
}

// Remove deletes the annotation with id. Unknown ids are ignored.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(id)
	if idx < 0 {
		return false
	}
	next := make([]Annotation, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	s.items = append(next, s.items[idx+1:]...)
	return true
}

// Change derives a new annotation value from an old one.
type Change func(Annotation) Annotation

// Update replaces the annotation with id by change(old). It reports whether
// the id was found. The id and paint position cannot be changed. Non-finite
// numbers keep their old value; a changed font size is clamped to
// FontSizeRange and a changed stroke width to [0, MaxStrokeWidth].
func (s *Store) Update(id string, change Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(id)
	if idx < 0 {
		return false
	}
	updated := s.bound(s.items[idx], change(s.items[idx]))
	updated.ID = id
	next := make([]Annotation, len(s.items))
	copy(next, s.items)
	next[idx] = updated
	s.items = next
	return true
}

// Get returns a copy of the annotation with id.
func (s *Store) Get(id string) (Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.index(id)
	if idx < 0 {
		return Annotation{}, false
	}
	return s.items[idx], true
}

// List returns the annotations in paint order. The slice is a copy.
func (s *Store) List() []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Annotation, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of annotations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) bound(old, a Annotation) Annotation {
	if !finite(a.X) {
		a.X = old.X
	}
	if !finite(a.Y) {
		a.Y = old.Y
	}
	if a.FontSize != old.FontSize {
		if finite(a.FontSize) {
			lo, hi := FontSizeRange(s.width)
			a.FontSize = math.Max(lo, math.Min(hi, a.FontSize))
		} else {
			a.FontSize = old.FontSize
		}
	}
	if a.StrokeWidth != old.StrokeWidth {
		if !finite(a.StrokeWidth) {
			a.StrokeWidth = old.StrokeWidth
		} else if limit := s.style.MaxStrokeWidth; limit > 0 && a.StrokeWidth > limit {
			a.StrokeWidth = limit
		}
	}
	if a.StrokeWidth < 0 {
		a.StrokeWidth = 0
	}
	return a
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (s *Store) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// WithContent sets the text.
func WithContent(text string) Change {
	return func(a Annotation) Annotation { a.Content = text; return a }
}

// WithPosition moves the anchor.
func WithPosition(x, y float64) Change {
	return func(a Annotation) Annotation { a.X, a.Y = x, y; return a }
}

// WithFontSize sets the font size in pixels.
func WithFontSize(size float64) Change {
	return func(a Annotation) Annotation { a.FontSize = size; return a }
}

// WithFontFamily sets the font family name.
func WithFontFamily(family string) Change {
	return func(a Annotation) Annotation { a.FontFamily = family; return a }
}

// WithFill sets the fill colour.
func WithFill(c color.RGBA) Change {
	return func(a Annotation) Annotation { a.Fill = c; return a }
}

// WithStroke sets the outline colour.
func WithStroke(c color.RGBA) Change {
	return func(a Annotation) Annotation { a.Stroke = c; return a }
}

// WithStrokeWidth sets the outline width. Negative widths become zero.
func WithStrokeWidth(w float64) Change {
	return func(a Annotation) Annotation { a.StrokeWidth = math.Max(0, w); return a }
}

// Field names an editable annotation property.
type Field string

const (
	FieldContent     Field = "content"
	FieldX           Field = "x"
	FieldY           Field = "y"
	FieldFontSize    Field = "fontSize"
	FieldFontFamily  Field = "fontFamily"
	FieldFill        Field = "fill"
	FieldStroke      Field = "stroke"
	FieldStrokeWidth Field = "strokeWidth"
)

// ParseChange builds a Change for field from its textual value.
func ParseChange(field Field, value string) (Change, error) {
	num := func() (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
		}
		if !finite(v) {
			return 0, fmt.Errorf("invalid %s %q: not a finite number", field, value)
		}
		return v, nil
	}
	field = Field(strings.TrimSpace(string(field)))
	switch field {
	case FieldContent:
		return WithContent(value), nil
	case FieldFontFamily:
		return WithFontFamily(strings.TrimSpace(value)), nil
	case FieldX, FieldY:
		v, err := num()
		if err != nil {
			return nil, err
		}
		if field == FieldX {
			return func(a Annotation) Annotation { a.X = v; return a }, nil
		}
		return func(a Annotation) Annotation { a.Y = v; return a }, nil
	case FieldFontSize:
		v, err := num()
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("font size must be positive, got %v", v)
		}
		return WithFontSize(v), nil
	case FieldStrokeWidth:
		v, err := num()
		if err != nil {
			return nil, err
		}
		return WithStrokeWidth(v), nil
	case FieldFill, FieldStroke:
		c, err := ParseColor(value)
		if err != nil {
			return nil, err
		}
		if field == FieldFill {
			return WithFill(c), nil
		}
		return WithStroke(c), nil
	}
	return nil, fmt.Errorf("unknown field %q", field)
}

// UpdateField parses value and applies it to the annotation with id. An
// unknown id is a no-op; only malformed values are errors.
func (s *Store) UpdateField(id string, field Field, value string) error {
	change, err := ParseChange(field, value)
	if err != nil {
		return err
	}
	s.Update(id, change)
	return nil
}
