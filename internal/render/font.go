package render

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"
)

// Font describes the face used for a piece of text.
type Font struct {
	Family string
	Size   float64
}

// DefaultFamily is used when a family is unknown.
const DefaultFamily = "Impact"

// Families lists the font families offered by the editor, in menu order.
var Families = []string{
	"Impact",
	"Arial",
	"Helvetica",
	"Comic Sans MS",
	"Times New Roman",
	"Courier New",
	"Georgia",
	"Verdana",
}

// Built-in families map onto the Go fonts so rendering does not depend on
// what is installed on the host.
var builtinTTF = map[string][]byte{
	"impact":          gobold.TTF,
	"arial":           goregular.TTF,
	"helvetica":       goregular.TTF,
	"comic sans ms":   gobolditalic.TTF,
	"times new roman": gosmallcaps.TTF,
	"courier new":     gomono.TTF,
	"georgia":         goitalic.TTF,
	"verdana":         gomedium.TTF,
}

var (
	parseOnce   sync.Once
	parsedFonts map[string]*opentype.Font
)

var fontLog = logrus.WithField("component", "render")

func parseBuiltins() {
	parsedFonts = make(map[string]*opentype.Font, len(builtinTTF))
	for family, data := range builtinTTF {
		f, err := opentype.Parse(data)
		if err != nil {
			fontLog.WithError(err).WithField("family", family).Warn("skipping built-in font")
			continue
		}
		parsedFonts[family] = f
	}
}

type faceKey struct {
	family string
	size   float64
}

// FontBook resolves Font descriptors to cached faces. Faces are not safe for
// concurrent use, so each renderer owns its own FontBook.
type FontBook struct {
	mu    sync.RWMutex
	fonts map[string]*opentype.Font
	faces sync.Map // map[faceKey]font.Face
}

// NewFontBook returns a FontBook preloaded with the built-in families.
func NewFontBook() *FontBook {
	parseOnce.Do(parseBuiltins)
	b := &FontBook{fonts: make(map[string]*opentype.Font, len(parsedFonts))}
	for k, v := range parsedFonts {
		b.fonts[k] = v
	}
	return b
}

func normFamily(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// Register makes f available under family, replacing any previous mapping.
func (b *FontBook) Register(family string, f *opentype.Font) {
	key := normFamily(family)
	b.mu.Lock()
	b.fonts[key] = f
	b.mu.Unlock()
	b.faces.Range(func(k, _ any) bool {
		if k.(faceKey).family == key {
			b.faces.Delete(k)
		}
		return true
	})
}

// LoadFile parses a TrueType or OpenType file and registers it as family.
func (b *FontBook) LoadFile(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	b.Register(family, f)
	return nil
}

// Has reports whether family resolves without falling back.
func (b *FontBook) Has(family string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.fonts[normFamily(family)]
	return ok
}

// Names returns every registered family in lower case, sorted.
func (b *FontBook) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.fonts))
	for k := range b.fonts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Face returns the face for f. Unknown families use DefaultFamily and
// non-positive sizes use 1px. If no outline font can be used the fixed 7x13
// face is returned.
func (b *FontBook) Face(f Font) font.Face {
	family := normFamily(f.Family)
	b.mu.RLock()
	src, ok := b.fonts[family]
	if !ok {
		family = normFamily(DefaultFamily)
		src = b.fonts[family]
	}
	b.mu.RUnlock()
	if src == nil {
		fontLog.WithField("family", family).Warn("no font registered, using fixed face")
		return basicfont.Face7x13
	}
	size := f.Size
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		size = 1
	}
	key := faceKey{family, size}
	if face, ok := b.faces.Load(key); ok {
		return face.(font.Face)
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		fontLog.WithError(err).WithFields(logrus.Fields{"family": family, "size": size}).Warn("font face failed, using fixed face")
		return basicfont.Face7x13
	}
	actual, _ := b.faces.LoadOrStore(key, face)
	return actual.(font.Face)
}

// MeasureText returns the advance width of text in f.
func (b *FontBook) MeasureText(text string, f Font) float64 {
	adv := font.MeasureString(b.Face(f), text)
	return float64(adv) / 64
}

// baseline returns the left edge and baseline that centre text horizontally
// on x and vertically on y.
func (b *FontBook) baseline(text string, x, y float64, f Font) (float64, float64) {
	face := b.Face(f)
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	width := float64(font.MeasureString(face, text)) / 64
	return x - width/2, y + (ascent-descent)/2
}

// strokeOffsets returns the pixel offsets at which text is stamped to build
// an outline of the given width around the glyphs.
func strokeOffsets(width float64) [][2]float64 {
	if width <= 0 {
		return nil
	}
	r := width / 2
	reach := int(math.Ceil(r))
	limit := (r + 0.5) * (r + 0.5)
	var out [][2]float64
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if float64(dx*dx+dy*dy) <= limit {
				out = append(out, [2]float64{float64(dx), float64(dy)})
			}
		}
	}
	return out
}
