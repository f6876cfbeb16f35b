package appstate

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"

	"github.com/example/memecanvas/assets"
	"github.com/example/memecanvas/internal/editor"
	"github.com/example/memecanvas/internal/interact"
	"github.com/example/memecanvas/internal/layers"
	"github.com/example/memecanvas/internal/preview"
	"github.com/example/memecanvas/internal/render"
	"github.com/example/memecanvas/internal/theme"
)

const (
	messageDuration = 3 * time.Second
	fontSizeStep    = 2
)

// loadedEvent is posted back to the window once a background load finishes.
type loadedEvent struct {
	label   string
	applied bool
	err     error
}

// session is the window's event state. It holds no shiny resources so it can
// be driven directly.
type session struct {
	ed     *editor.Editor
	th     *theme.Theme
	mode   Mode
	face   font.Face
	log    *logrus.Entry
	now    func() time.Time
	width  int
	height int

	actions   map[string]func()
	keys      map[KeyShortcut]string
	shortcuts []Shortcut
	hover     int

	editing bool
	input   string

	message      string
	messageErr   bool
	messageUntil time.Time

	touching bool
	touchSeq touch.Sequence
	dragging bool

	templateIdx int
	quickIdx    int
	maxStroke   float64
	downloadDir string

	paste      func() (image.Image, error)
	onDownload func(path string)
	onCopy     func(img image.Image)
	load       func(src editor.Source, label string)
	wake       func(d time.Duration)
	closing    bool
}

func newSession(ed *editor.Editor, th *theme.Theme, mode Mode) *session {
	if th == nil {
		th = theme.Default()
	}
	s := &session{
		ed:          ed,
		th:          th,
		mode:        mode,
		face:        render.NewFontBook().Face(render.Font{Family: "Arial", Size: 14}),
		log:         logrus.WithField("component", "appstate"),
		now:         time.Now,
		hover:       -1,
		templateIdx: -1,
		maxStroke:   8,
	}
	s.configure()
	s.resize(s.windowSize())
	return s
}

// windowSize fits the preview plus chrome.
func (s *session) windowSize() (int, int) {
	doc := s.ed.Document()
	dw, dh := preview.DisplaySize(doc.Width, doc.Height, s.ed.Config().MaxDisplayWidth)
	w := int(math.Ceil(dw)) + 2*margin
	if w < minWidth {
		w = minWidth
	}
	h := statusHeight + int(math.Ceil(dh)) + 2*margin + bottomHeight
	return w, h
}

func (s *session) resize(w, h int) {
	s.width, s.height = w, h
	layoutShortcuts(s.shortcuts, h-bottomHeight, w)
}

// origin is the top-left of the preview, centred horizontally.
func (s *session) origin() image.Point {
	doc := s.ed.Document()
	dw, _ := preview.DisplaySize(doc.Width, doc.Height, s.ed.Config().MaxDisplayWidth)
	x := (s.width - int(math.Round(dw))) / 2
	if x < margin {
		x = margin
	}
	return image.Pt(x, statusHeight+margin)
}

func (s *session) viewport() interact.Viewport {
	return s.ed.Viewport(s.origin())
}

func (s *session) register(name, label string, keys KeyboardShortcuts, fn func()) {
	s.actions[name] = fn
	if keys != nil {
		for _, sc := range keys.KeyboardShortcuts() {
			s.keys[sc] = name
		}
	}
	if label != "" {
		s.shortcuts = append(s.shortcuts, Shortcut{label: label, action: name, theme: s.th, fire: s.run})
	}
}

// configure binds the actions available in the current mode.
func (s *session) configure() {
	s.actions = map[string]func(){}
	s.keys = map[KeyShortcut]string{}
	s.shortcuts = nil

	if s.mode == ModeEdit {
		s.register("add", "a:Text", shortcutList{{Rune: 'a'}}, func() { s.ed.AddText(editor.DefaultText) })
		quick := assets.QuickTexts()
		for i := range quick {
			if i >= 8 {
				break
			}
			text := quick[i]
			s.register(fmt.Sprintf("quick%d", i+1), "", shortcutList{{Rune: rune('1' + i)}}, func() { s.ed.AddText(text) })
		}
		s.register("quick", "1-8:Quick", nil, s.nextQuickText)
		s.register("remove", "Del:Remove", shortcutList{{Code: key.CodeDeleteForward}, {Code: key.CodeDeleteBackspace}}, s.removeSelected)
		s.register("bigger", "+/-:Size", shortcutList{{Rune: '+'}, {Rune: '='}}, func() { s.stepFontSize(fontSizeStep) })
		s.register("smaller", "", shortcutList{{Rune: '-'}}, func() { s.stepFontSize(-fontSizeStep) })
		s.register("family", "f:Font", shortcutList{{Rune: 'f'}}, s.cycleFamily)
		s.register("stroke", "w:Stroke", shortcutList{{Rune: 'w'}}, s.cycleStroke)
		s.register("edit", "e:Edit", shortcutList{{Rune: 'e'}}, s.beginEdit)
		s.register("prevTemplate", "", shortcutList{{Rune: '['}}, func() { s.stepTemplate(-1) })
		s.register("nextTemplate", "[ ]:Template", shortcutList{{Rune: ']'}}, func() { s.stepTemplate(1) })
		s.register("paste", "v:Paste", shortcutList{{Rune: 'v'}}, s.pasteBackground)
	}
	s.register("save", "s:Save", shortcutList{{Rune: 's'}}, s.save)
	s.register("download", "d:Download", shortcutList{{Rune: 'd'}}, s.download)
	s.register("copy", "c:Copy", shortcutList{{Rune: 'c'}}, s.copy)
	s.register("quit", "q:Quit", shortcutList{{Rune: 'q'}, {Code: key.CodeEscape}}, func() { s.closing = true })
}

func (s *session) run(name string) {
	if fn, ok := s.actions[name]; ok {
		fn()
	}
}

func (s *session) setMessage(msg string, isErr bool) {
	s.message = msg
	s.messageErr = isErr
	s.messageUntil = s.now().Add(messageDuration)
	if s.wake != nil {
		s.wake(messageDuration)
	}
}

func (s *session) fail(action string, err error) {
	if errors.Is(err, editor.ErrNoBackground) {
		s.setMessage("Load a background first", true)
		return
	}
	s.log.WithError(err).WithField("action", action).Warn("action failed")
	s.setMessage(fmt.Sprintf("%s failed: %v", action, err), true)
}

func (s *session) selected() (layers.Annotation, bool) {
	id := s.ed.Selected()
	if id == "" {
		return layers.Annotation{}, false
	}
	return s.ed.Annotation(id)
}

func (s *session) nextQuickText() {
	quick := assets.QuickTexts()
	if len(quick) == 0 {
		return
	}
	s.ed.AddText(quick[s.quickIdx%len(quick)])
	s.quickIdx++
}

func (s *session) removeSelected() {
	if a, ok := s.selected(); ok {
		s.ed.RemoveText(a.ID)
	}
}

func (s *session) stepFontSize(delta float64) {
	a, ok := s.selected()
	if !ok {
		return
	}
	lo, hi := layers.FontSizeRange(s.ed.Document().Width)
	size := math.Max(lo, math.Min(hi, math.Round(a.FontSize)+delta))
	s.ed.UpdateText(a.ID, layers.WithFontSize(size))
}

func (s *session) cycleFamily() {
	a, ok := s.selected()
	if !ok {
		return
	}
	families := assets.FontFamilies()
	if len(families) == 0 {
		families = render.Families
	}
	next := families[0]
	for i, f := range families {
		if strings.EqualFold(f, a.FontFamily) {
			next = families[(i+1)%len(families)]
			break
		}
	}
	s.ed.UpdateText(a.ID, layers.WithFontFamily(next))
}

func (s *session) cycleStroke() {
	a, ok := s.selected()
	if !ok {
		return
	}
	next := math.Floor(a.StrokeWidth) + 1
	if next > s.maxStroke {
		next = 0
	}
	s.ed.UpdateText(a.ID, layers.WithStrokeWidth(next))
}

func (s *session) beginEdit() {
	a, ok := s.selected()
	if !ok {
		return
	}
	s.editing = true
	s.input = a.Content
}

func (s *session) commitEdit() {
	if !s.editing {
		return
	}
	s.editing = false
	if a, ok := s.selected(); ok {
		s.ed.UpdateText(a.ID, layers.WithContent(s.input))
	}
	s.input = ""
}

func (s *session) stepTemplate(dir int) {
	tmpls := assets.Templates()
	if len(tmpls) == 0 {
		return
	}
	switch {
	case s.templateIdx >= 0:
		s.templateIdx = (s.templateIdx + dir + len(tmpls)) % len(tmpls)
	case dir < 0:
		s.templateIdx = len(tmpls) - 1
	default:
		s.templateIdx = 0
	}
	t := tmpls[s.templateIdx]
	s.startLoad(editor.FromURL(t.URL), t.Title)
}

func (s *session) pasteBackground() {
	if s.paste == nil {
		s.setMessage("Paste unavailable", true)
		return
	}
	img, err := s.paste()
	if err != nil {
		s.fail("Paste", err)
		return
	}
	s.startLoad(editor.FromImage("clipboard", img), "clipboard image")
}

func (s *session) startLoad(src editor.Source, label string) {
	if s.load == nil {
		return
	}
	s.setMessage("Loading "+label, false)
	s.load(src, label)
}

func (s *session) loaded(ev loadedEvent) {
	switch {
	case errors.Is(ev.err, editor.ErrSuperseded):
	case ev.err != nil:
		s.fail("Load", ev.err)
	case ev.applied:
		s.dragging = false
		s.touching = false
		s.setMessage("Loaded "+ev.label, false)
	}
}

func (s *session) save() {
	if _, err := s.ed.Save(); err != nil {
		s.fail("Save", err)
		return
	}
	s.setMessage("Saved", false)
}

func (s *session) download() {
	path, err := s.ed.DownloadTo(s.downloadDir)
	if err != nil {
		s.fail("Download", err)
		return
	}
	if s.onDownload != nil {
		s.onDownload(path)
	}
	s.setMessage("Downloaded "+path, false)
}

func (s *session) copy() {
	if err := s.ed.Copy(); err != nil {
		s.fail("Copy", err)
		return
	}
	if s.onCopy != nil {
		s.onCopy(s.ed.Frame())
	}
	s.setMessage("Copied to clipboard", false)
}

// handleKey reports whether the window needs repainting.
func (s *session) handleKey(e key.Event) bool {
	if e.Direction != key.DirPress && e.Direction != key.DirNone {
		return false
	}
	if s.editing {
		return s.editKey(e)
	}
	name, ok := s.lookup(e)
	if !ok {
		return false
	}
	s.run(name)
	return true
}

func (s *session) lookup(e key.Event) (string, bool) {
	if e.Rune > 0 {
		if name, ok := s.keys[KeyShortcut{Rune: unicode.ToLower(e.Rune)}]; ok {
			return name, true
		}
	}
	name, ok := s.keys[KeyShortcut{Code: e.Code}]
	return name, ok
}

func (s *session) editKey(e key.Event) bool {
	switch e.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		s.commitEdit()
	case key.CodeEscape:
		s.editing = false
		s.input = ""
	case key.CodeDeleteBackspace:
		if s.input == "" {
			return false
		}
		_, n := utf8.DecodeLastRuneInString(s.input)
		s.input = s.input[:len(s.input)-n]
	default:
		if e.Rune < 0 || !unicode.IsPrint(e.Rune) {
			return false
		}
		s.input += string(e.Rune)
	}
	return true
}

// handleMouse reports whether the window needs repainting.
func (s *session) handleMouse(e mouse.Event) bool {
	p := image.Pt(int(e.X), int(e.Y))
	if e.Direction == mouse.DirPress && s.message != "" && s.now().Before(s.messageUntil) {
		s.messageUntil = time.Time{}
		if p.Y < statusHeight {
			return true
		}
	}
	if p.Y >= s.height-bottomHeight && !s.dragging {
		prev := s.hover
		s.hover = -1
		for i := range s.shortcuts {
			if p.In(s.shortcuts[i].Rect()) {
				s.hover = i
				if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					s.shortcuts[i].Activate()
					return true
				}
				break
			}
		}
		return prev != s.hover
	}
	if s.hover != -1 {
		s.hover = -1
	}
	if s.mode != ModeEdit {
		return false
	}
	ev := interact.Event{ClientX: float64(e.X), ClientY: float64(e.Y)}
	switch {
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		s.commitEdit()
		ev.Phase = interact.PhaseStart
		s.ed.Pointer(ev, s.viewport())
		s.dragging = s.ed.Gesture().Kind == interact.Dragging
		return true
	case e.Direction == mouse.DirNone && s.dragging:
		ev.Phase = interact.PhaseMove
		return s.ed.Pointer(ev, s.viewport())
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		ev.Phase = interact.PhaseEnd
		s.ed.Pointer(ev, s.viewport())
		s.dragging = false
	}
	return false
}

// handleTouch follows the first finger down and ignores the rest.
func (s *session) handleTouch(e touch.Event) bool {
	if s.mode != ModeEdit {
		return false
	}
	pt := []interact.Point{{X: float64(e.X), Y: float64(e.Y)}}
	switch e.Type {
	case touch.TypeBegin:
		if s.touching {
			return false
		}
		s.commitEdit()
		s.touching = true
		s.touchSeq = e.Sequence
		s.ed.Pointer(interact.Event{Phase: interact.PhaseStart, Touches: pt}, s.viewport())
		return true
	case touch.TypeMove:
		if !s.touching || e.Sequence != s.touchSeq {
			return false
		}
		return s.ed.Pointer(interact.Event{Phase: interact.PhaseMove, Touches: pt}, s.viewport())
	case touch.TypeEnd:
		if !s.touching || e.Sequence != s.touchSeq {
			return false
		}
		s.touching = false
		s.ed.Pointer(interact.Event{Phase: interact.PhaseEnd, Touches: []interact.Point{}}, s.viewport())
	}
	return false
}

// status is the text of the top line.
func (s *session) status() string {
	parts := []string{s.ed.Caption()}
	if a, ok := s.selected(); ok && s.mode == ModeEdit {
		if s.editing {
			parts = append(parts, "Edit: "+s.input+"_")
		} else {
			parts = append(parts, fmt.Sprintf("%q %s %.0fpx stroke %.0f", a.Content, a.FontFamily, a.FontSize, a.StrokeWidth))
		}
	}
	return strings.Join(parts, "  |  ")
}

func (s *session) draw(dst *image.RGBA) {
	r := dst.Bounds()
	fill(dst, r, s.th.Background)

	vp := s.viewport()
	preview.Draw(dst, s.ed.Frame(), vp)
	b := preview.Bounds(vp)
	drawRect(dst, b.Inset(-1), s.th.ButtonBorder)

	if s.mode == ModeEdit {
		if id := s.ed.Selected(); id != "" {
			if minX, minY, maxX, maxY, ok := s.ed.Box(id); ok {
				lo := vp.ToDisplay(interact.Point{X: minX, Y: minY})
				hi := vp.ToDisplay(interact.Point{X: maxX, Y: maxY})
				sel := image.Rect(int(lo.X)-2, int(lo.Y)-2, int(math.Ceil(hi.X))+2, int(math.Ceil(hi.Y))+2)
				drawDashedRect(dst, sel.Intersect(b.Inset(-3)), 4, s.th.Selection, s.th.Background)
			}
		}
	}

	top := image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+statusHeight)
	fill(dst, top, s.th.StatusBackground)
	baseline := top.Min.Y + 17
	drawLabel(dst, s.face, top.Min.X+8, baseline, s.status(), s.th.StatusText)
	if s.message != "" && s.now().Before(s.messageUntil) {
		var col color.Color = s.th.StatusText
		if s.messageErr {
			col = s.th.StatusError
		}
		w := font.MeasureString(s.face, s.message).Ceil()
		x := top.Max.X - w - 8
		fill(dst, image.Rect(x-6, top.Min.Y, top.Max.X, top.Max.Y), s.th.StatusBackground)
		drawLabel(dst, s.face, x, baseline, s.message, col)
	}

	bottom := image.Rect(r.Min.X, r.Max.Y-bottomHeight, r.Max.X, r.Max.Y)
	fill(dst, bottom, s.th.ToolbarBackground)
	for i := range s.shortcuts {
		state := StateDefault
		if i == s.hover {
			state = StateHover
		}
		s.shortcuts[i].Draw(dst, state)
	}
}
