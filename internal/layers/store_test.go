package layers

import (
	"image/color"
	"math"
	"testing"
)

func TestAddPlacesAtCentre(t *testing.T) {
	s := NewStore(400, 400, DefaultStyle())
	id := s.Add("WAGMI")
	a, ok := s.Get(id)
	if !ok {
		t.Fatalf("added annotation %s not found", id)
	}
	if a.X != 200 || a.Y != 200 {
		t.Fatalf("position %.1f,%.1f, want 200,200", a.X, a.Y)
	}
	if want := 400.0 / 12; a.FontSize != want {
		t.Fatalf("font size %v, want %v", a.FontSize, want)
	}
	if a.FontFamily != "Impact" || a.StrokeWidth != 2 {
		t.Fatalf("unexpected defaults %+v", a)
	}
}

func TestDefaultFontSizeClamp(t *testing.T) {
	cases := map[int]float64{100: 24, 288: 24, 300: 25, 576: 48, 1200: 48}
	for w, want := range cases {
		if got := DefaultFontSize(w, 24, 48); got != want {
			t.Errorf("DefaultFontSize(%d) = %v, want %v", w, got, want)
		}
	}
}

func TestFontSizeRange(t *testing.T) {
	if lo, hi := FontSizeRange(400); lo != 12 || hi != 72 {
		t.Fatalf("400px range %v..%v", lo, hi)
	}
	if _, hi := FontSizeRange(200); hi != 50 {
		t.Fatalf("200px upper bound %v, want 50", hi)
	}
	if _, hi := FontSizeRange(20); hi != 12 {
		t.Fatalf("tiny canvas upper bound %v, want 12", hi)
	}
}

func TestListIsPaintOrder(t *testing.T) {
	s := NewStore(300, 200, DefaultStyle())
	first := s.Add("one")
	second := s.Add("two")
	third := s.Add("three")
	got := s.List()
	if len(got) != 3 || got[0].ID != first || got[1].ID != second || got[2].ID != third {
		t.Fatalf("unexpected order %+v", got)
	}
	if first == second || second == third {
		t.Fatal("ids are not unique")
	}

	if !s.Remove(second) {
		t.Fatal("remove reported missing id")
	}
	got = s.List()
	if len(got) != 2 || got[0].ID != first || got[1].ID != third {
		t.Fatalf("order after remove %+v", got)
	}
}

func TestUpdateReplacesValue(t *testing.T) {
	s := NewStore(400, 400, DefaultStyle())
	id := s.Add("before")
	snapshot := s.List()

	if !s.Update(id, WithContent("after")) {
		t.Fatal("update reported missing id")
	}
	if snapshot[0].Content != "before" {
		t.Fatalf("earlier snapshot changed to %q", snapshot[0].Content)
	}
	a, _ := s.Get(id)
	if a.Content != "after" || a.ID != id {
		t.Fatalf("unexpected annotation %+v", a)
	}

	s.Update(id, func(a Annotation) Annotation {
		a.ID = "hijack"
		a.StrokeWidth = -4
		return a
	})
	a, ok := s.Get(id)
	if !ok || a.StrokeWidth != 0 {
		t.Fatalf("id or stroke invariant broken: %+v %v", a, ok)
	}
}

func TestUnknownIDIsNoop(t *testing.T) {
	s := NewStore(400, 400, DefaultStyle())
	s.Add("keep")
	before := s.List()
	if s.Update("missing", WithContent("x")) {
		t.Fatal("update of unknown id reported success")
	}
	if s.Remove("missing") {
		t.Fatal("remove of unknown id reported success")
	}
	if err := s.UpdateField("missing", FieldFill, "red"); err != nil {
		t.Fatalf("UpdateField on unknown id: %v", err)
	}
	after := s.List()
	if len(after) != 1 || after[0] != before[0] {
		t.Fatalf("store changed: %+v", after)
	}
}

func TestUpdateField(t *testing.T) {
	s := NewStore(400, 400, DefaultStyle())
	id := s.Add("gm")
	steps := []struct {
		field Field
		value string
	}{
		{FieldContent, "gn"},
		{FieldX, "10.5"},
		{FieldY, "-20"},
		{FieldFontSize, "40"},
		{FieldFontFamily, "Georgia"},
		{FieldFill, "#ff0"},
		{FieldStroke, "navy"},
		{FieldStrokeWidth, "6"},
	}
	for _, st := range steps {
		if err := s.UpdateField(id, st.field, st.value); err != nil {
			t.Fatalf("UpdateField(%s, %q): %v", st.field, st.value, err)
		}
	}
	a, _ := s.Get(id)
	want := Annotation{
		ID: id, Content: "gn", X: 10.5, Y: -20, FontSize: 40, FontFamily: "Georgia",
		Fill: color.RGBA{255, 255, 0, 255}, Stroke: color.RGBA{0, 0, 128, 255}, StrokeWidth: 6,
	}
	if a != want {
		t.Fatalf("got %+v\nwant %+v", a, want)
	}

	if err := s.UpdateField(id, FieldFontSize, "big"); err == nil {
		t.Fatal("expected error for non-numeric font size")
	}
	if err := s.UpdateField(id, "shadow", "1"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestUpdateFieldRejectsNonFinite(t *testing.T) {
	s := NewStore(400, 400, DefaultStyle())
	id := s.Add("gm")
	before, _ := s.Get(id)
	for _, field := range []Field{FieldX, FieldY, FieldFontSize, FieldStrokeWidth} {
		for _, v := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
			if err := s.UpdateField(id, field, v); err == nil {
				t.Errorf("UpdateField(%s, %q) accepted", field, v)
			}
		}
	}
	if after, _ := s.Get(id); after != before {
		t.Fatalf("annotation changed: %+v", after)
	}
}

func TestUpdateBoundsNumbers(t *testing.T) {
	s := NewStore(200, 200, DefaultStyle())
	id := s.Add("gm")
	before, _ := s.Get(id)

	s.Update(id, WithFontSize(5000))
	if a, _ := s.Get(id); a.FontSize != 50 {
		t.Fatalf("font size %v, want 50", a.FontSize)
	}
	s.Update(id, WithFontSize(1))
	if a, _ := s.Get(id); a.FontSize != 12 {
		t.Fatalf("font size %v, want 12", a.FontSize)
	}
	s.Update(id, WithStrokeWidth(120))
	if a, _ := s.Get(id); a.StrokeWidth != 8 {
		t.Fatalf("stroke %v, want 8", a.StrokeWidth)
	}

	nan := math.NaN()
	s.Update(id, func(a Annotation) Annotation {
		a.X, a.Y = nan, math.Inf(1)
		a.FontSize = nan
		a.StrokeWidth = nan
		return a
	})
	a, _ := s.Get(id)
	if a.X != before.X || a.Y != before.Y || a.FontSize != 12 || a.StrokeWidth != 8 {
		t.Fatalf("non-finite values stored: %+v", a)
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.RGBA{
		"#ffffff":   {255, 255, 255, 255},
		"#000":      {0, 0, 0, 255},
		"#11223344": {0x11, 0x22, 0x33, 0x44},
		"White":     {255, 255, 255, 255},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Errorf("ParseColor(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "#12", "blurple", "#gggggg"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) should fail", bad)
		}
	}
	if s := FormatColor(color.RGBA{1, 2, 3, 255}); s != "#010203" {
		t.Fatalf("FormatColor = %s", s)
	}
}
