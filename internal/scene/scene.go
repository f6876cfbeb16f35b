// Package scene reads headless render descriptions: a background source plus
// the annotations to place on it.
package scene

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/example/memecanvas/internal/editor"
	"github.com/example/memecanvas/internal/layers"
)

//go:embed scene.schema.json
var schema []byte

// Schema returns the JSON Schema scenes are validated against.
func Schema() []byte { return schema }

// Background names exactly one image source.
type Background struct {
	File     string `json:"file,omitempty"`
	URL      string `json:"url,omitempty"`
	Template string `json:"template,omitempty"`
}

// Annotation is a text layer. Unset fields take the editor defaults.
type Annotation struct {
	Content     string   `json:"content"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty"`
	FontFamily  string   `json:"fontFamily,omitempty"`
	Fill        string   `json:"fill,omitempty"`
	Stroke      string   `json:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
}

// Scene is a complete render request.
type Scene struct {
	Background  Background   `json:"background"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// ValidationError lists every schema violation in a scene document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid scene: " + strings.Join(e.Problems, "; ")
}

// Parse validates data against the scene schema and decodes it.
func Parse(data []byte) (*Scene, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate scene: %w", err)
	}
	if !result.Valid() {
		ve := &ValidationError{}
		for _, e := range result.Errors() {
			ve.Problems = append(ve.Problems, e.String())
		}
		return nil, ve
	}
	var sc Scene
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &sc, nil
}

// TemplateURL resolves a template id to its image URL.
type TemplateURL func(id string) (string, bool)

// Source returns the editor source for the background.
func (b Background) Source(templates TemplateURL) (editor.Source, error) {
	switch {
	case b.File != "":
		return editor.FromFile(b.File), nil
	case b.URL != "":
		return editor.FromURL(b.URL), nil
	case b.Template != "":
		if templates == nil {
			return nil, fmt.Errorf("no template catalog for %q", b.Template)
		}
		url, ok := templates(b.Template)
		if !ok {
			return nil, fmt.Errorf("unknown template %q", b.Template)
		}
		return editor.FromURL(url), nil
	}
	return nil, fmt.Errorf("scene has no background")
}

// Changes converts the explicitly set fields into store updates.
func (a Annotation) Changes() ([]layers.Change, error) {
	var out []layers.Change
	if a.X != nil || a.Y != nil {
		x, y := a.X, a.Y
		out = append(out, func(cur layers.Annotation) layers.Annotation {
			if x != nil {
				cur.X = *x
			}
			if y != nil {
				cur.Y = *y
			}
			return cur
		})
	}
	if a.FontSize != nil {
		out = append(out, layers.WithFontSize(*a.FontSize))
	}
	if a.FontFamily != "" {
		out = append(out, layers.WithFontFamily(a.FontFamily))
	}
	for _, c := range []struct {
		field layers.Field
		value string
	}{{layers.FieldFill, a.Fill}, {layers.FieldStroke, a.Stroke}} {
		if c.value == "" {
			continue
		}
		ch, err := layers.ParseChange(c.field, c.value)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	if a.StrokeWidth != nil {
		out = append(out, layers.WithStrokeWidth(*a.StrokeWidth))
	}
	return out, nil
}

// Apply loads the background into ed and adds the annotations in order.
func (sc *Scene) Apply(ctx context.Context, ed *editor.Editor, templates TemplateURL) error {
	src, err := sc.Background.Source(templates)
	if err != nil {
		return err
	}
	if err := ed.Load(ctx, src); err != nil {
		return err
	}
	for i, a := range sc.Annotations {
		changes, err := a.Changes()
		if err != nil {
			return fmt.Errorf("annotation %d: %w", i, err)
		}
		id := ed.AddText(a.Content)
		for _, ch := range changes {
			ed.UpdateText(id, ch)
		}
	}
	return nil
}
