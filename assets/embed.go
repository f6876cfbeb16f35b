// Package assets carries the built-in template catalog.
package assets

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Template is a stock background.
type Template struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	URL    string `yaml:"url"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Catalog is the built-in content offered by the editor.
type Catalog struct {
	Templates    []Template `yaml:"templates"`
	QuickTexts   []string   `yaml:"quick_texts"`
	FontFamilies []string   `yaml:"font_families"`
}

var (
	loadCatalogOnce sync.Once
	loadCatalogErr  error
	catalog         Catalog
)

func loadCatalog() {
	loadCatalogErr = yaml.Unmarshal(catalogYAML, &catalog)
	if loadCatalogErr == nil && len(catalog.Templates) == 0 {
		loadCatalogErr = fmt.Errorf("catalog has no templates")
	}
}

// Load returns the embedded catalog.
func Load() (Catalog, error) {
	loadCatalogOnce.Do(loadCatalog)
	return catalog, loadCatalogErr
}

// Templates lists the stock backgrounds in catalog order.
func Templates() []Template {
	c, err := Load()
	if err != nil {
		return nil
	}
	return append([]Template(nil), c.Templates...)
}

// Lookup finds a template by id.
func Lookup(id string) (Template, bool) {
	for _, t := range Templates() {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// TemplateURL resolves a template id to its image URL.
func TemplateURL(id string) (string, bool) {
	t, ok := Lookup(id)
	return t.URL, ok
}

// Search returns templates whose title contains query, ignoring case. An
// empty query matches everything.
func Search(query string) []Template {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Template
	for _, t := range Templates() {
		if q == "" || strings.Contains(strings.ToLower(t.Title), q) {
			out = append(out, t)
		}
	}
	return out
}

// QuickTexts lists the preset captions.
func QuickTexts() []string {
	c, err := Load()
	if err != nil {
		return nil
	}
	return append([]string(nil), c.QuickTexts...)
}

// FontFamilies lists the families offered by the editor.
func FontFamilies() []string {
	c, err := Load()
	if err != nil {
		return nil
	}
	return append([]string(nil), c.FontFamilies...)
}
