package templates

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"resume-builder/resume/render"
)

// ErrNotFound is returned for template ids outside the catalog.
var ErrNotFound = errors.New("template not found")

//go:embed templates.yaml
var catalogYAML []byte

// Template describes one selectable resume design.
type Template struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
}

// PreviewKey is the blob storage key of the gallery image.
func (t Template) PreviewKey() string {
	return "templates/" + t.ID + "/imageUrl"
}

// Catalog is the ordered list of templates offered in the gallery.
type Catalog struct {
	items []Template
	byID  map[string]Template
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses a catalog document and checks every entry has a renderer.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var doc struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}
	c := &Catalog{byID: make(map[string]Template, len(doc.Templates))}
	for _, t := range doc.Templates {
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("template catalog: id and name are required")
		}
		if !render.Has(t.ID) {
			return nil, fmt.Errorf("template catalog: no renderer for %q", t.ID)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("template catalog: duplicate id %q", t.ID)
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}
		c.items = append(c.items, t)
		c.byID[t.ID] = t
	}
	return c, nil
}

// List returns the templates in catalog order.
func (c *Catalog) List() []Template {
	out := make([]Template, len(c.items))
	copy(out, c.items)
	return out
}

// Get looks a template up by id.
func (c *Catalog) Get(id string) (Template, error) {
	t, ok := c.byID[id]
	if !ok {
		return Template{}, ErrNotFound
	}
	return t, nil
}
