package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"resume-builder/resume/model"
)

// PreviewSelector addresses the root node every variant renders.
const PreviewSelector = "#resume-preview"

// ErrUnknownTemplate is returned for template ids with no variant.
var ErrUnknownTemplate = errors.New("unknown template")

//go:embed templates/*.html
var templateFiles embed.FS

var variants = mustLoad()

type view struct {
	model.Resume
	Title string
	Theme template.CSS
}

func mustLoad() map[string]*template.Template {
	base := template.Must(template.New("resume").Funcs(template.FuncMap{
		"dateRange": dateRange,
		"nonEmpty":  nonEmpty,
	}).ParseFS(templateFiles, "templates/*.html"))

	out := make(map[string]*template.Template, len(themes))
	for id := range themes {
		t := template.Must(base.Clone())
		template.Must(t.New("variant").Parse(`{{template "` + id + `" .}}`))
		out[id] = t
	}
	return out
}

// Templates lists the variant ids in stable order.
func Templates() []string {
	ids := make([]string, 0, len(variants))
	for id := range variants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether templateID names a variant.
func Has(templateID string) bool {
	_, ok := variants[templateID]
	return ok
}

// Render writes a standalone HTML document for r using the templateID
// variant. The input is normalized first and never modified.
func Render(w io.Writer, templateID string, r model.Resume) error {
	t, ok := variants[templateID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, templateID)
	}
	v := view{
		Resume: r.Normalized(),
		Title:  title(r),
		Theme:  themes[templateID].css(),
	}
	return t.ExecuteTemplate(w, "base", v)
}

// HTML is Render into a string.
func HTML(templateID string, r model.Resume) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, templateID, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func title(r model.Resume) string {
	if name := strings.TrimSpace(r.PersonalDetail.Name); name != "" {
		return name + " · Resume"
	}
	if name := strings.TrimSpace(r.EditName); name != "" {
		return name
	}
	return "Resume"
}

func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start + " – Present"
	case start == "":
		return end
	default:
		return start + " – " + end
	}
}

func nonEmpty(items []string) []string {
	var out []string
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
