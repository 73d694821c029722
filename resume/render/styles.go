package render

import (
	"html/template"
	"strconv"
)

// Theme is the palette and type scale one template variant renders with.
type Theme struct {
	Font        string
	Text        string
	Accent      string
	Muted       string
	NameSize    int
	HeadingSize int
	BodySize    int
}

var themes = map[string]Theme{
	"classic": {
		Font:        `Georgia, "Times New Roman", serif`,
		Text:        "#111111",
		Accent:      "#1F2937",
		Muted:       "#4B5563",
		NameSize:    32,
		HeadingSize: 18,
		BodySize:    13,
	},
	"modern": {
		Font:        `"Helvetica Neue", Arial, sans-serif`,
		Text:        "#0F172A",
		Accent:      "#2563EB",
		Muted:       "#64748B",
		NameSize:    30,
		HeadingSize: 16,
		BodySize:    13,
	},
	"compact": {
		Font:        `"Segoe UI", Roboto, sans-serif`,
		Text:        "#1A1A1A",
		Accent:      "#047857",
		Muted:       "#525252",
		NameSize:    24,
		HeadingSize: 14,
		BodySize:    11,
	},
}

// css renders the theme as custom properties consumed by base.html.
func (t Theme) css() template.CSS {
	return template.CSS("--font:" + t.Font +
		";--text:" + t.Text +
		";--accent:" + t.Accent +
		";--muted:" + t.Muted +
		";--name-size:" + strconv.Itoa(t.NameSize) + "px" +
		";--heading-size:" + strconv.Itoa(t.HeadingSize) + "px" +
		";--body-size:" + strconv.Itoa(t.BodySize) + "px")
}
