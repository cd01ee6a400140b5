package page

import (
	"embed"
	htmltemplate "html/template"
	"io"
	texttemplate "text/template"
)

// IconPrefix is where weather icons are served from
const IconPrefix = "/assets/images/weather_icons/"

//go:embed templates/*.tmpl
var templateFS embed.FS

var arrows = []string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

// IconURL returns the image path for an API icon code
func IconURL(code string) string {
	return IconPrefix + code + ".png"
}

// Arrow returns the compass arrow for an up-pointing arrow rotated by deg clockwise
func Arrow(deg int) string {
	norm := ((deg % 360) + 360) % 360
	return arrows[((norm+22)/45)%len(arrows)]
}

// HTMLView renders snapshots as the HTML page
type HTMLView struct {
	tmpl *htmltemplate.Template
}

// NewHTMLView parses the embedded HTML template
func NewHTMLView() *HTMLView {
	tmpl := htmltemplate.Must(htmltemplate.New("").
		Funcs(htmltemplate.FuncMap{"icon": IconURL}).
		ParseFS(templateFS, "templates/page.html.tmpl"))
	return &HTMLView{tmpl: tmpl}
}

// Render writes the page for s
func (v *HTMLView) Render(w io.Writer, s Snapshot) error {
	return v.tmpl.ExecuteTemplate(w, "page", s)
}

// TextView renders snapshots for a terminal
type TextView struct {
	tmpl *texttemplate.Template
}

// NewTextView parses the embedded text template
func NewTextView() *TextView {
	tmpl := texttemplate.Must(texttemplate.New("").
		Funcs(texttemplate.FuncMap{"arrow": Arrow}).
		ParseFS(templateFS, "templates/page.txt.tmpl"))
	return &TextView{tmpl: tmpl}
}

// Render writes the page for s
func (v *TextView) Render(w io.Writer, s Snapshot) error {
	return v.tmpl.ExecuteTemplate(w, "page", s)
}
