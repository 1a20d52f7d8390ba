package layout

import (
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"
)

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"css": func(s string) template.CSS { return template.CSS(s) },
	"src": safeURL,
	"ms":  func(d time.Duration) int64 { return d.Milliseconds() },
}

// safeURL lets remote media and inline bitmaps or audio through the
// template escaper. Anything else is replaced.
func safeURL(s string) template.URL {
	switch {
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "/"):
		return template.URL(s)
	case strings.HasPrefix(s, "data:image/"), strings.HasPrefix(s, "data:audio/"):
		return template.URL(s)
	}
	return template.URL("about:blank")
}

func NewRenderer(fsys fs.FS) (*Renderer, error) {
	tmpl, err := template.New("glow").Funcs(funcs).ParseFS(fsys, "web/templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// HTML writes the full invitation page.
func (r *Renderer) HTML(w io.Writer, p Page) error {
	return r.tmpl.ExecuteTemplate(w, "invitation.html", p)
}

// Execute renders any other named page template.
func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}
