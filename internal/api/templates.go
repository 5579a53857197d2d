package api

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/meur/wakfudex/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"rarityIcon": catalog.RarityIcon,
	"query": func(f catalog.Filter) template.URL {
		return template.URL(f.Values().Encode())
	},
	"title":      title,
	"rangeLabel": rangeLabel,
}

func rangeLabel(r string) string {
	if r == catalog.AllOption {
		return "All Levels"
	}
	return "Level " + r
}

// title upper-cases the first rune
func title(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var baseTemplates = template.Must(template.New("base").Funcs(funcs).ParseFS(templateFS,
	"templates/layout.html",
	"templates/partials.html",
))

var pageTemplates = func() map[string]*template.Template {
	pages := map[string]*template.Template{}
	for _, name := range []string{"home", "changelog", "dungeons", "dungeon", "sublimations"} {
		t := template.Must(baseTemplates.Clone())
		pages[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return pages
}()

// pageData is the layout model shared by every full page
type pageData struct {
	Title            string
	Nav              string // active sidebar entry
	SidebarCollapsed bool
	Content          any
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name, title string, content any) {
	t, ok := s.pages[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	data := pageData{
		Title:            title,
		Nav:              name,
		SidebarCollapsed: sidebarCollapsed(r),
		Content:          content,
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("Warning: render %s: %v", name, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) renderFragment(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Warning: render fragment %s: %v", name, err)
		http.Error(w, "Failed to render fragment", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
