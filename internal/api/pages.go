package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/meur/wakfudex/internal/changelog"
	"github.com/meur/wakfudex/internal/dungeons"
)

const sidebarCookie = "sidebar_collapsed"

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "home", "Wakfu Guides & Resources", nil)
}

func (s *Server) handleChangelog(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "changelog", "Changelog", struct {
		Entries []changelog.Entry
	}{s.changelog})
}

type dungeonsView struct {
	Query    string
	Brackets []dungeons.BracketView
}

// handleDungeons renders the bracket list; htmx searches get the list fragment only
func (s *Server) handleDungeons(w http.ResponseWriter, r *http.Request) {
	view := dungeonsView{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if s.dungeons != nil {
		view.Brackets = s.dungeons.Search(view.Query)
	}

	if isHTMX(r) {
		s.renderFragment(w, "brackets", view)
		return
	}
	s.renderPage(w, r, "dungeons", "Dungeons", view)
}

func (s *Server) handleDungeon(w http.ResponseWriter, r *http.Request) {
	if s.dungeons == nil {
		http.NotFound(w, r)
		return
	}
	dg, ok := s.dungeons.Find(chi.URLParam(r, "slug"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.renderPage(w, r, "dungeon", dg.Name, dg)
}

// handleToggleSidebar flips the persisted sidebar preference
func (s *Server) handleToggleSidebar(w http.ResponseWriter, r *http.Request) {
	collapsed := !sidebarCollapsed(r)
	http.SetCookie(w, &http.Cookie{
		Name:     sidebarCookie,
		Value:    boolString(collapsed),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	})

	if isHTMX(r) {
		s.renderFragment(w, "sidebar", pageData{
			Nav:              r.FormValue("nav"),
			SidebarCollapsed: collapsed,
		})
		return
	}
	back := r.Referer()
	if back == "" {
		back = "/"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func sidebarCollapsed(r *http.Request) bool {
	c, err := r.Cookie(sidebarCookie)
	return err == nil && c.Value == "true"
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
