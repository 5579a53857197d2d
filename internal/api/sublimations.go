package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/meur/wakfudex/internal/catalog"
	"github.com/meur/wakfudex/internal/models"
	"github.com/meur/wakfudex/internal/session"
)

const sessionCookie = "wakfudex_sid"

var errNoCatalog = errors.New("sublimation data is unavailable")

// sublimationsView is the model of the sublimation page and its card list
type sublimationsView struct {
	Error       string
	Fallback    bool
	Filter      catalog.Filter
	Categories  []string
	LevelRanges []string
	Rarities    []models.Rarity
	Cards       []catalog.Card
	Total       int
}

func (s *Server) handleSublimations(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.renderPage(w, r, "sublimations", "Sublimations", sublimationsView{Error: s.loadError().Error()})
		return
	}
	s.renderPage(w, r, "sublimations", "Sublimations", s.sublimationsView(r))
}

// handleCards re-runs the filter pass and returns the full card list fragment
func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.renderFragment(w, "error-panel", sublimationsView{Error: s.loadError().Error()})
		return
	}
	s.renderFragment(w, "cards", s.sublimationsView(r))
}

func (s *Server) sublimationsView(r *http.Request) sublimationsView {
	f := catalog.ParseFilter(r.URL.Query())
	levels := s.visitorLevels(r)
	return sublimationsView{
		Fallback:    s.catalog.Fallback(),
		Filter:      f,
		Categories:  s.catalog.Categories(),
		LevelRanges: s.catalog.LevelRanges(),
		Rarities:    models.AllRarities(),
		Cards:       s.catalog.Cards(f, levels, s.refs),
		Total:       s.catalog.Len(),
	}
}

// handleSetLevel stores the visitor's level for one card and re-renders that card's
// description and readout. The card list is not filtered again.
func (s *Server) handleSetLevel(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		http.Error(w, s.loadError().Error(), http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	rec, ok := s.catalog.Lookup(strings.TrimSpace(r.FormValue("name")))
	if !ok {
		http.Error(w, "unknown sublimation", http.StatusNotFound)
		return
	}
	if rec.Special() {
		http.Error(w, "sublimation has no level", http.StatusBadRequest)
		return
	}
	level, err := strconv.Atoi(strings.TrimSpace(r.FormValue("level")))
	if err != nil {
		http.Error(w, "invalid level", http.StatusBadRequest)
		return
	}

	id := s.ensureSession(w, r)
	visitor, err := s.sessions.Update(r.Context(), id, func(v session.Visitor) session.Visitor {
		levels := v.Levels.Clone()
		levels.Set(rec, level)
		v.Levels = levels
		return v
	})
	if err != nil {
		http.Error(w, "Failed to store level", http.StatusInternalServerError)
		return
	}

	card, _ := s.catalog.Card(rec.Name, visitor.LevelsOf(s.catalog), s.refs)
	s.renderFragment(w, "card-dynamic", card)
}

// --- JSON API ---

type apiSublimation struct {
	models.Sublimation
	ID         string `json:"id"`
	Level      int    `json:"level"`
	Computed   string `json:"computed_description"`
	Special    bool   `json:"special"`
	Link       string `json:"link,omitempty"`
	SourceIcon string `json:"source_icon,omitempty"`
}

func (s *Server) handleGetSublimations(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, s.loadError().Error())
		return
	}

	f := catalog.ParseFilter(r.URL.Query())
	levels := s.visitorLevels(r)
	cards := s.catalog.Cards(f, levels, s.refs)

	items := make([]apiSublimation, 0, len(cards))
	for _, card := range cards {
		rec, _ := s.catalog.Lookup(card.Name)
		item := apiSublimation{
			Sublimation: rec,
			ID:          card.ID,
			Level:       levels.Level(rec),
			Computed:    card.Description,
			Special:     card.Special,
			Link:        card.Link,
		}
		if card.Source != nil {
			item.SourceIcon = card.Source.Icon
		}
		items = append(items, item)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":       items,
		"total_count": len(items),
		"fallback":    s.catalog.Fallback(),
	})
}

func (s *Server) handleGetFacets(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, s.loadError().Error())
		return
	}
	respondJSON(w, http.StatusOK, s.catalog.FacetSet())
}

// --- Visitor state ---

// visitorLevels returns the visitor's selected levels without creating a session
func (s *Server) visitorLevels(r *http.Request) catalog.Levels {
	var v session.Visitor
	if id := sessionID(r); id != "" {
		if got, ok, err := s.sessions.Get(r.Context(), id); err == nil && ok {
			v = got
		}
	}
	return v.LevelsOf(s.catalog)
}

// ensureSession returns the visitor's session id. A cookie is only trusted when it
// holds a well-formed id the store still knows; otherwise a fresh id is issued.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if id := sessionID(r); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			if _, ok, err := s.sessions.Get(r.Context(), id); err == nil && ok {
				return id
			}
		}
	}
	id := s.sessions.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) loadError() error {
	if s.loadErr != nil {
		return s.loadErr
	}
	return errNoCatalog
}
