package api

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/meur/wakfudex/internal/catalog"
	"github.com/meur/wakfudex/internal/changelog"
	"github.com/meur/wakfudex/internal/dungeons"
	"github.com/meur/wakfudex/internal/session"
)

// Options wires the loaded data into a Server
type Options struct {
	Catalog        *catalog.Catalog // nil when neither the source nor the fallback could be loaded
	LoadErr        error
	References     catalog.References
	Sessions       session.Store[session.Visitor]
	Dungeons       *dungeons.Directory
	Changelog      []changelog.Entry
	AllowedOrigins []string
}

// Server holds the HTTP server dependencies
type Server struct {
	catalog   *catalog.Catalog
	loadErr   error
	refs      catalog.References
	sessions  session.Store[session.Visitor]
	dungeons  *dungeons.Directory
	changelog []changelog.Entry
	origins   []string
	pages     map[string]*template.Template
	fragments *template.Template
	router    chi.Router
}

// New creates a new site server
func New(opts Options) *Server {
	s := &Server{
		catalog:   opts.Catalog,
		loadErr:   opts.LoadErr,
		refs:      opts.References,
		sessions:  opts.Sessions,
		dungeons:  opts.Dungeons,
		changelog: opts.Changelog,
		origins:   opts.AllowedOrigins,
		pages:     pageTemplates,
		fragments: baseTemplates,
		router:    chi.NewRouter(),
	}
	if s.sessions == nil {
		s.sessions = session.NewMemoryStore[session.Visitor]()
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the chi router so callers can mount extra handlers, e.g. static files.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handleHome)
	s.router.Get("/changelog", s.handleChangelog)
	s.router.Get("/dungeons", s.handleDungeons)
	s.router.Get("/dungeons/{slug}", s.handleDungeon)

	// Sublimations
	s.router.Get("/sublimations", s.handleSublimations)
	s.router.Get("/sublimations/cards", s.handleCards)
	s.router.Post("/sublimations/level", s.handleSetLevel)
	s.router.Get("/sublimations/export.xlsx", s.handleExport)

	s.router.Post("/prefs/sidebar", s.handleToggleSidebar)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/sublimations", s.handleGetSublimations)
		r.Get("/facets", s.handleGetFacets)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
