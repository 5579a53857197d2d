package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/meur/wakfudex/internal/api"
	"github.com/meur/wakfudex/internal/catalog"
	"github.com/meur/wakfudex/internal/changelog"
	"github.com/meur/wakfudex/internal/config"
	"github.com/meur/wakfudex/internal/dungeons"
	"github.com/meur/wakfudex/internal/session"
	"github.com/meur/wakfudex/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dirs, err := dungeons.Default()
	if err != nil {
		log.Fatalf("Failed to load dungeons: %v", err)
	}
	entries, err := changelog.Default()
	if err != nil {
		log.Fatalf("Failed to load changelog: %v", err)
	}

	ctx := context.Background()

	// Primary records and reference items load concurrently; serve once both settle
	var (
		wg      sync.WaitGroup
		cat     *catalog.Catalog
		loadErr error
		refs    *catalog.ReferenceIndex
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		loader := &catalog.Loader{Source: catalog.NewSource(cfg.Source, cfg.FetchTimeout)}
		cat, loadErr = loader.Load(ctx)
		if loadErr != nil {
			log.Printf("Error: %v", loadErr)
		}
	}()
	go func() {
		defer wg.Done()
		refs = loadReferences(cfg.DBPath, cfg.ReferenceURL)
	}()
	wg.Wait()

	srv := api.New(api.Options{
		Catalog:        cat,
		LoadErr:        loadErr,
		References:     refs,
		Sessions:       session.NewMemoryStore[session.Visitor](),
		Dungeons:       dirs,
		Changelog:      entries,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	FileServer(srv.Router(), "/static", http.Dir(cfg.StaticDir))

	log.Printf("🚀 Wakfudex starting on http://localhost:%s", cfg.Port)
	log.Printf("📦 Database: %s", cfg.DBPath)
	if cat != nil {
		log.Printf("📚 Sublimations: %d from %s (fallback: %v)", cat.Len(), cfg.Source, cat.Fallback())
	}
	log.Printf("🔗 Reference items: %d", refs.Len())

	if err := http.ListenAndServe(":"+cfg.Port, srv); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadReferences reads the imported reference items; any failure yields an empty index
func loadReferences(dbPath, pattern string) *catalog.ReferenceIndex {
	store, err := storage.New(dbPath)
	if err != nil {
		log.Printf("Warning: reference items unavailable: %v", err)
		return catalog.NewReferenceIndex(nil, pattern)
	}
	defer store.Close()

	items, err := store.GetReferenceItems()
	if err != nil {
		log.Printf("Warning: failed to read reference items: %v", err)
		return catalog.NewReferenceIndex(nil, pattern)
	}
	if version, _ := store.GetMeta("items_version"); version != "" {
		log.Printf("📖 Reference data version %s", version)
	}
	return catalog.NewReferenceIndex(items, pattern)
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
