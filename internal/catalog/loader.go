package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/meur/wakfudex/internal/models"
)

// ErrNoRecords is returned when a source decodes to an empty list
var ErrNoRecords = errors.New("no sublimation records")

// Source opens the raw JSON document of records
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// HTTPSource fetches the document over HTTP
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Open issues one GET; any non-2xx status is an error.
func (s HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.URL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: status %d", s.URL, resp.StatusCode)
	}
	return resp.Body, nil
}

func (s HTTPSource) String() string { return s.URL }

// FileSource reads the document from disk
type FileSource struct {
	Path string
}

func (s FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Clean(s.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	return f, nil
}

func (s FileSource) String() string { return s.Path }

// NewSource picks an HTTPSource for http(s) locations and a FileSource otherwise.
func NewSource(location string, timeout time.Duration) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return HTTPSource{URL: location, Client: &http.Client{Timeout: timeout}}
	}
	return FileSource{Path: location}
}

// Loader loads the catalog once, falling back to embedded data on failure
type Loader struct {
	Source   Source
	Fallback []byte // JSON array; FallbackData() when nil
}

// Load reads the primary source. On any failure it logs the cause and decodes the
// fallback dataset instead; only a fallback decode failure is returned.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	if l.Source != nil {
		records, err := l.loadPrimary(ctx)
		if err == nil {
			for _, problem := range ValidateAll(records) {
				log.Printf("Warning: %s", problem)
			}
			return NewCatalog(records, false), nil
		}
		log.Printf("Warning: error loading %s, using fallback data: %v", l.Source, err)
	}

	data := l.Fallback
	if data == nil {
		data = FallbackData()
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback data: %w", err)
	}
	return NewCatalog(records, true), nil
}

func (l *Loader) loadPrimary(ctx context.Context) ([]models.Sublimation, error) {
	rc, err := l.Source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.Source, err)
	}
	return Decode(data)
}

// Decode parses a JSON array of records in the superset schema.
func Decode(data []byte) ([]models.Sublimation, error) {
	var records []models.Sublimation
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse sublimations: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	inheritSources(records)
	return records, nil
}

// inheritSources gives a record without a source the last source seen before it.
// Legacy data only names the source on the first record of a run.
func inheritSources(records []models.Sublimation) {
	var last models.Obtention
	for i := range records {
		if records[i].HasSource() {
			last = records[i].Obtention
			continue
		}
		if last.Name != "" {
			records[i].Obtention = last
		}
	}
}
