package catalog

import (
	"strconv"
	"strings"

	"github.com/meur/wakfudex/internal/models"
)

// DefaultReferenceURL is the external page pattern; {id} is replaced by the item id
const DefaultReferenceURL = "https://www.wakfu.com/en/mmorpg/encyclopedia/resources/{id}"

// References resolves outbound links for special sublimations
type References interface {
	Link(name string) (string, bool)
}

// ReferenceIndex maps exact item titles to encyclopedia links
type ReferenceIndex struct {
	pattern string
	ids     map[string]int
}

// NewReferenceIndex indexes items by exact title (first occurrence wins).
// An empty pattern uses DefaultReferenceURL.
func NewReferenceIndex(items []models.ReferenceItem, pattern string) *ReferenceIndex {
	if pattern == "" {
		pattern = DefaultReferenceURL
	}
	idx := &ReferenceIndex{pattern: pattern, ids: make(map[string]int, len(items))}
	for _, it := range items {
		if it.Title == "" {
			continue
		}
		if _, ok := idx.ids[it.Title]; !ok {
			idx.ids[it.Title] = it.ID
		}
	}
	return idx
}

// Len returns the number of indexed titles.
func (r *ReferenceIndex) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}

// Link returns the external page for an exact title match.
func (r *ReferenceIndex) Link(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	id, ok := r.ids[name]
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(r.pattern, "{id}", strconv.Itoa(id)), true
}
