// Package catalog holds the sublimation reference: loading, derived facets,
// description formatting, card building and filtering.
package catalog

import (
	"strconv"

	"github.com/meur/wakfudex/internal/models"
)

// Catalog is the immutable set of loaded records with their parsed templates and facets.
// It is safe for concurrent reads.
type Catalog struct {
	records     []models.Sublimation
	templates   []Template
	ids         []string
	index       map[string]int
	categories  []string
	levelRanges []string
	fallback    bool
}

// NewCatalog parses every description once and derives the facets.
func NewCatalog(records []models.Sublimation, fallback bool) *Catalog {
	c := &Catalog{
		records:   records,
		templates: make([]Template, len(records)),
		index:     make(map[string]int, len(records)),
		fallback:  fallback,
	}
	for i, rec := range records {
		c.templates[i] = ParseTemplate(rec)
		if _, ok := c.index[rec.Name]; !ok {
			c.index[rec.Name] = i
		}
	}
	c.ids = cardIDs(records)
	c.categories = Categories(records)
	c.levelRanges = LevelRanges(records)
	return c
}

// Records returns the loaded records in load order. Callers must not modify them.
func (c *Catalog) Records() []models.Sublimation {
	return c.records
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Fallback reports whether the records come from the embedded fallback dataset.
func (c *Catalog) Fallback() bool {
	return c.fallback
}

// Categories returns the category facet, AllOption first.
func (c *Catalog) Categories() []string {
	return c.categories
}

// LevelRanges returns the legacy level-range facet, AllOption first.
func (c *Catalog) LevelRanges() []string {
	return c.levelRanges
}

// Lookup finds a record by exact name.
func (c *Catalog) Lookup(name string) (models.Sublimation, bool) {
	i, ok := c.index[name]
	if !ok {
		return models.Sublimation{}, false
	}
	return c.records[i], true
}

// Card builds the card of the named record at its selected level.
func (c *Catalog) Card(name string, levels Levels, refs References) (Card, bool) {
	i, ok := c.index[name]
	if !ok {
		return Card{}, false
	}
	return c.card(i, levels, refs), true
}

// Cards filters the catalog and builds a card per remaining record.
func (c *Catalog) Cards(f Filter, levels Levels, refs References) []Card {
	out := make([]Card, 0, len(c.records))
	for i, rec := range c.records {
		if !f.Match(rec) {
			continue
		}
		out = append(out, c.card(i, levels, refs))
	}
	return out
}

// FacetSet describes the catalog's filter controls.
func (c *Catalog) FacetSet() models.FacetSet {
	return FacetSet(c.records, c.fallback)
}

func (c *Catalog) card(i int, levels Levels, refs References) Card {
	rec := c.records[i]
	card := BuildCard(rec, c.templates[i], levels.Level(rec), refs)
	card.ID = c.ids[i]
	return card
}

// cardIDs derives one DOM id per record; names that slug alike get a numeric suffix.
func cardIDs(records []models.Sublimation) []string {
	ids := make([]string, len(records))
	taken := make(map[string]bool, len(records))
	for i, rec := range records {
		base := CardID(rec.Name)
		id := base
		for n := 2; taken[id]; n++ {
			id = base + "-" + strconv.Itoa(n)
		}
		taken[id] = true
		ids[i] = id
	}
	return ids
}
