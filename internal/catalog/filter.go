package catalog

import (
	"net/url"
	"strings"

	"github.com/meur/wakfudex/internal/models"
)

// AllOption is the wildcard facet value
const AllOption = "all"

// Filter is the active filter of a sublimation listing. The zero value matches everything.
type Filter struct {
	Search     string
	Category   string
	Rarities   []models.Rarity // any-of; empty means no rarity filter
	LevelRange string
}

// ParseFilter reads a filter from query values: q, category, rarity (repeatable), range.
func ParseFilter(q url.Values) Filter {
	f := Filter{
		Search:     q.Get("q"),
		Category:   strings.TrimSpace(q.Get("category")),
		LevelRange: strings.TrimSpace(q.Get("range")),
	}
	seen := map[models.Rarity]bool{}
	for _, raw := range q["rarity"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			r := models.ParseRarity(part)
			if seen[r] {
				continue
			}
			seen[r] = true
			f.Rarities = append(f.Rarities, r)
		}
	}
	return f
}

// Values encodes the filter back into query values, omitting defaults.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	if f.Category != "" && f.Category != AllOption {
		v.Set("category", f.Category)
	}
	for _, r := range f.Rarities {
		v.Add("rarity", string(r))
	}
	if f.LevelRange != "" && f.LevelRange != AllOption {
		v.Set("range", f.LevelRange)
	}
	return v
}

// ActiveCategory returns the selected category, or AllOption.
func (f Filter) ActiveCategory() string {
	if f.Category == "" {
		return AllOption
	}
	return f.Category
}

// ActiveRange returns the selected level range, or AllOption.
func (f Filter) ActiveRange() string {
	if f.LevelRange == "" {
		return AllOption
	}
	return f.LevelRange
}

// Toggled reports whether the rarity toggle r is on
func (f Filter) Toggled(r models.Rarity) bool {
	for _, have := range f.Rarities {
		if have == r {
			return true
		}
	}
	return false
}

// Match reports whether rec passes every active predicate.
func (f Filter) Match(rec models.Sublimation) bool {
	if term := strings.ToLower(f.Search); term != "" {
		if !strings.Contains(strings.ToLower(rec.Name), term) &&
			!strings.Contains(strings.ToLower(rec.Description), term) &&
			!(rec.HasSource() && strings.Contains(strings.ToLower(rec.Obtention.Name), term)) {
			return false
		}
	}

	if c := f.ActiveCategory(); c != AllOption && rec.Category != c {
		return false
	}

	if len(f.Rarities) > 0 {
		matched := false
		for _, r := range f.Rarities {
			if rec.HasRarity(r) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if lr := f.ActiveRange(); lr != AllOption && rec.LevelRange != lr {
		return false
	}

	return true
}

// Apply returns the records matching f, in their original order.
func Apply(records []models.Sublimation, f Filter) []models.Sublimation {
	out := make([]models.Sublimation, 0, len(records))
	for _, rec := range records {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}
