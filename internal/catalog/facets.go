package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/meur/wakfudex/internal/models"
)

// Categories returns AllOption followed by the distinct categories, sorted.
func Categories(records []models.Sublimation) []string {
	set := make(map[string]struct{})
	for _, rec := range records {
		if rec.Category != "" {
			set[rec.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return append([]string{AllOption}, out...)
}

// LevelRanges returns AllOption followed by the distinct legacy level ranges,
// sorted by their numeric lower bound.
func LevelRanges(records []models.Sublimation) []string {
	set := make(map[string]struct{})
	for _, rec := range records {
		if rec.LevelRange != "" {
			set[rec.LevelRange] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := lowerBound(out[i]), lowerBound(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return append([]string{AllOption}, out...)
}

// lowerBound parses "20-35" as 20; unparsable ranges sort last
func lowerBound(r string) int {
	lo, _, _ := strings.Cut(r, "-")
	n, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// FacetSet describes the filter controls for records.
func FacetSet(records []models.Sublimation, fallback bool) models.FacetSet {
	rarities := models.AllRarities()
	opts := make([]string, 0, len(rarities))
	icons := make(map[string]string, len(rarities))
	for _, r := range rarities {
		opts = append(opts, string(r))
		icons[string(r)] = RarityIcon(r)
	}

	filters := []models.FilterConfig{
		{ID: "category", Name: "Category", Field: "category", Type: "tabs", Options: Categories(records)},
		{ID: "rarity", Name: "Rarity", Field: "rarity", Type: "toggle", Options: opts, IconMap: icons},
	}
	if ranges := LevelRanges(records); len(ranges) > 1 {
		filters = append(filters, models.FilterConfig{
			ID: "range", Name: "Level range", Field: "levelRange", Type: "tabs", Options: ranges,
		})
	}
	return models.FacetSet{Filters: filters, TotalCount: len(records), Fallback: fallback}
}
