package catalog

import (
	"fmt"
	"strings"

	"github.com/meur/wakfudex/internal/models"
)

// Validate lists the schema problems of one record. Problems never block loading.
func Validate(rec models.Sublimation) []string {
	var out []string
	if rec.Name == "" {
		out = append(out, "record without name")
	}
	if rec.MinLevel > rec.MaxLevel {
		out = append(out, fmt.Sprintf("%s: minLevel %d > maxLevel %d", rec.Name, rec.MinLevel, rec.MaxLevel))
	}
	if rec.Step > 0 && (rec.MaxLevel-rec.MinLevel)%rec.Step != 0 {
		out = append(out, fmt.Sprintf("%s: level span %d-%d is not a multiple of step %d", rec.Name, rec.MinLevel, rec.MaxLevel, rec.Step))
	}
	for _, c := range rec.Colors {
		if ColorClass(c) == "" {
			out = append(out, fmt.Sprintf("%s: unknown color %q", rec.Name, c))
		}
	}
	for _, r := range rec.Rarity {
		if RarityIcon(r) == "" {
			out = append(out, fmt.Sprintf("%s: unknown rarity %q", rec.Name, r))
		}
	}
	for _, v := range rec.Values {
		if v.Scales() && !strings.Contains(rec.Description, v.Token()) {
			out = append(out, fmt.Sprintf("%s: placeholder %s missing from description", rec.Name, v.Token()))
		}
	}
	return out
}

// ValidateAll validates every record and reports duplicate names.
func ValidateAll(records []models.Sublimation) []string {
	var out []string
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		out = append(out, Validate(rec)...)
		if rec.Name == "" {
			continue
		}
		if seen[rec.Name] {
			out = append(out, fmt.Sprintf("%s: duplicate name", rec.Name))
		}
		seen[rec.Name] = true
	}
	return out
}
