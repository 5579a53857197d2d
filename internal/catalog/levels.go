package catalog

import "github.com/meur/wakfudex/internal/models"

// Levels maps a record name to its selected level.
// Entries are never removed, so records hidden by a filter keep their level.
type Levels map[string]int

// NewLevels seeds every record at its MinLevel.
func NewLevels(records []models.Sublimation) Levels {
	l := make(Levels, len(records))
	for _, rec := range records {
		if _, ok := l[rec.Name]; !ok {
			l[rec.Name] = rec.MinLevel
		}
	}
	return l
}

// Level returns the selected level of rec, MinLevel when unset.
func (l Levels) Level(rec models.Sublimation) int {
	if v, ok := l[rec.Name]; ok {
		return rec.ClampLevel(v)
	}
	return rec.MinLevel
}

// Set stores level for rec after clamping it onto the record's step grid and returns the stored value.
func (l Levels) Set(rec models.Sublimation, level int) int {
	v := rec.ClampLevel(level)
	l[rec.Name] = v
	return v
}

// Clone returns an independent copy.
func (l Levels) Clone() Levels {
	out := make(Levels, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
