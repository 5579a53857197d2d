package session

import "github.com/meur/wakfudex/internal/catalog"

// Visitor is the session state of one browser: the level chosen on each sublimation card.
type Visitor struct {
	Levels catalog.Levels
}

// LevelsOf returns a copy of the visitor's levels, seeded at MinLevel for every record of c.
// Levels already chosen are kept.
func (v Visitor) LevelsOf(c *catalog.Catalog) catalog.Levels {
	out := catalog.NewLevels(c.Records())
	for name, lvl := range v.Levels {
		out[name] = lvl
	}
	return out
}
