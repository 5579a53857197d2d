package catalog

import (
	"strings"

	"github.com/meur/wakfudex/internal/models"
)

// ColorBadge is one slot indicator of a card
type ColorBadge struct {
	Tag   models.Color
	Class string
	Icon  string
	Title string
}

// RarityBadge is one rarity indicator of a card
type RarityBadge struct {
	Tag  models.Rarity
	Icon string // source icon for Epic/Relic rarity
}

// SourceBadge is the obtention indicator of a card
type SourceBadge struct {
	Name string
	Icon string
}

// LevelControl bounds the level slider of a non-special card
type LevelControl struct {
	Min   int
	Max   int
	Step  int
	Value int
}

// Card is the display model of one sublimation
type Card struct {
	ID          string // DOM-safe id derived from the name
	Name        string
	Colors      []ColorBadge
	Rarities    []RarityBadge
	Source      *SourceBadge
	Description string
	Effect      string
	Category    string
	Level       *LevelControl // nil for special records
	Special     bool
	Link        string // outbound reference page, special records only
}

// BuildCard maps a record and its selected level to a card. refs may be nil.
func BuildCard(rec models.Sublimation, tmpl Template, level int, refs References) Card {
	level = rec.ClampLevel(level)
	c := Card{
		ID:          CardID(rec.Name),
		Name:        rec.Name,
		Description: tmpl.Render(rec, level),
		Effect:      rec.Effect,
		Category:    rec.Category,
		Special:     rec.Special(),
	}

	for _, tag := range rec.Colors {
		c.Colors = append(c.Colors, ColorBadge{
			Tag:   tag,
			Class: ColorClass(tag),
			Icon:  ColorIcon(tag),
			Title: string(tag) + " Slot",
		})
	}

	sourceIcon := ""
	if rec.HasSource() {
		sourceIcon = SourceIcon(rec.Obtention)
		c.Source = &SourceBadge{Name: rec.Obtention.Name, Icon: sourceIcon}
	}

	for _, r := range rec.Rarity {
		icon := RarityIcon(r)
		if r.Special() {
			icon = sourceIcon
		}
		c.Rarities = append(c.Rarities, RarityBadge{Tag: r, Icon: icon})
	}

	if c.Special {
		if refs != nil {
			if link, ok := refs.Link(rec.Name); ok {
				c.Link = link
			}
		}
		return c
	}

	c.Level = &LevelControl{
		Min:   rec.MinLevel,
		Max:   rec.MaxLevel,
		Step:  rec.Step,
		Value: level,
	}
	return c
}

// CardID turns a record name into an id usable in HTML attributes and selectors.
func CardID(name string) string {
	var b strings.Builder
	b.WriteString("sub-")
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
