package catalog

import (
	"strings"

	"github.com/meur/wakfudex/internal/models"
)

const iconRoot = "/static/icons"

var colorClasses = map[models.Color]string{
	models.ColorRed:   "color-red",
	models.ColorGreen: "color-green",
	models.ColorBlue:  "color-blue",
	models.ColorEpic:  "color-epic",
	models.ColorRelic: "color-relic",
}

// ColorClass returns the CSS class of a slot tag, empty for unknown tags.
func ColorClass(c models.Color) string {
	return colorClasses[c]
}

// ColorIcon returns the icon path of a slot tag, empty for unknown tags.
func ColorIcon(c models.Color) string {
	if _, ok := colorClasses[c]; !ok {
		return ""
	}
	return iconRoot + "/colors/" + strings.ToLower(string(c)) + ".png"
}

// RarityIcon returns the icon path of a rarity tag, empty for unknown tags.
func RarityIcon(r models.Rarity) string {
	for _, known := range models.AllRarities() {
		if r == known {
			return iconRoot + "/rarity/" + strings.ToLower(string(r)) + ".png"
		}
	}
	return ""
}

// SourceSlug lowercases name and replaces whitespace runs with underscores.
func SourceSlug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// SourceIcon returns the explicit icon of o, or a local path derived from its name.
func SourceIcon(o models.Obtention) string {
	if o.Icon != "" {
		return o.Icon
	}
	slug := SourceSlug(o.Name)
	if slug == "" {
		return ""
	}
	return iconRoot + "/sources/" + slug + ".png"
}
