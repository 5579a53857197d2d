package catalog

import (
	json "github.com/goccy/go-json"
	"github.com/meur/wakfudex/internal/models"
)

// Encode writes records in the canonical schema: structured obtenation, rarity and
// colors as arrays, integer levels.
func Encode(records []models.Sublimation) ([]byte, error) {
	return json.MarshalIndent(records, "", "  ")
}
