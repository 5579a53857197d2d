package models

// ReferenceItem is an entry of the game's item encyclopedia, used to link special sublimations
type ReferenceItem struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	TitleFr  string `json:"title_fr,omitempty"` // French localization
	Icon     string `json:"icon,omitempty"`
	Category string `json:"category,omitempty"` // item type label, when known
}

// ReferenceList is a collection of reference items
type ReferenceList struct {
	Items      []ReferenceItem `json:"items"`
	TotalCount int             `json:"total_count"`
	Version    string          `json:"version,omitempty"` // game data version the list was imported from
}
