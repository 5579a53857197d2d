package models

// FilterConfig defines one filter control of the sublimation page
type FilterConfig struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Field   string            `json:"field"` // Field of the record the control filters on
	Type    string            `json:"type"`  // "tabs", "toggle"
	Options []string          `json:"options"`
	IconMap map[string]string `json:"icon_map,omitempty"` // Option -> icon URL
}

// FacetSet is the derived filter metadata served alongside the records
type FacetSet struct {
	Filters    []FilterConfig `json:"filters"`
	TotalCount int            `json:"total_count"`
	Fallback   bool           `json:"fallback"` // records come from the embedded fallback dataset
}
