package models

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Color is a slot-kind tag of a sublimation
type Color string

const (
	ColorRed   Color = "Red"
	ColorGreen Color = "Green"
	ColorBlue  Color = "Blue"
	ColorEpic  Color = "Epic"
	ColorRelic Color = "Relic"
)

// legacy data used single-letter slot tags
var colorAliases = map[string]Color{
	"r": ColorRed,
	"g": ColorGreen,
	"b": ColorBlue,
	"e": ColorEpic,
}

// ParseColor normalises a slot tag, accepting the legacy abbreviations.
// Unknown tags are returned verbatim.
func ParseColor(s string) Color {
	s = strings.TrimSpace(s)
	if c, ok := colorAliases[strings.ToLower(s)]; ok {
		return c
	}
	for _, c := range []Color{ColorRed, ColorGreen, ColorBlue, ColorEpic, ColorRelic} {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return Color(s)
}

// Special reports whether the slot is an Epic or Relic slot
func (c Color) Special() bool {
	return c == ColorEpic || c == ColorRelic
}

// Rarity is a drop rarity tag
type Rarity string

const (
	RarityRare      Rarity = "Rare"
	RarityMythic    Rarity = "Mythic"
	RarityLegendary Rarity = "Legendary"
	RarityEpic      Rarity = "Epic"
	RarityRelic     Rarity = "Relic"
)

// AllRarities returns the known rarities in display order.
func AllRarities() []Rarity {
	return []Rarity{RarityRare, RarityMythic, RarityLegendary, RarityEpic, RarityRelic}
}

// ParseRarity normalises a rarity tag. Unknown tags are returned verbatim.
func ParseRarity(s string) Rarity {
	s = strings.TrimSpace(s)
	for _, r := range AllRarities() {
		if strings.EqualFold(s, string(r)) {
			return r
		}
	}
	return Rarity(s)
}

// Special reports whether the rarity is Epic or Relic
func (r Rarity) Special() bool {
	return r == RarityEpic || r == RarityRelic
}

// Colors decodes either a JSON array of tags or a legacy abbreviation list
type Colors []Color

func (c *Colors) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("colors: %w", err)
	}
	out := make(Colors, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, ParseColor(s))
		}
	}
	*c = out
	return nil
}

// Rarities decodes either a JSON array or the legacy "Rare / Mythic / Legendary" string
type Rarities []Rarity

func (r *Rarities) UnmarshalJSON(b []byte) error {
	var parts []string
	if err := json.Unmarshal(b, &parts); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("rarity: expected string or array")
		}
		parts = strings.Split(s, "/")
	}
	out := make(Rarities, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, ParseRarity(p))
		}
	}
	*r = out
	return nil
}

// Level decodes an integer that legacy data stored as a bracketed string ("[6]")
type Level int

func (l *Level) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*l = Level(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("level: expected number or string")
	}
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		*l = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("level %q: %w", s, err)
	}
	*l = Level(n)
	return nil
}

// Obtention describes where a sublimation drops
type Obtention struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"` // URL or local path; derived from Name when empty
}

// UnmarshalJSON accepts the structured object or the legacy plain string.
func (o *Obtention) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*o = Obtention{Name: strings.TrimSpace(s)}
		return nil
	}
	type plain Obtention
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("obtenation: %w", err)
	}
	p.Name = strings.TrimSpace(p.Name)
	*o = Obtention(p)
	return nil
}

// ValueSpec computes one placeholder of a description
type ValueSpec struct {
	Base        *int   `json:"base"`      // value at MinLevel
	Increment   *int   `json:"increment"` // added per step
	Placeholder string `json:"placeholder"`
}

// Token returns the bracketed placeholder token, e.g. "[X]".
func (v ValueSpec) Token() string {
	p := strings.TrimSpace(v.Placeholder)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "[") {
		p = "[" + p
	}
	if !strings.HasSuffix(p, "]") {
		p += "]"
	}
	return p
}

// Scales reports whether the value can be computed for a level
func (v ValueSpec) Scales() bool {
	return v.Base != nil && v.Increment != nil && v.Token() != ""
}

// Sublimation is one record of the sublimation reference
type Sublimation struct {
	Name        string      `json:"name"`
	Colors      Colors      `json:"colors"`
	Description string      `json:"description"`
	Rarity      Rarities    `json:"rarity"`
	Effect      string      `json:"effect"`
	MinLevel    int         `json:"minLevel"`
	MaxLevel    int         `json:"maxLevel"`
	Step        int         `json:"step"`
	Category    string      `json:"category"`
	Obtention   Obtention   `json:"obtenation"`
	Values      []ValueSpec `json:"values,omitempty"`
	LevelRange  string      `json:"levelRange,omitempty"` // legacy facet, e.g. "1-20"
}

// UnmarshalJSON decodes the superset schema and fills level defaults.
func (s *Sublimation) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name        string      `json:"name"`
		Colors      Colors      `json:"colors"`
		Description string      `json:"description"`
		Rarity      Rarities    `json:"rarity"`
		Effect      string      `json:"effect"`
		MinLevel    *Level      `json:"minLevel"`
		MaxLevel    *Level      `json:"maxLevel"`
		Step        *Level      `json:"step"`
		Category    string      `json:"category"`
		Obtention   *Obtention  `json:"obtenation"`
		Values      []ValueSpec `json:"values"`
		LevelRange  string      `json:"levelRange"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := Sublimation{
		Name:        strings.TrimSpace(raw.Name),
		Colors:      raw.Colors,
		Description: raw.Description,
		Rarity:      raw.Rarity,
		Effect:      raw.Effect,
		Category:    strings.TrimSpace(raw.Category),
		Values:      raw.Values,
		LevelRange:  strings.TrimSpace(raw.LevelRange),
		MinLevel:    1,
		Step:        1,
	}
	if raw.MinLevel != nil {
		out.MinLevel = int(*raw.MinLevel)
	}
	out.MaxLevel = out.MinLevel
	if raw.MaxLevel != nil && int(*raw.MaxLevel) >= out.MinLevel {
		out.MaxLevel = int(*raw.MaxLevel)
	}
	if raw.Step != nil && *raw.Step > 0 {
		out.Step = int(*raw.Step)
	}
	if raw.Obtention != nil {
		out.Obtention = *raw.Obtention
	}
	*s = out
	return nil
}

// Special reports whether any slot is Epic or Relic. Special records have no level control.
func (s Sublimation) Special() bool {
	for _, c := range s.Colors {
		if c.Special() {
			return true
		}
	}
	return false
}

// HasRarity reports whether r is one of the record's rarities
func (s Sublimation) HasRarity(r Rarity) bool {
	for _, have := range s.Rarity {
		if have == r {
			return true
		}
	}
	return false
}

// HasSource reports whether an obtention source is known
func (s Sublimation) HasSource() bool {
	return s.Obtention.Name != ""
}

// ClampLevel bounds level to [MinLevel, MaxLevel] and snaps it down onto the step grid.
func (s Sublimation) ClampLevel(level int) int {
	step := s.Step
	if step <= 0 {
		step = 1
	}
	if level > s.MaxLevel {
		level = s.MaxLevel
	}
	if level <= s.MinLevel {
		return s.MinLevel
	}
	return s.MinLevel + ((level-s.MinLevel)/step)*step
}
