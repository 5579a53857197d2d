// Package dungeons is the dungeon directory: dungeon names grouped by level bracket.
package dungeons

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed dungeons.yaml
var defaultData []byte

// Dungeon is one entry of a bracket
type Dungeon struct {
	Name  string
	Slug  string
	Level int
}

// Bracket groups the dungeons of one level
type Bracket struct {
	Level    int       `yaml:"level"`
	Names    []string  `yaml:"dungeons"`
	Dungeons []Dungeon `yaml:"-"`
}

// BracketView is a bracket as shown for a search: Total counts every dungeon of
// the bracket, Dungeons only the matching ones.
type BracketView struct {
	Level    int
	Total    int
	Dungeons []Dungeon
}

type file struct {
	Brackets []Bracket `yaml:"brackets"`
}

// Directory is the immutable dungeon table
type Directory struct {
	brackets []Bracket
	bySlug   map[string]Dungeon
}

// Default returns the directory built from the embedded table.
func Default() (*Directory, error) {
	return Load(defaultData)
}

// Load parses a YAML bracket table. Brackets are sorted by ascending level.
func Load(data []byte) (*Directory, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse dungeons: %w", err)
	}

	d := &Directory{bySlug: map[string]Dungeon{}}
	for _, b := range f.Brackets {
		if b.Level <= 0 {
			return nil, fmt.Errorf("dungeons: invalid bracket level %d", b.Level)
		}
		for _, name := range b.Names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			dg := Dungeon{Name: name, Slug: Slug(name), Level: b.Level}
			b.Dungeons = append(b.Dungeons, dg)
			if _, ok := d.bySlug[dg.Slug]; !ok {
				d.bySlug[dg.Slug] = dg
			}
		}
		d.brackets = append(d.brackets, b)
	}
	sort.SliceStable(d.brackets, func(i, j int) bool {
		return d.brackets[i].Level < d.brackets[j].Level
	})
	return d, nil
}

// Brackets returns every bracket in ascending level order.
func (d *Directory) Brackets() []Bracket {
	return d.brackets
}

// Len returns the number of dungeons.
func (d *Directory) Len() int {
	n := 0
	for _, b := range d.brackets {
		n += len(b.Dungeons)
	}
	return n
}

// Search keeps the dungeons whose lowercased name contains the lowercased,
// trimmed query. Brackets left empty are dropped; an empty query keeps everything.
func (d *Directory) Search(q string) []BracketView {
	q = strings.ToLower(strings.TrimSpace(q))

	views := make([]BracketView, 0, len(d.brackets))
	for _, b := range d.brackets {
		v := BracketView{Level: b.Level, Total: len(b.Dungeons)}
		for _, dg := range b.Dungeons {
			if q == "" || strings.Contains(strings.ToLower(dg.Name), q) {
				v.Dungeons = append(v.Dungeons, dg)
			}
		}
		if q != "" && len(v.Dungeons) == 0 {
			continue
		}
		views = append(views, v)
	}
	return views
}

// Find looks a dungeon up by slug.
func (d *Directory) Find(slug string) (Dungeon, bool) {
	dg, ok := d.bySlug[slug]
	return dg, ok
}

// Slug lowercases name and joins its alphanumeric runs with dashes.
func Slug(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		if r == '\'' {
			continue
		}
		pending = true
	}
	return b.String()
}
