// Package changelog serves the site's release notes.
package changelog

import (
	_ "embed"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed changelog.yaml
var defaultData []byte

const dateLayout = "2006-01-02"

// Entry is one release
type Entry struct {
	Date    string   `yaml:"date"`
	Version string   `yaml:"version"`
	Title   string   `yaml:"title"`
	Changes []string `yaml:"changes"`
}

// Day parses Date.
func (e Entry) Day() (time.Time, error) {
	return time.Parse(dateLayout, e.Date)
}

// DisplayDate is Date in long form, e.g. "June 14, 2025".
func (e Entry) DisplayDate() string {
	return FormatDate(e.Date)
}

// FormatDate turns an ISO date into "January 2, 2006" form.
// Unparsable input is returned unchanged.
func FormatDate(iso string) string {
	t, err := time.Parse(dateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("January 2, 2006")
}

// Default returns the embedded changelog.
func Default() ([]Entry, error) {
	return Load(defaultData)
}

// Load parses entries and orders them newest first.
func Load(data []byte) ([]Entry, error) {
	var f struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse changelog: %w", err)
	}
	for _, e := range f.Entries {
		if _, err := e.Day(); err != nil {
			return nil, fmt.Errorf("changelog entry %q: %w", e.Title, err)
		}
	}
	sort.SliceStable(f.Entries, func(i, j int) bool {
		return f.Entries[i].Date > f.Entries[j].Date
	})
	return f.Entries, nil
}
