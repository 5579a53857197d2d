package catalog

import (
	"strconv"
	"strings"

	"github.com/meur/wakfudex/internal/models"
)

// segment is either literal text (spec < 0) or a placeholder filled by Values[spec]
type segment struct {
	text string
	spec int
}

// Template is a description split into literal text and placeholder slots.
// It is parsed once per record and rendered for any level without touching the source text.
type Template struct {
	source   string
	segments []segment
}

// ParseTemplate splits the record description on the bracketed tokens of its
// scaling value specs. Brackets that do not exactly match a scaling spec stay literal.
func ParseTemplate(rec models.Sublimation) Template {
	tokens := make(map[string]int, len(rec.Values))
	for i, v := range rec.Values {
		if !v.Scales() {
			continue
		}
		if _, ok := tokens[v.Token()]; !ok {
			tokens[v.Token()] = i
		}
	}

	t := Template{source: rec.Description}
	if len(tokens) == 0 {
		if rec.Description != "" {
			t.segments = []segment{{text: rec.Description, spec: -1}}
		}
		return t
	}

	src := rec.Description
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{text: lit.String(), spec: -1})
			lit.Reset()
		}
	}
	for len(src) > 0 {
		open := strings.IndexByte(src, '[')
		if open < 0 {
			lit.WriteString(src)
			break
		}
		end := strings.IndexByte(src[open:], ']')
		if end < 0 {
			lit.WriteString(src)
			break
		}
		token := src[open : open+end+1]
		lit.WriteString(src[:open])
		if spec, ok := tokens[token]; ok {
			flush()
			t.segments = append(t.segments, segment{text: token, spec: spec})
			src = src[open+end+1:]
			continue
		}
		// not a placeholder: keep "[" and rescan after it, "[[X]" still finds "[X]"
		lit.WriteByte('[')
		src = src[open+1:]
	}
	flush()
	return t
}

// Source returns the unparsed description.
func (t Template) Source() string {
	return t.source
}

// Placeholders returns the number of placeholder slots in the template.
func (t Template) Placeholders() int {
	n := 0
	for _, s := range t.segments {
		if s.spec >= 0 {
			n++
		}
	}
	return n
}

// Render fills every placeholder with the value computed for level.
func (t Template) Render(rec models.Sublimation, level int) string {
	if t.Placeholders() == 0 {
		return t.source
	}
	level = rec.ClampLevel(level)
	var b strings.Builder
	b.Grow(len(t.source))
	for _, s := range t.segments {
		if s.spec < 0 {
			b.WriteString(s.text)
			continue
		}
		v, ok := Compute(rec, rec.Values[s.spec], level)
		if !ok {
			b.WriteString(s.text)
			continue
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// Compute returns base + increment*steps for level, where
// steps = floor((level - MinLevel) / Step). The bool is false for specs without base or increment.
func Compute(rec models.Sublimation, v models.ValueSpec, level int) (int, bool) {
	if v.Base == nil || v.Increment == nil {
		return 0, false
	}
	step := rec.Step
	if step <= 0 {
		step = 1
	}
	steps := floorDiv(level-rec.MinLevel, step)
	return *v.Base + *v.Increment*steps, true
}

// Format renders the record description for level.
func Format(rec models.Sublimation, level int) string {
	return ParseTemplate(rec).Render(rec, level)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
