package catalog

import _ "embed"

//go:embed fallback.json
var fallbackJSON []byte

// FallbackData returns the embedded dataset used when the primary source fails.
func FallbackData() []byte {
	return fallbackJSON
}
