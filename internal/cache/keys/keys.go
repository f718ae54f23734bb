// Package keys builds stable cache keys for coordinate-shaped queries.
package keys

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/gtsearch/parcel-risk/internal/model"
)

// coordPrecision fixes the number of decimal digits a coordinate contributes
// to a key. Six digits is ~0.1m at Florida latitudes, enough to keep distinct
// parcels apart while collapsing float noise in later digits.
const coordPrecision = 6

// Coordinate renders a coordinate at fixed precision for use in keys.
func Coordinate(c model.Coordinate) string {
	return fmt.Sprintf("%.*f,%.*f", coordPrecision, c.Lat, coordPrecision, c.Lng)
}

// Key composes a cache key from the provider label, the rounded coordinate,
// and any extra parameters that affect the result. Extras are carried both as
// sanitized text (debuggability) and as an xxhash digest (collision safety
// when the text is truncated).
func Key(provider string, c model.Coordinate, extras ...string) string {
	var b strings.Builder
	b.WriteString(sanitize(provider))
	b.WriteByte(':')
	b.WriteString(Coordinate(c))

	if len(extras) > 0 {
		joined := strings.Join(extras, "|")
		text := sanitize(joined)
		const maxExtraLen = 120
		if len(text) > maxExtraLen {
			text = text[:maxExtraLen]
		}
		fmt.Fprintf(&b, ":%s:x=%016x", text, xxhash.Sum64String(joined))
	}
	return b.String()
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range strings.TrimSpace(s) {
		out := r
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-' || r == '=' || r == '.' || r == ',':
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
