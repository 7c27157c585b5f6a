package notekey

import (
	"strings"
	"unicode"
)

// forbidden are characters replaced with underscores beyond path
// separators: shell/glob metacharacters and dots (dots would otherwise
// allow hidden files and ".." components in storage keys).
const forbidden = `:*?"<>|.`

// Sanitize turns one raw path component into a storage-safe segment.
// It is total and never fails; an empty result is the caller's
// validation problem.
//
// Rules, in order: whitespace runs collapse to a single underscore,
// slashes and backslashes become underscores, each forbidden character
// becomes an underscore, and control characters are dropped outright.
func Sanitize(component string) string {
	// strings.Fields splits on whitespace runs, so joining with "_"
	// collapses each run to one underscore.
	s := strings.Join(strings.Fields(component), "_")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '/' || r == '\\':
			b.WriteByte('_')
		case strings.ContainsRune(forbidden, r):
			b.WriteByte('_')
		case r < 0x20 || unicode.IsControl(r):
			// dropped, no replacement
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
