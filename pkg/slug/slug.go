// Package slug derives URL-safe identifiers for posts and comments from the
// author's username plus a UUID, mirroring how the rest of the system names
// uploaded assets after their owner.
package slug

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ForUser builds the canonical slug for content owned by username.
// The UUID suffix keeps slugs globally unique even for repeated usernames.
func ForUser(username string, id uuid.UUID) string {
	return Make(username + "-" + id.String())
}

// Make lowercases the input, replaces runs of non-alphanumerics with single
// hyphens and trims hyphens from both ends.
func Make(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
