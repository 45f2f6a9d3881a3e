package domain

import (
	"strings"

	"github.com/gosimple/slug"
)

// MinSubdomainLength is the shortest subdomain accepted at creation.
const MinSubdomainLength = 3

// NormalizeSubdomain lowercases raw, folds å and ä to a and ö to o, turns
// every other character outside [a-z0-9] into a hyphen, collapses hyphen runs
// and trims hyphens from both ends.
func NormalizeSubdomain(raw string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(raw) {
		switch r {
		case 'å', 'ä':
			r = 'a'
		case 'ö':
			r = 'o'
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// ValidSubdomain reports whether s is a normalized subdomain of usable length.
func ValidSubdomain(s string) bool {
	return len(s) >= MinSubdomainLength && slug.IsSlug(s)
}
