package domain

import (
	"net/url"
	"strings"

	"github.com/gosimple/slug"
)

var pageSlugSubstitutions = map[string]string{
	" ": "-",
	"å": "a",
	"ä": "a",
	"ö": "o",
}

// PageSlug lowercases the title, maps spaces and Swedish vowels and drops
// everything outside [a-z0-9-]. Repeated dashes are kept.
func PageSlug(title string) string {
	s := slug.Substitute(strings.ToLower(strings.TrimSpace(title)), pageSlugSubstitutions)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return -1
		}
	}, s)
}

// NormalizeWebsite prefixes https:// when the address has no http scheme.
func NormalizeWebsite(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrInvalidWebsite
	}
	return raw, nil
}
