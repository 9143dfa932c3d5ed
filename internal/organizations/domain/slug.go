package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	SlugMinLen = 2
	SlugMaxLen = 60
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a well formed URL-safe slug:
// lowercase letters, digits and single dashes, no leading or trailing
// dash.
func ValidSlug(s string) bool {
	if len(s) < SlugMinLen || len(s) > SlugMaxLen {
		return false
	}
	return slugPattern.MatchString(s)
}

// Slugify derives a slug from free text: lowercase, runs of anything
// non-alphanumeric collapse to a single dash. Returns "" when nothing
// usable remains.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	out := strings.TrimRight(b.String(), "-")
	if len(out) > SlugMaxLen {
		out = strings.TrimRight(out[:SlugMaxLen], "-")
	}
	return out
}

// SuffixSlug appends -n to base, trimming base so the result still fits
// SlugMaxLen. Used to retry derived slugs after a uniqueness conflict.
func SuffixSlug(base string, n int) string {
	suffix := fmt.Sprintf("-%d", n)
	if len(base)+len(suffix) > SlugMaxLen {
		base = strings.TrimRight(base[:SlugMaxLen-len(suffix)], "-")
	}
	return base + suffix
}
