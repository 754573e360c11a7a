package services

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Team and user names share the same shape: lowercase letters, digits
// and underscores, 4 to 30 characters.
var nameRe = regexp.MustCompile(`^[a-z0-9_]{4,30}$`)

// Google Maps place links only: a place segment followed by @lat,lng
// coordinates and a data blob.
var locationRe = regexp.MustCompile(`^https://(www\.)?google\.com/maps/place/[^/]+/@[0-9.-]+,[0-9.-]+,?[0-9]*z/data=.*$`)

func validName(s string) bool {
	return nameRe.MatchString(s)
}

func validLocation(s string) bool {
	return locationRe.MatchString(s)
}

// normalizeUsername lowercases the requested name, strips anything
// outside the allowed alphabet and pads short results with a random
// suffix so the caller always ends up with a usable candidate.
func normalizeUsername(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) < 4 {
		out += randomSuffix()
	}
	if len(out) > 30 {
		out = out[:30]
	}
	return out
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
