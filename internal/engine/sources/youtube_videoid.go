package sources

import (
	"net/url"
	"regexp"
	"strings"
)

// Video ID resolution from free-form user input.

const (
	shortLinkHost = "youtu.be"
	shortsSegment = "shorts"
)

// videoIDShapeRE is deliberately looser than YouTube's real 11-char grammar.
var videoIDShapeRE = regexp.MustCompile(`^[A-Za-z0-9_-]{6,32}$`)

// IsVideoIDShaped reports whether s looks like a video ID.
func IsVideoIDShaped(s string) bool {
	return videoIDShapeRE.MatchString(s)
}

// ResolveVideoID extracts the canonical video ID from a bare ID or a
// youtu.be, watch?v= or /shorts/ URL. ok is false when nothing usable is found.
func ResolveVideoID(input string) (id string, ok bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}

	if !looksLikeURL(s) && IsVideoIDShaped(s) {
		return s, true
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	var candidate string
	q := u.Query()
	switch {
	case strings.Contains(strings.ToLower(u.Host), shortLinkHost):
		candidate = strings.TrimPrefix(u.Path, "/")
	case q.Has("v"):
		candidate = q.Get("v")
	default:
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i, seg := range segments {
			if seg == shortsSegment && i+1 < len(segments) {
				candidate = segments[i+1]
				break
			}
		}
	}

	if !IsVideoIDShaped(candidate) {
		return "", false
	}
	return candidate, true
}

// looksLikeURL reports whether s carries a scheme marker. The "http" match
// is case-sensitive so IDs such as abHTTPcd12 stay bare IDs.
func looksLikeURL(s string) bool {
	return strings.Contains(s, "://") || strings.Contains(s, "http")
}
