package engine

import (
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// OneLine collapses runs of whitespace (including newlines) to single spaces,
// for comment text shown in logs and previews.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
