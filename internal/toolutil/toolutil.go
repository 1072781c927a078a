// Package toolutil holds helpers shared by the CLI and the tool server.
package toolutil

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// KeyGetter reads a saved API key.
type KeyGetter interface {
	GetAPIKey(ctx context.Context) (string, bool, error)
}

// Key sources reported by ResolveAPIKey.
const (
	KeySourceExplicit = "explicit"
	KeySourceEnv      = "env"
	KeySourceStore    = "store"
)

// ResolveAPIKey picks the first non-blank key from explicit, engine.Cfg
// (YOUTUBE_API_KEY) and the store. An empty key with a nil error means none
// is configured; the caller decides whether that is fatal.
func ResolveAPIKey(ctx context.Context, explicit string, store KeyGetter) (key, source string, err error) {
	if k := strings.TrimSpace(explicit); k != "" {
		return k, KeySourceExplicit, nil
	}
	if k := strings.TrimSpace(engine.Cfg.YouTubeAPIKey); k != "" {
		return k, KeySourceEnv, nil
	}
	if store == nil {
		return "", "", nil
	}
	k, ok, err := store.GetAPIKey(ctx)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", nil
	}
	return strings.TrimSpace(k), KeySourceStore, nil
}

// MaskKey hides all but the last four characters of a key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// PreviewRows returns up to n rows with text flattened to one line and capped
// at maxText runes.
func PreviewRows(rows []engine.CommentRecord, n, maxText int) []engine.CommentRecord {
	if n > len(rows) {
		n = len(rows)
	}
	if n <= 0 {
		return nil
	}
	out := make([]engine.CommentRecord, n)
	for i := range n {
		r := rows[i]
		r.Text = engine.TruncateRunes(engine.OneLine(r.Text), maxText, "...")
		out[i] = r
	}
	return out
}
