// Package comments turns a video reference into a CSV of its comments.
package comments

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/sources"
)

// Mirror receives the exported rows after the CSV has been written.
type Mirror interface {
	MirrorComments(ctx context.Context, videoID string, rows []engine.CommentRecord) error
}

// ExportInput describes one export run.
type ExportInput struct {
	APIKey string
	Video  string // ID or watch / youtu.be / shorts URL
	Out    string // default: <id>.csv in the working directory

	// Mirror is optional. Its failure is logged and does not fail the export.
	Mirror Mirror
}

// ExportResult reports what was written.
type ExportResult struct {
	VideoID  string
	Path     string
	AbsPath  string
	Rows     int
	TopLevel int
	Replies  int

	records []engine.CommentRecord
}

// Records returns the exported rows in file order.
func (r *ExportResult) Records() []engine.CommentRecord { return r.records }

// Export resolves the video, fetches every comment and reply and writes them
// to a CSV file. Nothing is written unless the whole fetch succeeds.
func Export(ctx context.Context, in ExportInput) (*ExportResult, error) {
	apiKey := strings.TrimSpace(in.APIKey)
	if apiKey == "" {
		engine.IncrExportErrors()
		return nil, &engine.ValidationError{Field: "api_key", Msg: "YouTube API key is required"}
	}
	videoID, ok := sources.ResolveVideoID(in.Video)
	if !ok {
		engine.IncrExportErrors()
		return nil, &engine.ValidationError{Field: "video", Msg: "could not extract a video ID from " + quoteInput(in.Video)}
	}

	out := strings.TrimSpace(in.Out)
	if out == "" {
		out = videoID + ".csv"
	}

	start := time.Now()
	var set *sources.CommentSet
	err := engine.TrackOperation(ctx, "export "+videoID, 2*time.Minute, func(ctx context.Context) error {
		var err error
		set, err = sources.FetchCommentSet(ctx, apiKey, videoID)
		return err
	})
	if err != nil {
		engine.IncrExportErrors()
		return nil, err
	}

	rows := set.Records
	if err := WriteCSV(out, rows); err != nil {
		engine.IncrExportErrors()
		return nil, err
	}
	engine.IncrExportsWritten()

	res := &ExportResult{
		VideoID:  videoID,
		Path:     out,
		AbsPath:  out,
		Rows:     len(rows),
		TopLevel: set.TopLevel,
		Replies:  set.Replies,
		records:  rows,
	}
	if abs, err := filepath.Abs(out); err == nil {
		res.AbsPath = abs
	}

	slog.Info("comments exported",
		slog.String("video_id", videoID),
		slog.String("path", res.AbsPath),
		slog.Int("rows", res.Rows),
		slog.Int("top_level", res.TopLevel),
		slog.Int("replies", res.Replies),
		slog.Duration("elapsed", time.Since(start)))

	if in.Mirror != nil {
		if err := in.Mirror.MirrorComments(ctx, videoID, rows); err != nil {
			slog.Warn("comment mirror failed", slog.String("video_id", videoID), slog.Any("error", err))
		}
	}
	return res, nil
}

// quoteInput quotes s for messages, shortening very long input.
func quoteInput(s string) string {
	return `"` + engine.TruncateRunes(s, 120, "...") + `"`
}
