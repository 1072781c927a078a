package commentserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/comments"
	"github.com/anatolykoptev/go_ytcomments/internal/toolutil"
)

const (
	previewRows = 5
	previewText = 200
)

func registerExportComments(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_comments",
		Description: "Export every top-level comment and reply of a YouTube video to a CSV file (comment_id, parent_id, video_id, author, author_channel_id, published_at, like_count, text). Replies follow their thread. Accepts a video ID or a watch, youtu.be or shorts URL. Returns the absolute file path, row counts and a short preview.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ExportCommentsInput) (*mcp.CallToolResult, engine.ExportCommentsOutput, error) {
		out, err := t.exportComments(ctx, input)
		return nil, out, err
	})
}

func (t *tools) exportComments(ctx context.Context, input engine.ExportCommentsInput) (engine.ExportCommentsOutput, error) {
	if input.Video == "" {
		return engine.ExportCommentsOutput{}, errors.New("video is required")
	}
	key, _, err := toolutil.ResolveAPIKey(ctx, input.APIKey, t.deps.Store)
	if err != nil {
		return engine.ExportCommentsOutput{}, err
	}

	res, err := comments.Export(ctx, comments.ExportInput{
		APIKey: key,
		Video:  input.Video,
		Out:    input.Out,
		Mirror: t.deps.Mirror,
	})
	if err != nil {
		return engine.ExportCommentsOutput{}, err
	}

	if err := t.deps.Store.RecordExport(ctx, res); err != nil {
		slog.Warn("export_comments: history not recorded", slog.Any("error", err))
	}

	return engine.ExportCommentsOutput{
		VideoID:  res.VideoID,
		Path:     res.AbsPath,
		Rows:     res.Rows,
		TopLevel: res.TopLevel,
		Replies:  res.Replies,
		Preview:  toolutil.PreviewRows(res.Records(), previewRows, previewText),
	}, nil
}
