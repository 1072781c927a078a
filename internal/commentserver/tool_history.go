package commentserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/comments"
)

// ListExportsOutput is the structured output for list_exports.
type ListExportsOutput struct {
	Exports []comments.ExportEntry `json:"exports"`
}

func registerListExports(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_exports",
		Description: "List previous comment exports, newest first. Optionally filter by video_id.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ListExportsInput) (*mcp.CallToolResult, ListExportsOutput, error) {
		out, err := t.listExports(ctx, input)
		return nil, out, err
	})
}

func (t *tools) listExports(ctx context.Context, input engine.ListExportsInput) (ListExportsOutput, error) {
	entries, err := t.deps.Store.ListExports(ctx, input.VideoID, input.Limit)
	if err != nil {
		return ListExportsOutput{}, err
	}
	if entries == nil {
		entries = []comments.ExportEntry{}
	}
	return ListExportsOutput{Exports: entries}, nil
}
