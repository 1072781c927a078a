// Package commentserver exposes the comment exporter as MCP tools.
package commentserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcomments/internal/engine/comments"
)

// Store is the per-user state the tools read and write.
type Store interface {
	GetAPIKey(ctx context.Context) (string, bool, error)
	SetAPIKey(ctx context.Context, key string) error
	RecordExport(ctx context.Context, res *comments.ExportResult) error
	ListExports(ctx context.Context, videoID string, limit int) ([]comments.ExportEntry, error)
}

// Deps are the collaborators injected into the tools. Mirror may be nil.
type Deps struct {
	Store  Store
	Opener comments.Opener
	Mirror comments.Mirror
}

// toolCount is the number of tools RegisterTools adds.
const toolCount = 5

// RegisterTools registers get_api_key, set_api_key, export_comments,
// open_path and list_exports on server. It returns the number registered.
func RegisterTools(server *mcp.Server, deps Deps) int {
	t := &tools{deps: deps}
	registerGetAPIKey(server, t)
	registerSetAPIKey(server, t)
	registerExportComments(server, t)
	registerOpenPath(server, t)
	registerListExports(server, t)
	return toolCount
}

// tools holds the handlers so they can be exercised without a transport.
type tools struct {
	deps Deps
}
