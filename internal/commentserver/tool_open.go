package commentserver

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

func registerOpenPath(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "open_path",
		Description: "Open a file (typically an exported CSV) with the desktop's default application.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input engine.OpenPathInput) (*mcp.CallToolResult, engine.OpenPathOutput, error) {
		out, err := t.openPath(input)
		return nil, out, err
	})
}

func (t *tools) openPath(input engine.OpenPathInput) (engine.OpenPathOutput, error) {
	if input.Path == "" {
		return engine.OpenPathOutput{}, errors.New("path is required")
	}
	path, err := filepath.Abs(input.Path)
	if err != nil {
		return engine.OpenPathOutput{}, err
	}
	if err := t.deps.Opener.Open(path); err != nil {
		return engine.OpenPathOutput{}, err
	}
	return engine.OpenPathOutput{Path: path, Message: "opened"}, nil
}
