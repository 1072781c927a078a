package commentserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/toolutil"
)

func registerGetAPIKey(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_api_key",
		Description: "Report whether a YouTube Data API key is configured (stored per user, or YOUTUBE_API_KEY). The key is returned masked.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, engine.APIKeyOutput, error) {
		out, err := t.getAPIKey(ctx)
		return nil, out, err
	})
}

func registerSetAPIKey(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_api_key",
		Description: "Store a YouTube Data API key for this user. Used by export_comments when no api_key is passed and YOUTUBE_API_KEY is unset.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.APIKeyInput) (*mcp.CallToolResult, engine.APIKeyOutput, error) {
		out, err := t.setAPIKey(ctx, input)
		return nil, out, err
	})
}

func (t *tools) getAPIKey(ctx context.Context) (engine.APIKeyOutput, error) {
	key, source, err := toolutil.ResolveAPIKey(ctx, "", t.deps.Store)
	if err != nil {
		return engine.APIKeyOutput{}, err
	}
	if key == "" {
		return engine.APIKeyOutput{Message: "no API key configured; call set_api_key"}, nil
	}
	return engine.APIKeyOutput{
		Configured: true,
		APIKey:     toolutil.MaskKey(key),
		Message:    "key from " + source,
	}, nil
}

func (t *tools) setAPIKey(ctx context.Context, input engine.APIKeyInput) (engine.APIKeyOutput, error) {
	key := strings.TrimSpace(input.APIKey)
	if key == "" {
		return engine.APIKeyOutput{}, errors.New("api_key is required")
	}
	if err := t.deps.Store.SetAPIKey(ctx, key); err != nil {
		return engine.APIKeyOutput{}, err
	}
	return engine.APIKeyOutput{
		Configured: true,
		APIKey:     toolutil.MaskKey(key),
		Message:    "key saved",
	}, nil
}
