package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/yamlcheck/internal/mcp/tools"
)

// Resource URIs.
const (
	URIDefaultSchema = "yamlcheck://schema/default"
	URIFormats       = "yamlcheck://formats"
)

// registerResources registers the static resources.
func (s *Server) registerResources() {
	if s.deps.Schema != nil {
		s.mcpServer.AddResource(&sdkmcp.Resource{
			URI:         URIDefaultSchema,
			Name:        "Default Schema",
			Description: "The JSON Schema used when yamlcheck_validate is called without one.",
			MIMEType:    tools.MimeJSON,
		}, s.handleDefaultSchema)
	}

	if s.deps.Formats != nil {
		s.mcpServer.AddResource(&sdkmcp.Resource{
			URI:         URIFormats,
			Name:        "Supported Formats",
			Description: "Names of the \"format\" values that are checked. Any other format fails validation.",
			MIMEType:    tools.MimeJSON,
		}, s.handleFormats)
	}
}

func (s *Server) handleDefaultSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: tools.MimeJSON,
				Text:     string(s.deps.Schema.Raw),
			},
		},
	}, nil
}

func (s *Server) handleFormats(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return toResourceResult(req.Params.URI, map[string]any{
		"formats": s.deps.Formats.Names(),
	})
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
