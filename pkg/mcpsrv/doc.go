// Package mcpsrv provides an extensible MCP server for yamlcheck.
//
// The server exposes the yamlcheck_validate tool, which validates YAML
// documents against a JSON Schema, plus resources describing the default
// schema and the supported formats. Callers can add their own tools and
// prompts with functional options.
//
// # Basic Usage
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Configuration
//
// Configuration is read from the environment (see internal/config) and can
// be overridden:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithSchemaPath("schemas/service.json"),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/yamlcheck.log"),
//	)
//
// # Extension
//
// Tools that need the batch runner receive Deps:
//
//	mcpsrv.WithDepsTool(
//	    &mcp.Tool{Name: "lint_manifest", Description: "Validate a manifest"},
//	    func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, in MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	        return func(ctx context.Context, req *mcp.CallToolRequest, in MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	            res, err := d.Runner.Run(ctx, d.Schema, sources(in), false)
//	            ...
//	        }
//	    },
//	)
package mcpsrv
