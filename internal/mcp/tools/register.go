package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "yamlcheck_validate",
		Description: "Validate YAML documents against a JSON Schema (draft-07). Without a schema, the bundled citation schema is used. Returns one report per failing document with a JSON pointer, message and schema location for each violation. Reports over 25 lines are cut unless verbose is set.",
	}, ToolValidate(d))
}
