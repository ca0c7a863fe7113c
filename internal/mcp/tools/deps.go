package tools

import (
	"github.com/usestring/yamlcheck/internal/batch"
	"github.com/usestring/yamlcheck/internal/config"
	"github.com/usestring/yamlcheck/internal/formats"
	"github.com/usestring/yamlcheck/internal/schema"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config  *config.Config
	Runner  *batch.Runner
	Schema  *schema.Schema // used when a call does not supply its own
	Formats *formats.Registry
}
