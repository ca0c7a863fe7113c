package mcpsrv

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/yamlcheck/internal/batch"
	"github.com/usestring/yamlcheck/internal/config"
	"github.com/usestring/yamlcheck/internal/formats"
	"github.com/usestring/yamlcheck/internal/logging"
	"github.com/usestring/yamlcheck/internal/mcp"
	"github.com/usestring/yamlcheck/internal/mcp/tools"
	"github.com/usestring/yamlcheck/internal/schema"
)

// Deps contains all dependencies available to custom tools.
type Deps = tools.Deps

// Server is the yamlcheck MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a new MCP server with the builtin yamlcheck tool.
func NewServer(opts ...Option) (*Server, error) {
	sc := &serverConfig{
		config:  config.Load(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(sc)
	}

	logCfg := logging.FromConfig(sc.config)
	if sc.logLevel != "" {
		logCfg.Level = sc.logLevel
	}
	if sc.logFile != "" {
		logCfg.FilePath = sc.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	s, err := loadSchema(sc.config.SchemaPath)
	if err != nil {
		_ = logCleanup()
		return nil, err
	}

	registry := formats.Default()
	deps := &Deps{
		Config:  sc.config,
		Runner:  batch.New(sc.config, batch.WithFormats(registry)),
		Schema:  s,
		Formats: registry,
	}

	internalOpts := []mcp.ServerOption{mcp.WithVersion(sc.version)}
	for _, fn := range sc.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range sc.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range sc.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(deps, internalOpts...)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return schema.Default()
	}
	return schema.LoadFile(path)
}

// Run starts the MCP server with stdio transport.
// The server runs until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.internal.Run(ctx)
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}
