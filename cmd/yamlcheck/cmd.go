package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/usestring/yamlcheck/internal/batch"
	"github.com/usestring/yamlcheck/internal/config"
	"github.com/usestring/yamlcheck/internal/logging"
	"github.com/usestring/yamlcheck/internal/schema"
	"github.com/usestring/yamlcheck/pkg/mcpsrv"
	"github.com/usestring/yamlcheck/pkg/types"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitFatal  = 2
)

// exitError carries the exit code for an error returned from a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// errDocumentsFailed marks a run where at least one document failed. The
// diagnostics were already printed.
var errDocumentsFailed = &exitError{code: exitFailed}

type options struct {
	schemaPath string
	verbose    bool
	noVerbose  bool
	workers    int
	format     string
}

// run executes the command line in args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	cmd := newRootCmd(cfg, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}

	// Flag and argument errors from cobra.
	fmt.Fprintf(stderr, "Error: %v\n", err)
	fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.CommandPath())
	return exitFatal
}

func newRootCmd(cfg *config.Config, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "yamlcheck [flags] <document>...",
		Short:         "Validate YAML documents against a JSON Schema",
		Long:          `yamlcheck validates each YAML document against a JSON Schema (draft-07) and prints a bounded diagnostic for every document that fails. Valid documents produce no output.`,
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose := cfg.Verbose
			if cmd.Flags().Changed("verbose") {
				verbose = opts.verbose
			}
			if cmd.Flags().Changed("no-verbose") && opts.noVerbose {
				verbose = false
			}
			cfg.Workers = opts.workers
			if opts.format != config.FormatText && opts.format != config.FormatJSON {
				return &exitError{code: exitFatal, err: fmt.Errorf("unknown format %q: want %q or %q", opts.format, config.FormatText, config.FormatJSON)}
			}
			cfg.Format = opts.format

			cleanup, err := setupLogging(cfg, stderr)
			if err != nil {
				return &exitError{code: exitFatal, err: err}
			}
			defer cleanup()

			return validateDocuments(cmd.Context(), cfg, opts.schemaPath, args, verbose, cmd.OutOrStdout(), stderr)
		},
	}

	root.PersistentFlags().StringVarP(&opts.schemaPath, "schema", "s", cfg.SchemaPath, "JSON Schema file (default: bundled citation schema)")
	root.Flags().BoolVar(&opts.verbose, "verbose", false, "Print every diagnostic line instead of the first 25 per document")
	root.Flags().BoolVar(&opts.noVerbose, "no-verbose", false, "Cut long diagnostics (default)")
	root.Flags().IntVar(&opts.workers, "workers", cfg.Workers, "Number of documents validated concurrently")
	root.Flags().StringVar(&opts.format, "format", cfg.Format, "Output format: text (diagnostics on stderr) or json (batch result on stdout)")
	root.MarkFlagsMutuallyExclusive("verbose", "no-verbose")

	root.AddCommand(newServeCmd(cfg, opts, stderr))
	root.AddCommand(newReportSchemaCmd())
	return root
}

func newServeCmd(cfg *config.Config, opts *options, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve validation over MCP on stdio",
		Long:  `The serve command runs a Model Context Protocol server on stdin/stdout that exposes the yamlcheck_validate tool.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := mcpsrv.NewServer(
				mcpsrv.WithConfig(cfg),
				mcpsrv.WithSchemaPath(opts.schemaPath),
				mcpsrv.WithVersion(version),
			)
			if err != nil {
				return &exitError{code: exitFatal, err: err}
			}
			defer srv.Close()

			slog.Info("starting yamlcheck MCP server on stdio")
			if err := srv.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return &exitError{code: exitFatal, err: fmt.Errorf("server error: %w", err)}
			}
			slog.Info("server stopped")
			return nil
		},
	}
}

func newReportSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report-schema",
		Short: "Print the JSON Schema of --format json output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), types.OutputSchema())
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogging(cfg *config.Config, stderr io.Writer) (func() error, error) {
	logCfg := logging.FromConfig(cfg)
	logCfg.Stderr = stderr
	cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return cleanup, nil
}

// validateDocuments runs one batch and prints a block per failing document,
// or the whole result as JSON on stdout.
func validateDocuments(ctx context.Context, cfg *config.Config, schemaPath string, paths []string, verbose bool, stdout, stderr io.Writer) error {
	s, err := loadSchema(schemaPath)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}

	res, err := batch.New(cfg).Run(ctx, s, batch.FileSources(paths), verbose)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}

	if cfg.Format == config.FormatJSON {
		if err := writeJSON(stdout, res); err != nil {
			return &exitError{code: exitFatal, err: fmt.Errorf("writing result: %w", err)}
		}
	} else {
		for _, r := range res.Reports {
			fmt.Fprintln(stderr, r.Text)
		}
	}
	if !res.OK() {
		return errDocumentsFailed
	}
	return nil
}

func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return schema.Default()
	}
	return schema.LoadFile(path)
}
