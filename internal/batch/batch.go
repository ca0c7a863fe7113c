// Package batch validates many documents against one schema.
//
// A batch is fail-soft: every document is checked independently and a
// document that cannot be parsed does not stop the others. Only a schema
// that cannot be compiled aborts the run, before any document is looked at.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/yamlcheck/internal/cache"
	"github.com/usestring/yamlcheck/internal/config"
	"github.com/usestring/yamlcheck/internal/document"
	"github.com/usestring/yamlcheck/internal/formats"
	"github.com/usestring/yamlcheck/internal/report"
	"github.com/usestring/yamlcheck/internal/schema"
	"github.com/usestring/yamlcheck/internal/validate"
	"github.com/usestring/yamlcheck/pkg/types"
)

// ErrNoSchema is returned by Run when called without a schema.
var ErrNoSchema = errors.New("no schema given")

// Source is one document to validate. A non-nil Err marks a document that
// could not be read; it is reported as unparsable.
type Source struct {
	ID   string
	Data []byte
	Err  error
}

// FileSources reads each path into a Source. Read failures are kept on the
// Source rather than returned.
func FileSources(paths []string) []Source {
	sources := make([]Source, len(paths))
	for i, path := range paths {
		data, err := document.ReadFile(path)
		sources[i] = Source{ID: path, Data: data, Err: err}
	}
	return sources
}

// Runner validates batches of documents.
type Runner struct {
	workers          int
	maxDocumentBytes int
	formatter        *report.Formatter
	formats          *formats.Registry
	engines          *cache.EngineCache
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets how many documents are checked at once. Values below 1
// mean sequential.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithFormatter replaces the report formatter built from the config.
func WithFormatter(f *report.Formatter) Option {
	return func(r *Runner) {
		r.formatter = f
	}
}

// WithFormats replaces the default format registry.
func WithFormats(reg *formats.Registry) Option {
	return func(r *Runner) {
		r.formats = reg
	}
}

// WithEngineCache shares a compiled-engine cache between runners.
// A nil cache disables caching.
func WithEngineCache(c *cache.EngineCache) Option {
	return func(r *Runner) {
		r.engines = c
	}
}

// New creates a Runner from cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		workers:          cfg.Workers,
		maxDocumentBytes: cfg.MaxDocumentBytes,
		formatter: report.New(
			report.WithMaxLines(cfg.MaxReportLines),
			report.WithCompact(cfg.CompactOptions()),
		),
		formats: formats.Default(),
	}

	engines, err := cache.NewEngineCache(cfg.EngineCacheMaxItems)
	if err != nil {
		slog.Warn("engine cache disabled",
			slog.Int("max_items", cfg.EngineCacheMaxItems),
			slog.String("error", err.Error()),
		)
	} else {
		r.engines = engines
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates every source against s. Reports for failing documents are
// returned in input order. The returned error is a *schema.SchemaParseError
// or *validate.SchemaCompileError for an unusable schema, or the context's
// error if ctx ends before the batch does.
func (r *Runner) Run(ctx context.Context, s *schema.Schema, sources []Source, verbose bool) (*types.BatchResult, error) {
	if s == nil {
		return nil, ErrNoSchema
	}

	start := time.Now()
	engine, err := r.engine(s)
	if err != nil {
		return nil, err
	}

	reports := make([]*types.Report, len(sources))
	if r.workers <= 1 {
		for i, src := range sources {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			reports[i] = r.check(engine, src, verbose)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)

		for i, src := range sources {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				reports[i] = r.check(engine, src, verbose)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	result := &types.BatchResult{}
	for _, rep := range reports {
		if rep == nil {
			result.Passed++
			continue
		}
		result.Failed++
		result.Reports = append(result.Reports, *rep)
	}

	slog.Info("batch finished",
		slog.String("schema", s.Source),
		slog.Int("documents", len(sources)),
		slog.Int("passed", result.Passed),
		slog.Int("failed", result.Failed),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (r *Runner) engine(s *schema.Schema) (*validate.Engine, error) {
	newEngine := func(s *schema.Schema) *validate.Engine {
		return validate.New(s, validate.WithFormats(r.formats))
	}
	if r.engines != nil {
		return r.engines.GetOrCreate(s, newEngine)
	}
	e := newEngine(s)
	if err := e.Compile(); err != nil {
		return nil, err
	}
	return e, nil
}

// check validates one source and returns its report, or nil when it passes.
// A panic while checking becomes this document's report.
func (r *Runner) check(engine *validate.Engine, src Source, verbose bool) (rep *types.Report) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("document check panicked",
				slog.String("document", src.ID),
				slog.Any("panic", p),
			)
			rep = r.fail(src.ID, types.CategorySchema, []types.Violation{{
				Message: fmt.Sprintf("internal error while validating: %v", p),
				Kind:    types.KindStructural,
			}}, verbose)
		}
	}()

	if err := r.load(src); err != nil {
		return r.fail(src.ID, types.CategoryParse, validate.ParseFailure(err), verbose)
	}

	doc, err := document.Load(src.ID, src.Data)
	if err != nil {
		return r.fail(src.ID, types.CategoryParse, validate.ParseFailure(err), verbose)
	}

	violations, err := engine.Validate(doc)
	if err != nil {
		// The engine was compiled before the batch started.
		return r.fail(src.ID, types.CategorySchema, []types.Violation{{
			Message: err.Error(),
			Kind:    types.KindStructural,
		}}, verbose)
	}
	if len(violations) == 0 {
		slog.Debug("document passed", slog.String("document", src.ID))
		return nil
	}
	return r.fail(src.ID, types.CategorySchema, violations, verbose)
}

func (r *Runner) load(src Source) error {
	if src.Err != nil {
		return src.Err
	}
	return document.CheckSize(src.ID, src.Data, r.maxDocumentBytes)
}

func (r *Runner) fail(id string, category types.FailureCategory, violations []types.Violation, verbose bool) *types.Report {
	rep := r.formatter.Build(id, category, violations, verbose)
	slog.Debug("document failed",
		slog.String("document", id),
		slog.String("category", string(category)),
		slog.Int("violations", len(violations)),
		slog.Bool("truncated", rep.Truncated),
	)
	return &rep
}
