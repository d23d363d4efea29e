package codegraph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jward/codegraph/internal/analyzer"
	"github.com/jward/codegraph/internal/parser"
	"github.com/jward/codegraph/internal/progress"
	"github.com/jward/codegraph/internal/store"
)

// Engine is the top-level entry point: it owns the extractor registry and
// drives analysis, call resolution, and single-content parsing against one
// graph store.
type Engine struct {
	registry    *parser.Registry
	store       store.GraphStore
	notifier    progress.Notifier
	log         *slog.Logger
	batchSize   int
	excludeDirs []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithBatchSize overrides the store flush threshold.
func WithBatchSize(n int) Option {
	return func(e *Engine) { e.batchSize = n }
}

// WithNotifier sets the progress channel for analysis runs.
func WithNotifier(n progress.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the structured logger. Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithExcludeDirs replaces the default excluded-directory set.
// Version-control metadata directories stay excluded regardless.
func WithExcludeDirs(dirs []string) Option {
	return func(e *Engine) { e.excludeDirs = dirs }
}

// WithRegistry substitutes a custom extractor registry, e.g. the fallback
// registry when grammar bindings must be avoided.
func WithRegistry(r *parser.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// New builds an Engine writing to st.
func New(st store.GraphStore, opts ...Option) *Engine {
	e := &Engine{
		registry:  parser.NewRegistry(),
		store:     st,
		notifier:  progress.NopNotifier{},
		log:       slog.New(slog.DiscardHandler),
		batchSize: analyzer.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summary reports what an analysis run accomplished.
type Summary = analyzer.Summary

// Analyze runs the full traversal over root: folder/file hierarchy, symbol
// extraction, and the symbol-usage pass, flushed to the store in batches.
func (e *Engine) Analyze(ctx context.Context, root string) (Summary, error) {
	w := analyzer.NewWalker(e.registry, e.store, e.notifier, e.log, e.batchSize, e.excludeDirs)
	return w.Run(ctx, root)
}

// ResolveCalls runs the cross-file call resolution pass over root, linking
// CALLS edges between symbols already present in the store. Returns the
// number of edges written.
func (e *Engine) ResolveCalls(ctx context.Context, root string) (int, error) {
	r := analyzer.NewResolver(e.registry, e.store, e.log, e.excludeDirs)
	return r.Resolve(ctx, root)
}

// Parse extracts symbols and relations from a single content buffer without
// touching the store.
func (e *Engine) Parse(language string, content []byte, path string) (ParseResult, error) {
	ext, ok := e.registry.Get(strings.ToLower(language))
	if !ok {
		return ParseResult{}, fmt.Errorf("unsupported language: %s", language)
	}
	return ext.Parse(content, path), nil
}

// Languages returns the sorted canonical language names.
func (e *Engine) Languages() []string {
	return e.registry.Languages()
}

// Ontologies returns the declared node/edge vocabulary per language.
func (e *Engine) Ontologies() map[string]Ontology {
	return e.registry.Ontologies()
}

// Registry exposes the engine's extractor registry, primarily for wiring the
// HTTP API layer.
func (e *Engine) Registry() *parser.Registry {
	return e.registry
}
