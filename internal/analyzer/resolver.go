package analyzer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/codegraph/internal/graph"
	"github.com/jward/codegraph/internal/parser"
	"github.com/jward/codegraph/internal/store"
)

// Resolver links cross-file calls. It is stateless between runs: each pass
// loads the current symbol index from the store, re-extracts the project, and
// writes the CALLS edges it can resolve in one bulk insert.
type Resolver struct {
	registry *parser.Registry
	store    store.GraphStore
	log      *slog.Logger
	skipDirs map[string]bool
}

// NewResolver builds a resolver sharing the walker's directory exclusions.
func NewResolver(reg *parser.Registry, st store.GraphStore, log *slog.Logger, excludeDirs []string) *Resolver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if excludeDirs == nil {
		excludeDirs = DefaultSkipDirs
	}
	skip := map[string]bool{}
	for _, d := range excludeDirs {
		skip[d] = true
	}
	for _, d := range alwaysSkipDirs {
		skip[d] = true
	}
	return &Resolver{registry: reg, store: st, log: log, skipDirs: skip}
}

// Resolve walks the project and emits CALLS edges for relations whose source
// and target both resolve by bare name in the store's symbol index.
// Resolution ignores scope qualification, so same-named symbols across files
// collide; that coarseness is accepted. Returns the number of edges written.
func (r *Resolver) Resolve(ctx context.Context, root string) (int, error) {
	index, err := r.store.SymbolIndex(ctx)
	if err != nil {
		// Degrade to an empty index: every call drops with one warning.
		r.log.Warn("symbol index load failed, resolving against empty index", "error", err)
		index = map[string]string{}
	}

	var resolved []graph.Edge
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && r.skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		lang, ok := r.registry.LanguageForFile(d.Name())
		if !ok {
			return nil
		}
		ext, ok := r.registry.Get(lang)
		if !ok {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			r.log.Warn("read failed, skipping file", "path", path, "error", err)
			return nil
		}

		res := ext.Parse(content, relKey(root, path))
		for _, rel := range res.Relations {
			if rel.Type != parser.EdgeCalls {
				continue
			}
			srcID, ok := index[bareName(rel.Source)]
			if !ok {
				continue
			}
			dstID, ok := index[bareName(rel.Target)]
			if !ok {
				continue
			}
			resolved = append(resolved, graph.Edge{
				SourceID: srcID,
				TargetID: dstID,
				Type:     parser.EdgeCalls,
				Props:    rel.Props,
			})
		}
		return nil
	})
	if walkErr != nil {
		return 0, walkErr
	}

	if len(resolved) == 0 {
		r.log.Warn("no calls resolved, nothing to write")
		return 0, nil
	}

	res, err := r.store.BulkInsert(ctx, nil, resolved)
	if err != nil {
		return 0, err
	}
	r.log.Info("call resolution finished",
		"edges_created", res.EdgesCreated, "edges_skipped", res.EdgesSkipped)
	return res.EdgesCreated, nil
}

// bareName strips any scope qualification, keeping the trailing segment.
func bareName(s string) string {
	if i := strings.LastIndex(s, "::"); i >= 0 {
		return s[i+2:]
	}
	return s
}
