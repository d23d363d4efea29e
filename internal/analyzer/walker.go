// Package analyzer walks a project tree, materializes folder/file/symbol
// nodes and their relations, and flushes them to a graph store in batches.
// A separate resolver pass links cross-file calls once the symbol index
// exists in the store.
package analyzer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jward/codegraph/internal/graph"
	"github.com/jward/codegraph/internal/parser"
	"github.com/jward/codegraph/internal/progress"
	"github.com/jward/codegraph/internal/store"
)

// DefaultBatchSize is the node/edge accumulation threshold before a flush.
const DefaultBatchSize = 1000

// DefaultSkipDirs are never traversed. Version-control metadata is always
// excluded even when the caller overrides the set.
var DefaultSkipDirs = []string{".git", ".svn", ".hg", "node_modules", "__pycache__", "vendor"}

// alwaysSkipDirs cannot be un-configured.
var alwaysSkipDirs = []string{".git", ".svn", ".hg"}

// Walker is the single-threaded project traversal orchestrator.
type Walker struct {
	registry  *parser.Registry
	store     store.GraphStore
	notifier  progress.Notifier
	log       *slog.Logger
	batchSize int
	skipDirs  map[string]bool
}

// NewWalker builds a walker. A nil notifier disables progress publication and
// a nil logger discards logs. excludeDirs extends the always-excluded
// version-control set; pass nil for the defaults.
func NewWalker(reg *parser.Registry, st store.GraphStore, notifier progress.Notifier, log *slog.Logger, batchSize int, excludeDirs []string) *Walker {
	if notifier == nil {
		notifier = progress.NopNotifier{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
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
	return &Walker{
		registry:  reg,
		store:     st,
		notifier:  notifier,
		log:       log,
		batchSize: batchSize,
		skipDirs:  skip,
	}
}

// Summary reports what a run accomplished.
type Summary struct {
	FilesSeen    int
	FilesParsed  int
	Symbols      int
	NodesCreated int
	EdgesCreated int
	EdgesSkipped int
	FlushErrors  int
}

type fileEntry struct {
	id   string // store key, root-relative
	path string // filesystem path for re-reads
}

// Run performs the full analysis: pre-count, main depth-first walk with
// extraction, then a symbol-usage text scan. Store flush failures are logged
// and dropped; the run continues.
func (w *Walker) Run(ctx context.Context, root string) (Summary, error) {
	runID := uuid.NewString()
	log := w.log.With("run_id", runID, "root", root)
	log.Info("analysis started")

	total := w.countEntries(root)
	if total == 0 {
		log.Warn("nothing to analyze")
		return Summary{}, nil
	}

	r := &run{
		w:             w,
		ctx:           ctx,
		log:           log,
		total:         total,
		lastPercent:   -1,
		symbolsByName: map[string]string{},
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != root && w.skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			r.visitDir(root, path)
		} else {
			r.visitFile(root, path)
		}
		r.advance()
		return nil
	})
	if err != nil {
		return r.summary, err
	}

	r.usagePass()
	r.flush(true)
	r.publish(100)

	log.Info("analysis finished",
		"files_seen", r.summary.FilesSeen,
		"files_parsed", r.summary.FilesParsed,
		"symbols", r.summary.Symbols,
		"nodes_created", r.summary.NodesCreated,
		"edges_created", r.summary.EdgesCreated,
		"edges_skipped", r.summary.EdgesSkipped,
		"flush_errors", r.summary.FlushErrors)
	return r.summary, nil
}

// countEntries is the pre-count pass establishing the progress denominator.
func (w *Walker) countEntries(root string) int {
	total := 0
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root && w.skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		total++
		return nil
	})
	return total
}

// run holds the mutable state of one traversal.
type run struct {
	w   *Walker
	ctx context.Context
	log *slog.Logger

	total       int
	processed   int
	lastPercent int

	nodes []graph.Node
	edges []graph.Edge

	files         []fileEntry
	symbolsByName map[string]string

	summary Summary
}

// relKey converts a filesystem path into the root-relative store key.
func relKey(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return "."
	}
	return filepath.ToSlash(rel)
}

func (r *run) visitDir(root, path string) {
	key := relKey(root, path)
	name := filepath.Base(path)
	r.addNode(graph.Node{ID: key, Label: "Folder", Name: name, Path: key})
	if key != "." {
		r.addEdge(graph.Edge{SourceID: parentKey(key), TargetID: key, Type: "CONTAINS"})
	}
}

func (r *run) visitFile(root, path string) {
	r.summary.FilesSeen++
	key := relKey(root, path)
	name := filepath.Base(path)
	r.addNode(graph.Node{
		ID: key, Label: "File", Name: name, Path: key,
		Props: map[string]any{"extension": filepath.Ext(name)},
	})
	r.addEdge(graph.Edge{SourceID: parentKey(key), TargetID: key, Type: "CONTAINS"})
	r.files = append(r.files, fileEntry{id: key, path: path})

	lang, ok := r.w.registry.LanguageForFile(name)
	if !ok {
		return
	}
	ext, ok := r.w.registry.Get(lang)
	if !ok {
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		// One bad file never stops the run.
		r.log.Warn("read failed, skipping file", "path", path, "error", err)
		return
	}

	res := ext.Parse(content, key)
	r.summary.FilesParsed++
	for _, d := range res.Diagnostics {
		r.log.Debug("extractor diagnostic", "path", key, "level", d.Level, "message", d.Message)
	}
	for _, sym := range res.Symbols {
		id := sym.ID
		if id == "" {
			id = key + "::" + sym.Name
		}
		props := map[string]any{"language": sym.Language}
		for k, v := range sym.Props {
			props[k] = v
		}
		r.addNode(graph.Node{ID: id, Label: sym.Type, Name: sym.Name, Path: key, Props: props})
		r.addEdge(graph.Edge{SourceID: key, TargetID: id, Type: "HAS_SYMBOL"})
		r.symbolsByName[sym.Name] = id
		r.summary.Symbols++
	}
	for _, rel := range res.Relations {
		r.addEdge(graph.Edge{
			Source: rel.Source, Target: rel.Target, Type: rel.Type, Props: rel.Props,
		})
	}
}

// usagePass re-reads every file and emits a USES_SYMBOL edge for each known
// symbol name found by plain substring containment. Not word-boundary aware:
// short names produce false positives, accepted as a coarse-matching
// tradeoff.
func (r *run) usagePass() {
	names := make([]string, 0, len(r.symbolsByName))
	for name := range r.symbolsByName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, f := range r.files {
		content, err := os.ReadFile(f.path)
		if err != nil {
			continue
		}
		text := string(content)
		for _, name := range names {
			symID := r.symbolsByName[name]
			if name == "" || symID == f.id+"::"+name {
				continue
			}
			if strings.Contains(text, name) {
				r.addEdge(graph.Edge{SourceID: f.id, TargetID: symID, Type: "USES_SYMBOL"})
			}
		}
	}
}

func (r *run) addNode(n graph.Node) {
	r.nodes = append(r.nodes, n)
	r.flush(false)
}

func (r *run) addEdge(e graph.Edge) {
	r.edges = append(r.edges, e)
	r.flush(false)
}

// flush sends the accumulated batch once either list reaches the threshold,
// or unconditionally when forced at end of run. Failures are logged and the
// batch is dropped.
func (r *run) flush(force bool) {
	if !force && len(r.nodes) < r.w.batchSize && len(r.edges) < r.w.batchSize {
		return
	}
	if len(r.nodes) == 0 && len(r.edges) == 0 {
		return
	}
	res, err := r.w.store.BulkInsert(r.ctx, r.nodes, r.edges)
	if err != nil {
		r.log.Error("batch flush failed, dropping batch",
			"nodes", len(r.nodes), "edges", len(r.edges), "error", err)
		r.summary.FlushErrors++
	} else {
		r.summary.NodesCreated += res.NodesCreated
		r.summary.EdgesCreated += res.EdgesCreated
		r.summary.EdgesSkipped += res.EdgesSkipped
	}
	r.nodes = r.nodes[:0]
	r.edges = r.edges[:0]
}

// advance bumps the processed counter and publishes the floor percentage when
// it strictly increases.
func (r *run) advance() {
	r.processed++
	r.publish(r.processed * 100 / r.total)
}

// publish pushes a progress update, de-duplicated and monotonic. Send
// failures are swallowed.
func (r *run) publish(percent int) {
	if percent <= r.lastPercent {
		return
	}
	r.lastPercent = percent
	if err := r.w.notifier.Publish(percent); err != nil {
		r.log.Debug("progress publish failed", "percent", percent, "error", err)
	}
}

func parentKey(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[:i]
	}
	return "."
}
