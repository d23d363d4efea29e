// Package store provides the graph store backends: an HTTP client for an
// external graph service and a local SQLite implementation. Both expose bulk
// node/edge upserts and the symbol index the call resolver needs.
package store

import (
	"context"

	"github.com/jward/codegraph/internal/graph"
)

// BulkResult reports what a bulk insert actually wrote. Edges whose endpoints
// do not resolve to existing nodes are skipped, not failed.
type BulkResult struct {
	NodesCreated int `json:"nodes_created"`
	EdgesCreated int `json:"edges_created"`
	EdgesSkipped int `json:"edges_skipped"`
}

// GraphStore is the write/query surface the analyzer depends on. Inserts are
// at-least-once with no transactional guarantee across batches: a failed
// batch is the caller's to log and drop.
type GraphStore interface {
	// BulkInsert upserts nodes by id and inserts edges whose endpoints
	// exist, returning counts of what was created and skipped.
	BulkInsert(ctx context.Context, nodes []graph.Node, edges []graph.Edge) (BulkResult, error)

	// SymbolIndex returns the name→id map over all symbol nodes currently
	// in the store.
	SymbolIndex(ctx context.Context) (map[string]string, error)
}
