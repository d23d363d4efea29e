// Package codegraph turns multi-language source trees into a typed code
// knowledge graph.
//
// Seven language extractors (Python, JavaScript/TypeScript, Vue, PHP, Bash,
// C, Rust) convert file content into symbols and typed relations, each backed
// by a tree-sitter grammar where one exists and a regex fallback where it
// does not. The Engine walks a project tree, materializes folder, file, and
// symbol nodes with containment and relation edges, and bulk-writes them to a
// graph store (an external HTTP graph service or a local SQLite database) in
// batches, publishing progress over a line-delimited JSON socket channel.
//
// A second, independent pass resolves cross-file calls by bare-name lookup
// against the store's symbol index. Two post-hoc weighting models
// (inverse-frequency and multi-dimensional) annotate relation sets with
// importance scores.
//
// Basic use:
//
//	st, err := store.NewSQLiteStore("codegraph.db")
//	if err != nil { ... }
//	eng := codegraph.New(st, codegraph.WithLogger(logger))
//	summary, err := eng.Analyze(ctx, "/path/to/project")
package codegraph
