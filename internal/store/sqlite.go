package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jward/codegraph/internal/graph"
)

// SQLiteStore is a local GraphStore backed by two tables: nodes keyed by id
// and edges keyed by (source, target, type). Useful for offline analysis and
// tests; the production deployment talks to an external graph service via
// HTTPStore instead.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath with WAL mode
// enabled and migrates the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS nodes (
  id          TEXT PRIMARY KEY,
  label       TEXT NOT NULL,
  name        TEXT NOT NULL,
  path        TEXT,
  properties  TEXT
);

CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name);
CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes(label);

CREATE TABLE IF NOT EXISTS edges (
  source_id   TEXT NOT NULL,
  target_id   TEXT NOT NULL,
  type        TEXT NOT NULL,
  properties  TEXT,
  PRIMARY KEY (source_id, target_id, type)
);
`

// BulkInsert upserts nodes by id, then inserts edges. An edge endpoint may be
// given as a resolved node id or as raw text holding a qualified id or a bare
// name; endpoints that match no stored node cause the edge to be skipped and
// counted, mirroring match-then-create graph semantics. Created counts cover
// new rows only, not upserted existing ones.
func (s *SQLiteStore) BulkInsert(ctx context.Context, nodes []graph.Node, edges []graph.Edge) (BulkResult, error) {
	var res BulkResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	nodesBefore, err := tableCount(ctx, tx, "nodes")
	if err != nil {
		return res, err
	}
	edgesBefore, err := tableCount(ctx, tx, "edges")
	if err != nil {
		return res, err
	}

	for _, n := range nodes {
		props, err := json.Marshal(n.Props)
		if err != nil {
			return res, fmt.Errorf("marshal node properties: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO nodes (id, label, name, path, properties)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				label = excluded.label,
				name = excluded.name,
				path = excluded.path,
				properties = excluded.properties`,
			n.ID, n.Label, n.Name, n.Path, string(props))
		if err != nil {
			return res, fmt.Errorf("upsert node %s: %w", n.ID, err)
		}
	}

	for _, e := range edges {
		srcID, ok := s.resolveEndpoint(ctx, tx, e.SourceID, e.Source)
		if !ok {
			res.EdgesSkipped++
			continue
		}
		dstID, ok := s.resolveEndpoint(ctx, tx, e.TargetID, e.Target)
		if !ok {
			res.EdgesSkipped++
			continue
		}
		props, err := json.Marshal(e.Props)
		if err != nil {
			return res, fmt.Errorf("marshal edge properties: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO edges (source_id, target_id, type, properties)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(source_id, target_id, type) DO UPDATE SET
				properties = excluded.properties`,
			srcID, dstID, e.Type, string(props))
		if err != nil {
			return res, fmt.Errorf("insert edge %s-[%s]->%s: %w", srcID, e.Type, dstID, err)
		}
	}

	// Upserts make RowsAffected report updates too; row-count deltas give
	// the number of genuinely new rows.
	nodesAfter, err := tableCount(ctx, tx, "nodes")
	if err != nil {
		return res, err
	}
	edgesAfter, err := tableCount(ctx, tx, "edges")
	if err != nil {
		return res, err
	}
	res.NodesCreated = nodesAfter - nodesBefore
	res.EdgesCreated = edgesAfter - edgesBefore

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

func tableCount(ctx context.Context, tx *sql.Tx, table string) (int, error) {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// resolveEndpoint finds the node id for an edge endpoint. The explicit id
// field wins; the raw field holds either a scope-qualified node id (extractor
// relations) or a bare name, so it is tried as an id before the name lookup.
// Returns false when nothing matches.
func (s *SQLiteStore) resolveEndpoint(ctx context.Context, tx *sql.Tx, id, raw string) (string, bool) {
	if id != "" {
		var found string
		err := tx.QueryRowContext(ctx, `SELECT id FROM nodes WHERE id = ?`, id).Scan(&found)
		if err == nil {
			return found, true
		}
	}
	if raw != "" {
		var found string
		err := tx.QueryRowContext(ctx, `SELECT id FROM nodes WHERE id = ?`, raw).Scan(&found)
		if err == nil {
			return found, true
		}
		err = tx.QueryRowContext(ctx, `SELECT id FROM nodes WHERE name = ? LIMIT 1`, raw).Scan(&found)
		if err == nil {
			return found, true
		}
	}
	return "", false
}

// SymbolIndex returns name→id over all symbol nodes, excluding the
// folder/file scaffolding. Name collisions keep the last row scanned, which
// matches the coarse bare-name resolution the resolver performs.
func (s *SQLiteStore) SymbolIndex(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, id FROM nodes
		WHERE label NOT IN ('Folder', 'File') AND name != ''`)
	if err != nil {
		return nil, fmt.Errorf("query symbol index: %w", err)
	}
	defer rows.Close()

	index := map[string]string{}
	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("scan symbol row: %w", err)
		}
		index[name] = id
	}
	return index, rows.Err()
}
