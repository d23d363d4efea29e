// Package graph defines the node/edge shapes written to the graph store and
// the post-hoc edge weighting models that annotate relation sets with
// importance scores.
package graph

// Node is a graph vertex: a folder, file, or extracted symbol. ID is a stable
// path-derived key so repeated runs upsert rather than duplicate.
type Node struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Name  string         `json:"name"`
	Path  string         `json:"path,omitempty"`
	Props map[string]any `json:"properties,omitempty"`
}

// Edge is a directed relation between two nodes. SourceID/TargetID carry the
// stable node keys; Source/Target carry the raw extractor-reported names,
// which the store may need when an endpoint is not yet materialized.
type Edge struct {
	SourceID string         `json:"source_id,omitempty"`
	TargetID string         `json:"target_id,omitempty"`
	Source   string         `json:"source,omitempty"`
	Target   string         `json:"target,omitempty"`
	Type     string         `json:"type"`
	Props    map[string]any `json:"properties,omitempty"`
}
