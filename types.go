package codegraph

import (
	"github.com/jward/codegraph/internal/graph"
	"github.com/jward/codegraph/internal/parser"
	"github.com/jward/codegraph/internal/progress"
	"github.com/jward/codegraph/internal/store"
)

// Public type aliases for the internal types surfaced through the Engine API.
// These are Go type aliases (=) — identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Symbol = parser.Symbol
type Relation = parser.Relation
type Diagnostic = parser.Diagnostic
type ParseResult = parser.Result
type Ontology = parser.Ontology
type Extractor = parser.Extractor
type Registry = parser.Registry

type Node = graph.Node
type Edge = graph.Edge
type WeightComputer = graph.WeightComputer
type SoftmaxWeightComputer = graph.SoftmaxWeightComputer
type MultiMetric = graph.MultiMetric
type DimensionWeights = graph.DimensionWeights

type GraphStore = store.GraphStore
type BulkResult = store.BulkResult
type Notifier = progress.Notifier
