package graph

import "math"

// DimensionWeights controls how the four metric dimensions combine into a
// single score. Values need not sum to 1; the combined score clamps to [0,1].
type DimensionWeights struct {
	Structural float64
	Functional float64
	Centrality float64
	Depth      float64
}

// DefaultDimensionWeights emphasizes functional criticality over structure:
// execution and debugging relationships matter most when ranking edges.
var DefaultDimensionWeights = DimensionWeights{
	Structural: 0.2,
	Functional: 0.5,
	Centrality: 0.2,
	Depth:      0.1,
}

// EdgeMetrics holds the four [0,1] dimensions computed per distinct
// (source, type, target) edge.
type EdgeMetrics struct {
	Structural float64
	Functional float64
	Centrality float64
	Depth      float64
}

type edgeKey struct {
	source, edgeType, target string
}

// MultiMetric computes four independent O(n) edge importance dimensions:
// structural rarity (inverse frequency), functional criticality (fixed
// per-type table), local centrality (degree-based), and semantic depth
// (scope nesting). All lookups after Fit are O(1).
type MultiMetric struct {
	typeCounts map[string]int
	totalEdges int
	inDegree   map[string]int
	outDegree  map[string]int
	metrics    map[edgeKey]EdgeMetrics
}

// NewMultiMetric returns an unfitted multi-metric model.
func NewMultiMetric() *MultiMetric {
	return &MultiMetric{
		typeCounts: map[string]int{},
		inDegree:   map[string]int{},
		outDegree:  map[string]int{},
		metrics:    map[edgeKey]EdgeMetrics{},
	}
}

// Fit makes two O(n) passes: one to count edge types and node degrees, one to
// compute the per-edge dimensions.
func (m *MultiMetric) Fit(edges []Edge) {
	for _, e := range edges {
		if e.Type == "" || e.Source == "" {
			continue
		}
		m.typeCounts[e.Type]++
		m.totalEdges++
		m.outDegree[e.Source]++
		if e.Target != "" {
			m.inDegree[e.Target]++
		}
	}

	for _, e := range edges {
		if e.Type == "" || e.Source == "" {
			continue
		}
		m.metrics[edgeKey{e.Source, e.Type, e.Target}] = EdgeMetrics{
			Structural: m.structuralWeight(e.Type),
			Functional: functionalWeight(e.Type),
			Centrality: m.centralityWeight(e.Source, e.Target),
			Depth:      depthWeight(e.Source, e.Target),
		}
	}
}

// structuralWeight is the inverse-frequency measure: 1 = rare, 0 = common.
func (m *MultiMetric) structuralWeight(edgeType string) float64 {
	if m.totalEdges == 0 {
		return 1.0
	}
	count := m.typeCounts[edgeType]
	if count == 0 {
		return 1.0
	}
	w := math.Log(float64(m.totalEdges+1) / float64(count+1))
	maxW := math.Log(float64(m.totalEdges + 1))
	if maxW <= 0 {
		return 1.0
	}
	return w / maxW
}

// functionalWeight maps an edge type to a hand-assigned execution criticality
// score. Flow edges rank highest, declarative structure lowest.
func functionalWeight(edgeType string) float64 {
	switch edgeType {
	case "CALLS", "ASYNC_AWAITS", "YIELDS", "RETURNS":
		return 1.0
	case "RAISES", "CATCHES":
		return 0.95
	case "DEFINES", "WRITES", "INSTANTIATES":
		return 0.8
	case "USES", "READS":
		return 0.7
	case "WITH_CONTEXT":
		return 0.65
	case "OVERRIDES", "DECORATES":
		return 0.5
	case "EXTENDS", "IMPLEMENTS", "IMPORTS":
		return 0.2
	}
	return 0.5
}

// centralityWeight averages the log-compressed total degree of both
// endpoints, normalized against a nominal maximum of 50 connections.
func (m *MultiMetric) centralityWeight(source, target string) float64 {
	norm := math.Log1p(50)
	sc := math.Log1p(float64(m.outDegree[source]+m.inDegree[source])) / norm
	tc := 0.0
	if target != "" {
		tc = math.Log1p(float64(m.outDegree[target]+m.inDegree[target])) / norm
	}
	return math.Min(1.0, (sc+tc)/2)
}

// depthWeight approximates scope nesting by counting the "::" separator in
// the endpoint identifiers, capped at five levels.
func depthWeight(source, target string) float64 {
	depth := countSep(source)
	if d := countSep(target); d > depth {
		depth = d
	}
	return math.Min(1.0, float64(depth)/5.0)
}

func countSep(s string) int {
	n := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == ':' && s[i+1] == ':' {
			n++
			i++
		}
	}
	return n
}

// CombinedWeight returns the weighted sum of the fitted dimensions for an
// edge, clamped to [0,1]. Unfitted edges score 0.5.
func (m *MultiMetric) CombinedWeight(source, edgeType, target string, weights DimensionWeights) float64 {
	metrics, ok := m.metrics[edgeKey{source, edgeType, target}]
	if !ok {
		return 0.5
	}
	combined := metrics.Structural*weights.Structural +
		metrics.Functional*weights.Functional +
		metrics.Centrality*weights.Centrality +
		metrics.Depth*weights.Depth
	return math.Min(1.0, combined)
}

// EnrichEdges returns a copy of the edges annotated with the four dimension
// weights, the combined weight, and an importance label.
func (m *MultiMetric) EnrichEdges(edges []Edge, weights DimensionWeights) []Edge {
	enriched := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.Source == "" || e.Type == "" {
			enriched = append(enriched, e)
			continue
		}
		metrics := m.metrics[edgeKey{e.Source, e.Type, e.Target}]
		props := copyProps(e.Props)
		props["structural_weight"] = metrics.Structural
		props["functional_weight"] = metrics.Functional
		props["centrality_weight"] = metrics.Centrality
		props["depth_weight"] = metrics.Depth
		combined := m.CombinedWeight(e.Source, e.Type, e.Target, weights)
		props["weight"] = combined
		props["importance_level"] = ImportanceLabel(combined)
		e.Props = props
		enriched = append(enriched, e)
	}
	return enriched
}

// ImportanceLabel maps a combined weight to a categorical label with strict
// thresholds at 0.75, 0.6, and 0.4.
func ImportanceLabel(weight float64) string {
	switch {
	case weight > 0.75:
		return "CRITICAL"
	case weight > 0.6:
		return "HIGH"
	case weight > 0.4:
		return "MEDIUM"
	default:
		return "LOW"
	}
}
