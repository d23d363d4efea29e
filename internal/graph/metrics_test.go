package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiMetric_DimensionsBounded(t *testing.T) {
	t.Parallel()

	edges := []Edge{
		{Source: "a.py::f", Target: "a.py::g", Type: "CALLS"},
		{Source: "a.py::f", Target: "a.py::g", Type: "CALLS"},
		{Source: "a.py", Target: "os", Type: "IMPORTS"},
		{Source: "a.py::C::m", Target: "x", Type: "WRITES"},
	}
	m := NewMultiMetric()
	m.Fit(edges)

	for _, e := range edges {
		got := m.metrics[edgeKey{e.Source, e.Type, e.Target}]
		for _, v := range []float64{got.Structural, got.Functional, got.Centrality, got.Depth} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestMultiMetric_FunctionalTable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, functionalWeight("CALLS"))
	assert.Equal(t, 1.0, functionalWeight("RETURNS"))
	assert.Equal(t, 0.95, functionalWeight("RAISES"))
	assert.Equal(t, 0.8, functionalWeight("DEFINES"))
	assert.Equal(t, 0.7, functionalWeight("READS"))
	assert.Equal(t, 0.65, functionalWeight("WITH_CONTEXT"))
	assert.Equal(t, 0.5, functionalWeight("OVERRIDES"))
	assert.Equal(t, 0.2, functionalWeight("EXTENDS"))
	assert.Equal(t, 0.5, functionalWeight("SOMETHING_ELSE"))
}

func TestMultiMetric_DepthWeight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, depthWeight("main", ""))
	assert.InDelta(t, 0.2, depthWeight("a.py::f", "x"), 1e-9)
	assert.InDelta(t, 0.4, depthWeight("a.py::C::m", "x"), 1e-9)
	// Caps at five levels.
	assert.Equal(t, 1.0, depthWeight("a::b::c::d::e::f::g::h", "x"))
}

func TestMultiMetric_CombinedClampsWithOversizedWeights(t *testing.T) {
	t.Parallel()

	edges := []Edge{
		{Source: "a::b::c::d::e::f", Target: "a::b::c::d::e::g", Type: "CALLS"},
		{Source: "x", Target: "y", Type: "IMPORTS"},
	}
	m := NewMultiMetric()
	m.Fit(edges)

	// Dimension weights summing well past 1 still clamp to [0,1].
	heavy := DimensionWeights{Structural: 1, Functional: 1, Centrality: 1, Depth: 1}
	for _, e := range edges {
		w := m.CombinedWeight(e.Source, e.Type, e.Target, heavy)
		assert.GreaterOrEqual(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
	}
}

func TestMultiMetric_UnknownEdgeScoresHalf(t *testing.T) {
	t.Parallel()

	m := NewMultiMetric()
	m.Fit(nil)

	assert.Equal(t, 0.5, m.CombinedWeight("never", "CALLS", "seen", DefaultDimensionWeights))
}

func TestMultiMetric_EnrichEdges(t *testing.T) {
	t.Parallel()

	edges := []Edge{
		{Source: "a.py::f", Target: "a.py::g", Type: "CALLS"},
		{Source: "a.py", Target: "os", Type: "IMPORTS"},
	}
	m := NewMultiMetric()
	m.Fit(edges)

	enriched := m.EnrichEdges(edges, DefaultDimensionWeights)
	require.Len(t, enriched, 2)
	for _, e := range enriched {
		require.Contains(t, e.Props, "structural_weight")
		require.Contains(t, e.Props, "functional_weight")
		require.Contains(t, e.Props, "centrality_weight")
		require.Contains(t, e.Props, "depth_weight")
		require.Contains(t, e.Props, "weight")
		require.Contains(t, e.Props, "importance_level")

		w := e.Props["weight"].(float64)
		assert.Equal(t, ImportanceLabel(w), e.Props["importance_level"])
	}

	// CALLS is functionally critical; IMPORTS is declarative structure.
	callsW := enriched[0].Props["weight"].(float64)
	importsW := enriched[1].Props["weight"].(float64)
	assert.Greater(t, callsW, importsW)
}

func TestImportanceLabel_Partition(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "CRITICAL", ImportanceLabel(0.76))
	assert.Equal(t, "HIGH", ImportanceLabel(0.75))
	assert.Equal(t, "HIGH", ImportanceLabel(0.61))
	assert.Equal(t, "MEDIUM", ImportanceLabel(0.6))
	assert.Equal(t, "MEDIUM", ImportanceLabel(0.41))
	assert.Equal(t, "LOW", ImportanceLabel(0.4))
	assert.Equal(t, "LOW", ImportanceLabel(0.0))
}
