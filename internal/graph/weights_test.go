package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edgesOf(types map[string]int) []Edge {
	var edges []Edge
	for t, n := range types {
		for i := 0; i < n; i++ {
			edges = append(edges, Edge{Source: "a", Target: "b", Type: t})
		}
	}
	return edges
}

func TestWeightComputer_RareTypesScoreHigher(t *testing.T) {
	t.Parallel()

	c := NewWeightComputer(1.0)
	c.Fit(edgesOf(map[string]int{"CALLS": 8, "EXTENDS": 1, "IMPORTS": 1}))

	assert.Greater(t, c.Weight("EXTENDS"), c.Weight("CALLS"))
	assert.Greater(t, c.Weight("IMPORTS"), c.Weight("CALLS"))
	assert.InDelta(t, 1.0, c.Weight("EXTENDS"), 1e-9) // rarest normalizes to 1
}

func TestWeightComputer_Monotonicity(t *testing.T) {
	t.Parallel()

	c := NewWeightComputer(1.0)
	c.Fit(edgesOf(map[string]int{"A": 2, "B": 5, "C": 9}))

	assert.GreaterOrEqual(t, c.Weight("A"), c.Weight("B"))
	assert.GreaterOrEqual(t, c.Weight("B"), c.Weight("C"))
	for _, typ := range []string{"A", "B", "C"} {
		w := c.Weight(typ)
		assert.GreaterOrEqual(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
	}
}

func TestWeightComputer_UnseenTypeScoresOne(t *testing.T) {
	t.Parallel()

	c := NewWeightComputer(1.0)
	c.Fit(edgesOf(map[string]int{"CALLS": 3}))

	assert.Equal(t, 1.0, c.Weight("NEVER_SEEN"))
}

func TestWeightComputer_UniformDistribution(t *testing.T) {
	t.Parallel()

	c := NewWeightComputer(1.0)
	c.Fit(edgesOf(map[string]int{"ONLY": 4}))

	// Single type means zero raw weight, which falls back to uniform 1.0.
	assert.Equal(t, 1.0, c.Weight("ONLY"))
}

func TestWeightComputer_EmptyRelationSet(t *testing.T) {
	t.Parallel()

	c := NewWeightComputer(1.0)
	c.Fit(nil)

	assert.Equal(t, 1.0, c.Weight("CALLS"))
	assert.Equal(t, 0.0, c.Frequency("CALLS"))
}

func TestWeightComputer_Frequency(t *testing.T) {
	t.Parallel()

	c := NewWeightComputer(1.0)
	c.Fit(edgesOf(map[string]int{"CALLS": 8, "EXTENDS": 2}))

	assert.InDelta(t, 0.8, c.Frequency("CALLS"), 1e-9)
	assert.InDelta(t, 0.2, c.Frequency("EXTENDS"), 1e-9)
	assert.Equal(t, 0.0, c.Frequency("MISSING"))
}

func TestWeightComputer_EnrichEdges(t *testing.T) {
	t.Parallel()

	c := NewWeightComputer(1.0)
	edges := edgesOf(map[string]int{"CALLS": 3, "EXTENDS": 1})
	c.Fit(edges)

	enriched := c.EnrichEdges(edges)
	require.Len(t, enriched, len(edges))
	for _, e := range enriched {
		require.Contains(t, e.Props, "weight")
		require.Contains(t, e.Props, "frequency")
	}

	// Original edges stay untouched.
	for _, e := range edges {
		assert.Nil(t, e.Props)
	}
}

func TestWeightComputer_Statistics(t *testing.T) {
	t.Parallel()

	c := NewWeightComputer(1.0)
	c.Fit(edgesOf(map[string]int{"CALLS": 8, "EXTENDS": 1, "IMPORTS": 1}))

	stats := c.Statistics()
	assert.Equal(t, 10, stats.TotalEdges)
	assert.Equal(t, 3, stats.NumEdgeTypes)
	assert.Greater(t, stats.Entropy, 0.0)
	require.NotEmpty(t, stats.MostCommon)
	assert.Equal(t, "CALLS", stats.MostCommon[0].Type)
	assert.Equal(t, 8, stats.MostCommon[0].Count)
}

func TestSoftmaxWeightComputer_RenormalizesToUnitRange(t *testing.T) {
	t.Parallel()

	c := NewSoftmaxWeightComputer(1.0, 1.0)
	c.Fit(edgesOf(map[string]int{"CALLS": 8, "EXTENDS": 1, "IMPORTS": 1}))

	assert.InDelta(t, 1.0, c.Weight("EXTENDS"), 1e-9)
	assert.Greater(t, c.Weight("EXTENDS"), c.Weight("CALLS"))
	for _, typ := range []string{"CALLS", "EXTENDS", "IMPORTS"} {
		w := c.Weight(typ)
		assert.GreaterOrEqual(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
	}
}

func TestSoftmaxWeightComputer_TemperatureFlattens(t *testing.T) {
	t.Parallel()

	edges := edgesOf(map[string]int{"CALLS": 9, "EXTENDS": 1})

	cold := NewSoftmaxWeightComputer(0.5, 1.0)
	cold.Fit(edges)
	hot := NewSoftmaxWeightComputer(5.0, 1.0)
	hot.Fit(edges)

	// Higher temperature brings the common type closer to the rare one.
	assert.Greater(t, hot.Weight("CALLS"), cold.Weight("CALLS"))
}
