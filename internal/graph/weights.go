package graph

import (
	"math"
	"sort"
)

// WeightComputer assigns inverse-frequency weights to edge types. Rare edge
// types carry more information and score near 1; common types score near 0.
// The idea is IDF from information retrieval applied to edge labels.
type WeightComputer struct {
	smoothing  float64
	typeCounts map[string]int
	totalEdges int
	weights    map[string]float64
}

// NewWeightComputer returns a computer with Laplace smoothing. A smoothing of
// 1.0 corresponds to a uniform prior.
func NewWeightComputer(smoothing float64) *WeightComputer {
	return &WeightComputer{
		smoothing:  smoothing,
		typeCounts: map[string]int{},
		weights:    map[string]float64{},
	}
}

// Fit counts edge types across the relation set and computes normalized
// inverse-frequency weights. Safe to call on an empty set.
func (c *WeightComputer) Fit(edges []Edge) {
	for _, e := range edges {
		if e.Type != "" {
			c.typeCounts[e.Type]++
			c.totalEdges++
		}
	}
	if c.totalEdges == 0 {
		return
	}

	// w(t) = log((N + s) / (count(t) + s)), normalized by the max so the
	// rarest type lands at 1.0.
	raw := map[string]float64{}
	maxWeight := 0.0
	for t, count := range c.typeCounts {
		w := math.Log((float64(c.totalEdges) + c.smoothing) / (float64(count) + c.smoothing))
		raw[t] = w
		if w > maxWeight {
			maxWeight = w
		}
	}
	if maxWeight > 0 {
		for t, w := range raw {
			c.weights[t] = w / maxWeight
		}
	} else {
		// All types equally frequent: uniform weights.
		for t := range c.typeCounts {
			c.weights[t] = 1.0
		}
	}
}

// Weight returns the fitted weight for an edge type. Unseen types score 1.0
// (maximum information).
func (c *WeightComputer) Weight(edgeType string) float64 {
	if w, ok := c.weights[edgeType]; ok {
		return w
	}
	return 1.0
}

// Frequency returns the normalized occurrence frequency of an edge type.
func (c *WeightComputer) Frequency(edgeType string) float64 {
	if c.totalEdges == 0 {
		return 0.0
	}
	return float64(c.typeCounts[edgeType]) / float64(c.totalEdges)
}

// EnrichEdges returns a copy of the edges with weight and frequency
// properties set from the fitted model.
func (c *WeightComputer) EnrichEdges(edges []Edge) []Edge {
	enriched := make([]Edge, 0, len(edges))
	for _, e := range edges {
		props := copyProps(e.Props)
		if e.Type != "" {
			props["weight"] = c.Weight(e.Type)
			props["frequency"] = c.Frequency(e.Type)
		} else {
			props["weight"] = 1.0
			props["frequency"] = 0.0
		}
		e.Props = props
		enriched = append(enriched, e)
	}
	return enriched
}

// TypeCount is an edge type with its occurrence count.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Statistics summarizes the fitted edge type distribution.
type Statistics struct {
	TotalEdges   int                `json:"total_edges"`
	NumEdgeTypes int                `json:"num_edge_types"`
	MostCommon   []TypeCount        `json:"most_common"`
	LeastCommon  []TypeCount        `json:"least_common"`
	Entropy      float64            `json:"entropy"`
	Weights      map[string]float64 `json:"weights"`
}

// Statistics reports the distribution: the five most and least common types,
// Shannon entropy in bits, and the fitted weights.
func (c *WeightComputer) Statistics() Statistics {
	sorted := make([]TypeCount, 0, len(c.typeCounts))
	for t, n := range c.typeCounts {
		sorted = append(sorted, TypeCount{Type: t, Count: n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Type < sorted[j].Type
	})

	top := 5
	if top > len(sorted) {
		top = len(sorted)
	}
	weights := make(map[string]float64, len(c.weights))
	for t, w := range c.weights {
		weights[t] = w
	}
	return Statistics{
		TotalEdges:   c.totalEdges,
		NumEdgeTypes: len(c.typeCounts),
		MostCommon:   sorted[:top],
		LeastCommon:  sorted[len(sorted)-top:],
		Entropy:      c.entropy(),
		Weights:      weights,
	}
}

// entropy computes Shannon entropy of the type distribution in bits. Higher
// means more uniform, lower means more skewed.
func (c *WeightComputer) entropy() float64 {
	if c.totalEdges == 0 {
		return 0.0
	}
	h := 0.0
	for _, count := range c.typeCounts {
		p := float64(count) / float64(c.totalEdges)
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// SoftmaxWeightComputer re-scales the inverse-frequency logits through a
// temperature-controlled softmax before renormalizing to [0,1]. Higher
// temperature flattens the distribution; lower temperature peaks it.
type SoftmaxWeightComputer struct {
	WeightComputer
	temperature float64
}

// NewSoftmaxWeightComputer returns a softmax variant with the given
// temperature and Laplace smoothing.
func NewSoftmaxWeightComputer(temperature, smoothing float64) *SoftmaxWeightComputer {
	return &SoftmaxWeightComputer{
		WeightComputer: *NewWeightComputer(smoothing),
		temperature:    temperature,
	}
}

// Fit counts edge types and computes softmax-scaled weights.
func (c *SoftmaxWeightComputer) Fit(edges []Edge) {
	c.WeightComputer.Fit(edges)
	if c.totalEdges == 0 {
		return
	}

	expVals := map[string]float64{}
	sumExp := 0.0
	for t, count := range c.typeCounts {
		logit := math.Log((float64(c.totalEdges) + c.smoothing) / (float64(count) + c.smoothing))
		v := math.Exp(logit / c.temperature)
		expVals[t] = v
		sumExp += v
	}
	if sumExp <= 0 {
		return
	}

	maxWeight := 0.0
	for t, v := range expVals {
		w := v / sumExp
		c.weights[t] = w
		if w > maxWeight {
			maxWeight = w
		}
	}
	if maxWeight > 0 {
		for t, w := range c.weights {
			c.weights[t] = w / maxWeight
		}
	}
}

func copyProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props)+2)
	for k, v := range props {
		out[k] = v
	}
	return out
}
