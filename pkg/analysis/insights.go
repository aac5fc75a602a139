package analysis

import (
	"fmt"

	"github.com/OFFIS-RIT/scholargraph/pkg/common"
)

const (
	highDensity     = 0.3
	moderateDensity = 0.1
)

// Density is the edge count divided by the number of unordered node pairs.
// An empty denominator counts as 1.
func (a *Analyzer) Density() float64 {
	n := len(a.nodes)
	pairs := float64(n*(n-1)) / 2
	if pairs == 0 {
		pairs = 1
	}
	return float64(len(a.edges)) / pairs
}

func densityTier(density float64) string {
	switch {
	case density > highDensity:
		return "highly interconnected"
	case density > moderateDensity:
		return "moderately connected"
	default:
		return "sparse"
	}
}

func (a *Analyzer) buildInsights(communities []Community, central CentralNodes) []string {
	insights := []string{}
	if len(a.nodes) == 0 {
		return insights
	}

	counts := make(map[common.NodeType]int, len(common.NodeTypes))
	for _, node := range a.nodes {
		counts[node.Type]++
	}
	insights = append(insights, fmt.Sprintf(
		"The knowledge graph contains %d %s, %d %s, %d %s, and %d %s.",
		counts[common.NodeTypePaper], common.NodeTypePaper.Plural(),
		counts[common.NodeTypeConcept], common.NodeTypeConcept.Plural(),
		counts[common.NodeTypeAuthor], common.NodeTypeAuthor.Plural(),
		counts[common.NodeTypeMethod], common.NodeTypeMethod.Plural(),
	))

	if len(communities) > 0 {
		largest := communities[0]
		insights = append(insights, fmt.Sprintf(
			"Detected %d research communities; the largest has %d members (%s).",
			len(communities), largest.Size, largest.Theme,
		))
	} else {
		insights = append(insights, "No research communities with more than one member were detected.")
	}

	if len(central.MostInfluential) > 0 {
		top := central.MostInfluential[0]
		insights = append(insights, fmt.Sprintf(
			"The most influential node is %q (%s) with a PageRank score of %.4f.",
			top.Label, top.Type, top.Score,
		))
	}

	density := a.Density()
	insights = append(insights, fmt.Sprintf(
		"Graph density is %.3f, indicating a %s network.",
		density, densityTier(density),
	))

	return insights
}
