package analysis

import (
	"sort"

	"github.com/OFFIS-RIT/scholargraph/pkg/common"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"
)

// DefaultTopK is the number of nodes listed per central node ranking.
const DefaultTopK = 10

const (
	degreeWeight      = 0.3
	pageRankWeight    = 0.5
	betweennessWeight = 0.2
)

// NodeMetrics holds the structural scores of one node.
type NodeMetrics struct {
	DegreeCentrality      float64 `json:"degree_centrality"`
	PageRank              float64 `json:"pagerank"`
	BetweennessCentrality float64 `json:"betweenness_centrality"`
	InfluenceScore        float64 `json:"influence_score"`
}

// Community is a group of nodes that ended up sharing a propagated label.
type Community struct {
	ID      int      `json:"id"`
	Size    int      `json:"size"`
	Members []string `json:"members"`
	Theme   string   `json:"theme"`
}

// RankedNode is an entry of a central node ranking.
type RankedNode struct {
	ID    string          `json:"id"`
	Label string          `json:"label"`
	Type  common.NodeType `json:"type"`
	Score float64         `json:"score"`
}

// CentralNodes lists the top nodes by PageRank, degree and betweenness.
type CentralNodes struct {
	MostInfluential []RankedNode `json:"most_influential"`
	MostConnected   []RankedNode `json:"most_connected"`
	KeyBridges      []RankedNode `json:"key_bridges"`
}

// Result is the full analysis of a snapshot.
type Result struct {
	NodeMetrics  map[string]NodeMetrics `json:"node_metrics"`
	Communities  []Community            `json:"communities"`
	CentralNodes CentralNodes           `json:"central_nodes"`
	Insights     []string               `json:"insights"`
}

type neighbor struct {
	index  int
	weight float64
}

// Analyzer computes metrics over an immutable graph snapshot. It never
// modifies the snapshot it was built from and is safe for concurrent use once
// constructed.
type Analyzer struct {
	nodes []common.Node
	edges []common.Edge
	index map[string]int

	// sources/targets mirror edges as node indices.
	sources []int
	targets []int

	// adjacency is used for traversal. Symmetric edge types are present in
	// both directions and every list is ordered by node position, which fixes
	// the tie-break between equally short paths.
	adjacency [][]neighbor

	topK int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTopK sets the size of the central node rankings.
func WithTopK(k int) Option {
	return func(a *Analyzer) {
		if k > 0 {
			a.topK = k
		}
	}
}

// NewAnalyzer prepares a snapshot for analysis. Edges that reference unknown
// nodes are ignored.
func NewAnalyzer(snapshot common.Snapshot, opts ...Option) *Analyzer {
	a := &Analyzer{
		index: make(map[string]int, len(snapshot.Nodes)),
		topK:  DefaultTopK,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(a)
	}

	a.nodes = make([]common.Node, 0, len(snapshot.Nodes))
	for _, node := range snapshot.Nodes {
		if _, ok := a.index[node.ID]; ok {
			logger.Warn("[Analysis] Ignoring duplicate node", "node", node.ID)
			continue
		}
		a.index[node.ID] = len(a.nodes)
		a.nodes = append(a.nodes, node)
	}

	a.adjacency = make([][]neighbor, len(a.nodes))
	for _, edge := range snapshot.Edges {
		s, okSource := a.index[edge.Source]
		t, okTarget := a.index[edge.Target]
		if !okSource || !okTarget {
			logger.Warn("[Analysis] Ignoring edge with unknown endpoint", "source", edge.Source, "target", edge.Target)
			continue
		}

		a.edges = append(a.edges, edge)
		a.sources = append(a.sources, s)
		a.targets = append(a.targets, t)

		a.adjacency[s] = append(a.adjacency[s], neighbor{index: t, weight: edge.Weight})
		if edge.Type.Symmetric() {
			a.adjacency[t] = append(a.adjacency[t], neighbor{index: s, weight: edge.Weight})
		}
	}

	for _, list := range a.adjacency {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].index < list[j].index
		})
	}

	return a
}

// Analyze computes node metrics, communities, central node rankings and
// insights in one pass.
func (a *Analyzer) Analyze() Result {
	degree := a.degreeCentrality()
	pagerank := a.pageRank()
	betweenness := a.betweennessCentrality()
	influence := influenceScores(degree, pagerank, betweenness)

	metrics := make(map[string]NodeMetrics, len(a.nodes))
	for i, node := range a.nodes {
		metrics[node.ID] = NodeMetrics{
			DegreeCentrality:      degree[i],
			PageRank:              pagerank[i],
			BetweennessCentrality: betweenness[i],
			InfluenceScore:        influence[i],
		}
	}

	communities := a.DetectCommunities()
	central := a.rankCentralNodes(pagerank, degree, betweenness, a.topK)
	insights := a.buildInsights(communities, central)

	logger.Debug(
		"[Analysis] Analyzed graph",
		"nodes", len(a.nodes),
		"edges", len(a.edges),
		"communities", len(communities),
	)

	return Result{
		NodeMetrics:  metrics,
		Communities:  communities,
		CentralNodes: central,
		Insights:     insights,
	}
}

// DegreeCentrality returns the normalized degree of every node.
func (a *Analyzer) DegreeCentrality() map[string]float64 {
	return a.toMap(a.degreeCentrality())
}

// PageRank returns the PageRank of every node.
func (a *Analyzer) PageRank() map[string]float64 {
	return a.toMap(a.pageRank())
}

// BetweennessCentrality returns the normalized single-path betweenness of
// every node.
func (a *Analyzer) BetweennessCentrality() map[string]float64 {
	return a.toMap(a.betweennessCentrality())
}

// InfluenceScores returns the weighted combination of degree, PageRank and
// betweenness for every node.
func (a *Analyzer) InfluenceScores() map[string]float64 {
	return a.toMap(influenceScores(a.degreeCentrality(), a.pageRank(), a.betweennessCentrality()))
}

// CentralNodes ranks the top k nodes by PageRank, degree and betweenness.
// A non-positive k falls back to the analyzer's configured size.
func (a *Analyzer) CentralNodes(k int) CentralNodes {
	if k <= 0 {
		k = a.topK
	}
	return a.rankCentralNodes(a.pageRank(), a.degreeCentrality(), a.betweennessCentrality(), k)
}

// Insights returns the natural language observations about the graph.
func (a *Analyzer) Insights() []string {
	central := a.rankCentralNodes(a.pageRank(), a.degreeCentrality(), a.betweennessCentrality(), a.topK)
	return a.buildInsights(a.DetectCommunities(), central)
}

func influenceScores(degree, pagerank, betweenness []float64) []float64 {
	out := make([]float64, len(degree))
	for i := range out {
		out[i] = degreeWeight*degree[i] + pageRankWeight*pagerank[i] + betweennessWeight*betweenness[i]
	}
	return out
}

func (a *Analyzer) toMap(values []float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for i, v := range values {
		out[a.nodes[i].ID] = v
	}
	return out
}

func (a *Analyzer) rankCentralNodes(pagerank, degree, betweenness []float64, k int) CentralNodes {
	return CentralNodes{
		MostInfluential: a.topNodes(pagerank, k),
		MostConnected:   a.topNodes(degree, k),
		KeyBridges:      a.topNodes(betweenness, k),
	}
}

// topNodes orders nodes by descending score; equal scores keep node order.
func (a *Analyzer) topNodes(scores []float64, k int) []RankedNode {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	k = min(k, len(order))
	out := make([]RankedNode, 0, k)
	for _, idx := range order[:k] {
		node := a.nodes[idx]
		out = append(out, RankedNode{
			ID:    node.ID,
			Label: node.Label,
			Type:  node.Type,
			Score: scores[idx],
		})
	}
	return out
}
