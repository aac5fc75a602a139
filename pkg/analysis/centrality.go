package analysis

import "math"

const (
	// DampingFactor is the probability of following a link in PageRank.
	DampingFactor = 0.85

	maxPageRankIterations = 100
	pageRankTolerance     = 1e-6
)

// degreeCentrality counts every edge once for its source and once for its
// target, regardless of direction, and divides by the largest count.
func (a *Analyzer) degreeCentrality() []float64 {
	counts := make([]float64, len(a.nodes))
	for i := range a.edges {
		counts[a.sources[i]]++
		counts[a.targets[i]]++
	}
	return normalizeByMax(counts)
}

// pageRank runs power iteration over the stored directed edges only; the
// reverse directions added for symmetric edge types are not used here.
// Nodes without outgoing edges pass nothing on and their mass is not
// redistributed, so the ranks may sum to less than one.
func (a *Analyzer) pageRank() []float64 {
	n := len(a.nodes)
	if n == 0 {
		return []float64{}
	}

	outDegree := make([]int, n)
	incoming := make([][]int, n)
	for i := range a.edges {
		s, t := a.sources[i], a.targets[i]
		outDegree[s]++
		incoming[t] = append(incoming[t], s)
	}

	base := (1 - DampingFactor) / float64(n)
	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1 / float64(n)
	}

	for iteration := 0; iteration < maxPageRankIterations; iteration++ {
		next := make([]float64, n)
		maxDelta := 0.0
		for v := 0; v < n; v++ {
			flow := 0.0
			for _, u := range incoming[v] {
				flow += rank[u] / float64(outDegree[u])
			}
			next[v] = base + DampingFactor*flow
			maxDelta = math.Max(maxDelta, math.Abs(next[v]-rank[v]))
		}
		rank = next
		if maxDelta < pageRankTolerance {
			break
		}
	}

	return rank
}

// betweennessCentrality is a single shortest path approximation: for every
// ordered pair of nodes exactly one BFS path is taken and each node strictly
// inside it is counted once. Counts are divided by the largest count.
func (a *Analyzer) betweennessCentrality() []float64 {
	n := len(a.nodes)
	counts := make([]float64, n)

	for source := 0; source < n; source++ {
		parent := a.bfs(source, -1)
		for target := 0; target < n; target++ {
			if target == source || parent[target] < 0 {
				continue
			}
			for v := parent[target]; v != source; v = parent[v] {
				counts[v]++
			}
		}
	}

	return normalizeByMax(counts)
}

func normalizeByMax(values []float64) []float64 {
	largest := 0.0
	for _, v := range values {
		largest = math.Max(largest, v)
	}
	if largest == 0 {
		largest = 1
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / largest
	}
	return out
}
