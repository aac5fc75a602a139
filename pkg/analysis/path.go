package analysis

import (
	"encoding/json"

	"github.com/OFFIS-RIT/scholargraph/pkg/common"
)

// PathNode describes a node on a shortest path.
type PathNode struct {
	ID    string          `json:"id"`
	Label string          `json:"label"`
	Type  common.NodeType `json:"type"`
}

// PathResult is the answer to a shortest path query. When Exists is false the
// other fields are empty.
type PathResult struct {
	Exists bool       `json:"exists"`
	Path   []string   `json:"path"`
	Length int        `json:"length"`
	Nodes  []PathNode `json:"nodes"`
}

func (p PathResult) MarshalJSON() ([]byte, error) {
	if !p.Exists {
		return []byte(`{"exists":false}`), nil
	}
	type pathResult PathResult
	return json.Marshal(pathResult(p))
}

// FindShortestPath returns the hop-count shortest path between two nodes over
// the traversal adjacency, using the same BFS as betweenness centrality.
func (a *Analyzer) FindShortestPath(source, target string) PathResult {
	s, okSource := a.index[source]
	t, okTarget := a.index[target]
	if !okSource || !okTarget {
		return PathResult{}
	}

	parent := a.bfs(s, t)
	if parent[t] < 0 {
		return PathResult{}
	}

	var reversed []int
	for v := t; v != s; v = parent[v] {
		reversed = append(reversed, v)
	}
	reversed = append(reversed, s)

	path := make([]string, 0, len(reversed))
	nodes := make([]PathNode, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		node := a.nodes[reversed[i]]
		path = append(path, node.ID)
		nodes = append(nodes, PathNode{ID: node.ID, Label: node.Label, Type: node.Type})
	}

	return PathResult{
		Exists: true,
		Path:   path,
		Length: len(path) - 1,
		Nodes:  nodes,
	}
}

// Neighborhood returns the part of the graph within depth hops of a node over
// the traversal adjacency, keeping node and edge order. The second return
// value is false for unknown nodes.
func (a *Analyzer) Neighborhood(nodeID string, depth int) (common.Snapshot, bool) {
	start, ok := a.index[nodeID]
	if !ok {
		return common.Snapshot{Nodes: []common.Node{}, Edges: []common.Edge{}}, false
	}
	depth = max(depth, 0)

	distance := make([]int, len(a.nodes))
	for i := range distance {
		distance[i] = -1
	}
	distance[start] = 0
	queue := []int{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if distance[current] == depth {
			continue
		}
		for _, nb := range a.adjacency[current] {
			if distance[nb.index] >= 0 {
				continue
			}
			distance[nb.index] = distance[current] + 1
			queue = append(queue, nb.index)
		}
	}

	sub := common.Snapshot{Nodes: []common.Node{}, Edges: []common.Edge{}}
	for i, node := range a.nodes {
		if distance[i] >= 0 {
			sub.Nodes = append(sub.Nodes, node)
		}
	}
	for i, edge := range a.edges {
		if distance[a.sources[i]] >= 0 && distance[a.targets[i]] >= 0 {
			sub.Edges = append(sub.Edges, edge)
		}
	}
	return sub, true
}

// bfs explores the traversal adjacency from source and returns the BFS parent
// of every reached node (the source is its own parent, unreached nodes are -1).
// With stop >= 0 the search ends as soon as that node is reached.
func (a *Analyzer) bfs(source, stop int) []int {
	parent := make([]int, len(a.nodes))
	for i := range parent {
		parent[i] = -1
	}
	parent[source] = source

	queue := []int{source}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == stop {
			break
		}
		for _, nb := range a.adjacency[current] {
			if parent[nb.index] >= 0 {
				continue
			}
			parent[nb.index] = current
			queue = append(queue, nb.index)
		}
	}
	return parent
}
