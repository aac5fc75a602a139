package common

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// NodeType identifies which kind of research artefact a node represents.
type NodeType string

const (
	NodeTypePaper   NodeType = "paper"
	NodeTypeConcept NodeType = "concept"
	NodeTypeAuthor  NodeType = "author"
	NodeTypeMethod  NodeType = "method"
)

// NodeTypes lists every node type in the order used for stats and insights.
var NodeTypes = []NodeType{NodeTypePaper, NodeTypeConcept, NodeTypeAuthor, NodeTypeMethod}

// Plural returns the English plural used in human readable output.
func (t NodeType) Plural() string {
	return string(t) + "s"
}

// EdgeType identifies the relation an edge encodes.
type EdgeType string

const (
	EdgeTypeDiscusses  EdgeType = "discusses"
	EdgeTypeAuthored   EdgeType = "authored"
	EdgeTypeUsesMethod EdgeType = "uses_method"
	EdgeTypeRelatedTo  EdgeType = "related_to"
)

// EdgeTypes lists every edge type in a stable order.
var EdgeTypes = []EdgeType{EdgeTypeDiscusses, EdgeTypeAuthored, EdgeTypeUsesMethod, EdgeTypeRelatedTo}

// Symmetric reports whether the relation holds in both directions even though
// only one directed edge is stored for it.
func (t EdgeType) Symmetric() bool {
	return t == EdgeTypeRelatedTo
}

// NodeMetrics is the type specific payload of a node. The set of implementations
// is closed: PaperMetrics, ConceptMetrics, AuthorMetrics and MethodMetrics.
type NodeMetrics interface {
	NodeType() NodeType
	isNodeMetrics()
}

// PaperMetrics describes a single analysed paper.
type PaperMetrics struct {
	RelevanceScore float64  `json:"relevance_score"`
	KeyPoints      []string `json:"key_points"`
	ResearchDomain string   `json:"research_domain"`
	TechnicalDepth string   `json:"technical_depth"`
	Authors        string   `json:"authors"`
	Year           string   `json:"year"`
	Source         string   `json:"source"`
}

// ConceptMetrics aggregates a normalized core idea across all papers.
type ConceptMetrics struct {
	Frequency  int      `json:"frequency"`
	Centrality float64  `json:"centrality"`
	Papers     []string `json:"papers"`
}

// AuthorMetrics aggregates the papers and research domains of one author.
type AuthorMetrics struct {
	PaperCount int      `json:"paper_count"`
	Papers     []string `json:"papers"`
	Domains    []string `json:"domains"`
}

// MethodMetrics aggregates the papers that use a known method.
type MethodMetrics struct {
	Frequency int      `json:"frequency"`
	Papers    []string `json:"papers"`
}

func (PaperMetrics) NodeType() NodeType   { return NodeTypePaper }
func (ConceptMetrics) NodeType() NodeType { return NodeTypeConcept }
func (AuthorMetrics) NodeType() NodeType  { return NodeTypeAuthor }
func (MethodMetrics) NodeType() NodeType  { return NodeTypeMethod }

func (PaperMetrics) isNodeMetrics()   {}
func (ConceptMetrics) isNodeMetrics() {}
func (AuthorMetrics) isNodeMetrics()  {}
func (MethodMetrics) isNodeMetrics()  {}

// Node is a vertex of the knowledge graph. Every node shares the id/label/type
// envelope and carries a payload matching its type.
type Node struct {
	ID      string      `json:"id"`
	Type    NodeType    `json:"type"`
	Label   string      `json:"label"`
	Group   NodeType    `json:"group"`
	Metrics NodeMetrics `json:"metrics"`
}

// UnmarshalJSON decodes the metrics payload into the concrete type named by
// the node's type field, so snapshots reloaded from storage keep their payloads.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string          `json:"id"`
		Type    NodeType        `json:"type"`
		Label   string          `json:"label"`
		Group   NodeType        `json:"group"`
		Metrics json.RawMessage `json:"metrics"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var metrics NodeMetrics
	switch raw.Type {
	case NodeTypePaper:
		var m PaperMetrics
		if err := unmarshalMetrics(raw.Metrics, &m); err != nil {
			return err
		}
		metrics = m
	case NodeTypeConcept:
		var m ConceptMetrics
		if err := unmarshalMetrics(raw.Metrics, &m); err != nil {
			return err
		}
		metrics = m
	case NodeTypeAuthor:
		var m AuthorMetrics
		if err := unmarshalMetrics(raw.Metrics, &m); err != nil {
			return err
		}
		metrics = m
	case NodeTypeMethod:
		var m MethodMetrics
		if err := unmarshalMetrics(raw.Metrics, &m); err != nil {
			return err
		}
		metrics = m
	default:
		return fmt.Errorf("unknown node type %q for node %q", raw.Type, raw.ID)
	}

	group := raw.Group
	if group == "" {
		group = raw.Type
	}

	*n = Node{
		ID:      raw.ID,
		Type:    raw.Type,
		Label:   raw.Label,
		Group:   group,
		Metrics: metrics,
	}
	return nil
}

func unmarshalMetrics(data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Edge is a directed, weighted connection between two nodes.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
	Weight float64  `json:"weight"`
}

// Snapshot is an immutable view of a built graph. It is the unit that is
// persisted, cached and handed to the analyzer.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Fingerprint returns a stable identity for the snapshot contents. Two snapshots
// with the same nodes and edges in the same order share a fingerprint.
func (s Snapshot) Fingerprint() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16), nil
}

// Stats summarizes a built graph.
type Stats struct {
	TotalNodes int              `json:"total_nodes"`
	TotalEdges int              `json:"total_edges"`
	NodeTypes  map[NodeType]int `json:"node_types"`
	EdgeTypes  map[EdgeType]int `json:"edge_types"`
}

// ComputeStats counts nodes and edges per type.
func ComputeStats(nodes []Node, edges []Edge) Stats {
	stats := Stats{
		TotalNodes: len(nodes),
		TotalEdges: len(edges),
		NodeTypes:  make(map[NodeType]int, len(NodeTypes)),
		EdgeTypes:  make(map[EdgeType]int, len(EdgeTypes)),
	}
	for _, n := range nodes {
		stats.NodeTypes[n.Type]++
	}
	for _, e := range edges {
		stats.EdgeTypes[e.Type]++
	}
	return stats
}
