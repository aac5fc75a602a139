package graph

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/scholargraph/pkg/common"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"
)

// NoAnalysesMessage is reported when there is nothing to build a graph from.
const NoAnalysesMessage = "No analyses found"

const (
	defaultRelevanceScore = 5.0
	maxPaperKeyPoints     = 3
	unknownValue          = "Unknown"
)

// BuildResult is the outcome of a graph build. An empty input is not an error:
// it yields empty node and edge lists and an explanatory message in Error.
type BuildResult struct {
	Nodes []common.Node `json:"nodes"`
	Edges []common.Edge `json:"edges"`
	Stats *common.Stats `json:"stats,omitempty"`
	Error string        `json:"error,omitempty"`
}

// Snapshot returns the nodes and edges of the result as a snapshot.
func (r BuildResult) Snapshot() common.Snapshot {
	return common.Snapshot{Nodes: r.Nodes, Edges: r.Edges}
}

// FlattenBatches collects the analyses of all completed agent batches in
// batch order.
func FlattenBatches(batches []common.AgentBatch) []common.AnalysisRecord {
	var records []common.AnalysisRecord
	for _, batch := range batches {
		if batch.Status != common.BatchStatusCompleted {
			continue
		}
		records = append(records, batch.Analyses...)
	}
	return records
}

// BuildFromBatches flattens completed batches and builds a graph from them.
func BuildFromBatches(batches []common.AgentBatch) BuildResult {
	return BuildFromRecords(FlattenBatches(batches))
}

// BuildFromRecords builds a knowledge graph from analysis records.
//
// Papers, concepts, authors and methods become nodes whose ids are assigned
// sequentially per type in first-seen order, so a fixed input always yields
// the same graph. Edges only ever reference nodes of the same result.
func BuildFromRecords(records []common.AnalysisRecord) BuildResult {
	if len(records) == 0 {
		logger.Warn("[Graph] " + NoAnalysesMessage)
		return BuildResult{
			Nodes: []common.Node{},
			Edges: []common.Edge{},
			Error: NoAnalysesMessage,
		}
	}

	b := newBuilder(len(records))
	for i, record := range records {
		b.addPaper(i, record)
	}
	for i, record := range records {
		b.addConcepts(i, record)
	}
	for i, record := range records {
		b.addAuthors(i, record)
	}
	for i, record := range records {
		b.addMethods(i, record)
	}
	b.addConceptRelations()

	nodes := b.collectNodes()
	edges := b.collectEdges()
	stats := common.ComputeStats(nodes, edges)

	logger.Debug(
		"[Graph] Built graph",
		"records", len(records),
		"nodes", stats.TotalNodes,
		"edges", stats.TotalEdges,
	)

	return BuildResult{
		Nodes: nodes,
		Edges: edges,
		Stats: &stats,
	}
}

type builder struct {
	totalRecords int

	papers   []common.Node
	concepts *registry
	authors  *registry
	methods  *registry

	discusses  []common.Edge
	authored   []common.Edge
	usesMethod []common.Edge
	relatedTo  []common.Edge
}

func newBuilder(totalRecords int) *builder {
	return &builder{
		totalRecords: totalRecords,
		papers:       make([]common.Node, 0, totalRecords),
		concepts:     newRegistry(common.NodeTypeConcept),
		authors:      newRegistry(common.NodeTypeAuthor),
		methods:      newRegistry(common.NodeTypeMethod),
	}
}

func paperID(index int) string {
	return fmt.Sprintf("%s_%d", common.NodeTypePaper, index)
}

func metadataOf(record common.AnalysisRecord) common.RecordMetadata {
	if record.Metadata == nil {
		return common.RecordMetadata{}
	}
	return *record.Metadata
}

func orUnknown(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return unknownValue
	}
	return value
}

func (b *builder) addPaper(index int, record common.AnalysisRecord) {
	meta := metadataOf(record)

	score := defaultRelevanceScore
	if meta.RelevanceScore != nil {
		score = *meta.RelevanceScore
	}

	keyPoints := make([]string, 0, maxPaperKeyPoints)
	for _, point := range record.KeyPoints {
		if len(keyPoints) == maxPaperKeyPoints {
			break
		}
		keyPoints = append(keyPoints, point)
	}

	metrics := common.PaperMetrics{
		RelevanceScore: score,
		KeyPoints:      keyPoints,
		ResearchDomain: orUnknown(meta.ResearchDomain),
		TechnicalDepth: orUnknown(meta.TechnicalDepth),
	}

	label := fmt.Sprintf("Paper %d", index+1)
	if citation, ok := record.CanonicalCitation(); ok {
		if title := strings.TrimSpace(citation.Title.String()); title != "" {
			label = title
		}
		metrics.Authors = strings.TrimSpace(citation.Authors.String())
		metrics.Year = strings.TrimSpace(citation.Year.String())
		metrics.Source = strings.TrimSpace(citation.Source.String())
	}

	b.papers = append(b.papers, common.Node{
		ID:      paperID(index),
		Type:    common.NodeTypePaper,
		Label:   label,
		Group:   common.NodeTypePaper,
		Metrics: metrics,
	})
}

func (b *builder) addConcepts(index int, record common.AnalysisRecord) {
	pid := paperID(index)
	linked := make(map[string]struct{})

	for _, idea := range metadataOf(record).CoreIdeas {
		key := NormalizeConcept(idea)
		if !isConceptKey(key) {
			continue
		}

		concept := b.concepts.get(key, key)
		concept.frequency++
		concept.addPaper(pid)

		if _, ok := linked[key]; ok {
			continue
		}
		linked[key] = struct{}{}
		b.discusses = append(b.discusses, common.Edge{
			Source: pid,
			Target: b.concepts.id(concept),
			Type:   common.EdgeTypeDiscusses,
			Weight: 1.0,
		})
	}
}

func (b *builder) addAuthors(index int, record common.AnalysisRecord) {
	citation, ok := record.CanonicalCitation()
	if !ok {
		return
	}
	if !citation.Authors.Valid() {
		logger.Debug("[Graph] Skipping malformed authors field", "paper", paperID(index))
		return
	}

	names := ParseAuthors(citation.Authors.String())
	if len(names) == 0 {
		return
	}

	pid := paperID(index)
	domain := strings.TrimSpace(metadataOf(record).ResearchDomain)

	for _, name := range names {
		author := b.authors.get(name, name)
		if author.addPaper(pid) {
			b.authored = append(b.authored, common.Edge{
				Source: b.authors.id(author),
				Target: pid,
				Type:   common.EdgeTypeAuthored,
				Weight: 1.0,
			})
		}
		if domain != "" && !strings.EqualFold(domain, unknownValue) {
			author.addDomain(domain)
		}
	}
}

func (b *builder) addMethods(index int, record common.AnalysisRecord) {
	methodology := metadataOf(record).Methodology
	if !methodology.Present() {
		if !methodology.Valid() {
			logger.Debug("[Graph] Skipping malformed methodology field", "paper", paperID(index))
		}
		return
	}

	pid := paperID(index)
	for _, name := range ExtractMethods(methodology.String()) {
		method := b.methods.get(name, name)
		method.frequency++
		method.addPaper(pid)
		b.usesMethod = append(b.usesMethod, common.Edge{
			Source: pid,
			Target: b.methods.id(method),
			Type:   common.EdgeTypeUsesMethod,
			Weight: 1.0,
		})
	}
}

// addConceptRelations links every pair of concepts that share at least one
// paper. The weight is the shared paper count divided by the larger paper set.
func (b *builder) addConceptRelations() {
	concepts := b.concepts.order
	for i := 0; i < len(concepts); i++ {
		for j := i + 1; j < len(concepts); j++ {
			shared := concepts[i].sharedPapers(concepts[j])
			if shared == 0 {
				continue
			}
			larger := max(len(concepts[i].papers), len(concepts[j].papers))
			b.relatedTo = append(b.relatedTo, common.Edge{
				Source: b.concepts.id(concepts[i]),
				Target: b.concepts.id(concepts[j]),
				Type:   common.EdgeTypeRelatedTo,
				Weight: float64(shared) / float64(larger),
			})
		}
	}
}

func (b *builder) collectNodes() []common.Node {
	nodes := make([]common.Node, 0, len(b.papers)+len(b.concepts.order)+len(b.authors.order)+len(b.methods.order))
	nodes = append(nodes, b.papers...)

	for _, c := range b.concepts.order {
		nodes = append(nodes, common.Node{
			ID:    b.concepts.id(c),
			Type:  common.NodeTypeConcept,
			Label: c.label,
			Group: common.NodeTypeConcept,
			Metrics: common.ConceptMetrics{
				Frequency:  c.frequency,
				Centrality: float64(c.frequency) / float64(max(b.totalRecords, 1)),
				Papers:     c.papers,
			},
		})
	}

	for _, a := range b.authors.order {
		if len(a.papers) == 0 {
			continue
		}
		domains := a.domains
		if domains == nil {
			domains = []string{}
		}
		nodes = append(nodes, common.Node{
			ID:    b.authors.id(a),
			Type:  common.NodeTypeAuthor,
			Label: a.label,
			Group: common.NodeTypeAuthor,
			Metrics: common.AuthorMetrics{
				PaperCount: len(a.papers),
				Papers:     a.papers,
				Domains:    domains,
			},
		})
	}

	for _, m := range b.methods.order {
		nodes = append(nodes, common.Node{
			ID:    b.methods.id(m),
			Type:  common.NodeTypeMethod,
			Label: m.label,
			Group: common.NodeTypeMethod,
			Metrics: common.MethodMetrics{
				Frequency: m.frequency,
				Papers:    m.papers,
			},
		})
	}

	return nodes
}

func (b *builder) collectEdges() []common.Edge {
	edges := make([]common.Edge, 0, len(b.discusses)+len(b.authored)+len(b.usesMethod)+len(b.relatedTo))
	edges = append(edges, b.discusses...)
	edges = append(edges, b.authored...)
	edges = append(edges, b.usesMethod...)
	edges = append(edges, b.relatedTo...)
	return edges
}
