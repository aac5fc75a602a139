package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/scholargraph/internal/cache"
	"github.com/OFFIS-RIT/scholargraph/internal/storage"
	"github.com/OFFIS-RIT/scholargraph/pkg/analysis"
	"github.com/OFFIS-RIT/scholargraph/pkg/graph"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"
	"github.com/OFFIS-RIT/scholargraph/pkg/records"
	"github.com/OFFIS-RIT/scholargraph/pkg/store"

	"golang.org/x/sync/errgroup"
)

// ErrExportDisabled is returned by Export when no object store is configured.
var ErrExportDisabled = errors.New("export is not configured")

// Pipeline ties graph building and analysis to persistence, caching and
// export. It is shared by the HTTP handlers and the queue worker.
type Pipeline struct {
	store   store.GraphStorage
	cache   *cache.AnalysisCache
	objects storage.ObjectStore
	topK    int
}

type Option func(*Pipeline)

// WithCache enables the analysis cache.
func WithCache(c *cache.AnalysisCache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithObjectStore enables exports.
func WithObjectStore(o storage.ObjectStore) Option {
	return func(p *Pipeline) {
		p.objects = o
	}
}

// WithTopK sets the size of the central node rankings.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		p.topK = k
	}
}

func New(s store.GraphStorage, opts ...Option) *Pipeline {
	p := &Pipeline{
		store: s,
		topK:  analysis.DefaultTopK,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Store exposes the underlying graph storage.
func (p *Pipeline) Store() store.GraphStorage {
	return p.store
}

// CanExport reports whether an object store is configured.
func (p *Pipeline) CanExport() bool {
	return p.objects != nil
}

// Build builds a graph from the payload and stores it. An empty build is not
// an error: the returned BuildResult carries the message and nothing is stored.
func (p *Pipeline) Build(ctx context.Context, payload records.Payload) (graph.BuildResult, store.GraphInfo, error) {
	result := graph.BuildFromRecords(payload.Records())
	if result.Error != "" {
		return result, store.GraphInfo{}, nil
	}

	info, err := p.store.SaveGraph(ctx, payload.SessionID, result.Snapshot())
	if err != nil {
		return result, store.GraphInfo{}, fmt.Errorf("failed to save graph: %w", err)
	}

	logger.Info("[Pipeline] Built graph", "graph", info.ID, "nodes", info.Stats.TotalNodes, "edges", info.Stats.TotalEdges)
	return result, info, nil
}

// Analyzer loads a stored graph and prepares it for analysis queries.
func (p *Pipeline) Analyzer(ctx context.Context, graphID string) (*analysis.Analyzer, error) {
	record, err := p.store.GetGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}
	return analysis.NewAnalyzer(record.Snapshot, analysis.WithTopK(p.topK)), nil
}

// Analyze returns the analysis of a stored graph, looking in the cache first,
// then in storage, and computing and persisting it as a last resort.
func (p *Pipeline) Analyze(ctx context.Context, graphID string) (analysis.Result, error) {
	record, err := p.store.GetGraph(ctx, graphID)
	if err != nil {
		return analysis.Result{}, err
	}
	return p.analyzeRecord(ctx, record)
}

func (p *Pipeline) analyzeRecord(ctx context.Context, record store.GraphRecord) (analysis.Result, error) {
	if p.cache != nil {
		if result, ok := p.cache.Get(record.Fingerprint); ok {
			logger.Debug("[Pipeline] Analysis cache hit", "graph", record.ID)
			return result, nil
		}
	}

	result, err := p.store.GetAnalysis(ctx, record.ID)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		result = analysis.NewAnalyzer(record.Snapshot, analysis.WithTopK(p.topK)).Analyze()
		if err := p.store.SaveAnalysis(ctx, record.ID, result); err != nil {
			return analysis.Result{}, fmt.Errorf("failed to save analysis: %w", err)
		}
	default:
		return analysis.Result{}, fmt.Errorf("failed to load analysis: %w", err)
	}

	if p.cache != nil {
		p.cache.Set(record.Fingerprint, result)
	}
	return result, nil
}

// Export uploads the snapshot and analysis of a stored graph.
func (p *Pipeline) Export(ctx context.Context, graphID string) (storage.Export, error) {
	if p.objects == nil {
		return storage.Export{}, ErrExportDisabled
	}

	record, err := p.store.GetGraph(ctx, graphID)
	if err != nil {
		return storage.Export{}, err
	}
	result, err := p.analyzeRecord(ctx, record)
	if err != nil {
		return storage.Export{}, err
	}
	return storage.ExportGraph(ctx, p.objects, record.ID, record.Snapshot, result)
}

// Delete removes a graph with its analysis, cache entry and exports. Export
// cleanup failures are logged and do not fail the deletion.
func (p *Pipeline) Delete(ctx context.Context, graphID string) error {
	record, err := p.store.GetGraph(ctx, graphID)
	if err != nil {
		return err
	}
	if err := p.store.DeleteGraph(ctx, graphID); err != nil {
		return err
	}

	if p.cache != nil {
		p.cache.Delete(record.Fingerprint)
	}
	if p.objects != nil {
		if err := p.objects.DeleteFolder(ctx, storage.GraphFolder(graphID)); err != nil {
			logger.Warn("[Pipeline] Failed to delete exports", "graph", graphID, "err", err)
		}
	}
	return nil
}

// Process is the full asynchronous job: build and store the graph, then
// analyze it and persist and export the analysis concurrently.
func (p *Pipeline) Process(ctx context.Context, payload records.Payload, export bool) (store.GraphInfo, error) {
	built, info, err := p.Build(ctx, payload)
	if err != nil {
		return store.GraphInfo{}, err
	}
	if built.Error != "" {
		logger.Warn("[Pipeline] Nothing to build", "session", payload.SessionID, "reason", built.Error)
		return store.GraphInfo{}, nil
	}

	snapshot := built.Snapshot()
	result := analysis.NewAnalyzer(snapshot, analysis.WithTopK(p.topK)).Analyze()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := p.store.SaveAnalysis(gCtx, info.ID, result); err != nil {
			return fmt.Errorf("failed to save analysis: %w", err)
		}
		if p.cache != nil {
			p.cache.Set(info.Fingerprint, result)
		}
		return nil
	})
	if export && p.objects != nil {
		g.Go(func() error {
			_, err := storage.ExportGraph(gCtx, p.objects, info.ID, snapshot, result)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return info, err
	}

	return info, nil
}
