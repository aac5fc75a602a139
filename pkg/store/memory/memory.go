package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/OFFIS-RIT/scholargraph/pkg/analysis"
	"github.com/OFFIS-RIT/scholargraph/pkg/common"
	"github.com/OFFIS-RIT/scholargraph/pkg/store"
)

// GraphMemoryStorage keeps graphs in process memory. It backs tests and
// single-process deployments that run without PostgreSQL.
type GraphMemoryStorage struct {
	mu       sync.RWMutex
	graphs   map[string]store.GraphRecord
	analyses map[string]analysis.Result
}

var _ store.GraphStorage = (*GraphMemoryStorage)(nil)

func NewGraphMemoryStorage() *GraphMemoryStorage {
	return &GraphMemoryStorage{
		graphs:   make(map[string]store.GraphRecord),
		analyses: make(map[string]analysis.Result),
	}
}

func (s *GraphMemoryStorage) SaveGraph(ctx context.Context, sessionID string, snapshot common.Snapshot) (store.GraphInfo, error) {
	info, err := store.NewGraphInfo(sessionID, snapshot)
	if err != nil {
		return store.GraphInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[info.ID] = store.GraphRecord{GraphInfo: info, Snapshot: snapshot}
	return info, nil
}

func (s *GraphMemoryStorage) GetGraph(ctx context.Context, id string) (store.GraphRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.graphs[id]
	if !ok {
		return store.GraphRecord{}, store.ErrNotFound
	}
	return record, nil
}

func (s *GraphMemoryStorage) ListGraphs(ctx context.Context, sessionID string) ([]store.GraphInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.GraphInfo, 0, len(s.graphs))
	for _, record := range s.graphs {
		if sessionID != "" && record.SessionID != sessionID {
			continue
		}
		out = append(out, record.GraphInfo)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *GraphMemoryStorage) DeleteGraph(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.graphs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.graphs, id)
	delete(s.analyses, id)
	return nil
}

func (s *GraphMemoryStorage) SaveAnalysis(ctx context.Context, graphID string, result analysis.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.graphs[graphID]; !ok {
		return store.ErrNotFound
	}
	s.analyses[graphID] = result
	return nil
}

func (s *GraphMemoryStorage) GetAnalysis(ctx context.Context, graphID string) (analysis.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.analyses[graphID]
	if !ok {
		return analysis.Result{}, store.ErrNotFound
	}
	return result, nil
}
