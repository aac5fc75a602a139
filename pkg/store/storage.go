package store

import (
	"context"
	"errors"
	"time"

	"github.com/OFFIS-RIT/scholargraph/pkg/analysis"
	"github.com/OFFIS-RIT/scholargraph/pkg/common"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrNotFound is returned when a graph or analysis does not exist.
var ErrNotFound = errors.New("not found")

// GraphInfo describes a stored graph without its contents.
type GraphInfo struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"session_id"`
	Fingerprint string       `json:"fingerprint"`
	Stats       common.Stats `json:"stats"`
	CreatedAt   time.Time    `json:"created_at"`
}

// GraphRecord is a stored graph including its snapshot.
type GraphRecord struct {
	GraphInfo
	Snapshot common.Snapshot `json:"snapshot"`
}

// GraphStorage persists built graphs and their analyses. Snapshots are
// immutable once saved; an analysis is stored per graph and replaced when
// recomputed.
type GraphStorage interface {
	SaveGraph(ctx context.Context, sessionID string, snapshot common.Snapshot) (GraphInfo, error)
	GetGraph(ctx context.Context, id string) (GraphRecord, error)
	ListGraphs(ctx context.Context, sessionID string) ([]GraphInfo, error)
	DeleteGraph(ctx context.Context, id string) error

	SaveAnalysis(ctx context.Context, graphID string, result analysis.Result) error
	GetAnalysis(ctx context.Context, graphID string) (analysis.Result, error)
}

// NewGraphID returns a fresh id for a stored graph.
func NewGraphID() (string, error) {
	return gonanoid.New()
}

// NewGraphInfo prepares the metadata of a snapshot that is about to be saved.
func NewGraphInfo(sessionID string, snapshot common.Snapshot) (GraphInfo, error) {
	id, err := NewGraphID()
	if err != nil {
		return GraphInfo{}, err
	}
	fingerprint, err := snapshot.Fingerprint()
	if err != nil {
		return GraphInfo{}, err
	}
	return GraphInfo{
		ID:          id,
		SessionID:   sessionID,
		Fingerprint: fingerprint,
		Stats:       common.ComputeStats(snapshot.Nodes, snapshot.Edges),
		CreatedAt:   time.Now().UTC(),
	}, nil
}
