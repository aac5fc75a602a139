package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/scholargraph/internal/util"
	"github.com/OFFIS-RIT/scholargraph/pkg/analysis"
	"github.com/OFFIS-RIT/scholargraph/pkg/common"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"
	"github.com/OFFIS-RIT/scholargraph/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// GraphDBStorage implements store.GraphStorage on PostgreSQL. Snapshots,
// stats and analyses are kept as jsonb documents.
type GraphDBStorage struct {
	conn pgxIConn
	now  func() time.Time
}

var _ store.GraphStorage = (*GraphDBStorage)(nil)

type GraphDBStorageOption func(*GraphDBStorage)

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) GraphDBStorageOption {
	return func(s *GraphDBStorage) {
		s.now = now
	}
}

// NewGraphDBStorageWithConnection creates a GraphDBStorage on an existing
// connection or pool.
func NewGraphDBStorageWithConnection(conn pgxIConn, opts ...GraphDBStorageOption) *GraphDBStorage {
	s := &GraphDBStorage{
		conn: conn,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return util.SanitizePostgresJSON(data), nil
}

func (s *GraphDBStorage) SaveGraph(ctx context.Context, sessionID string, snapshot common.Snapshot) (store.GraphInfo, error) {
	info, err := store.NewGraphInfo(util.SanitizePostgresText(sessionID), snapshot)
	if err != nil {
		return store.GraphInfo{}, fmt.Errorf("failed to prepare graph: %w", err)
	}
	info.CreatedAt = s.now()

	snapshotData, err := encodeJSON(snapshot)
	if err != nil {
		return store.GraphInfo{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	statsData, err := encodeJSON(info.Stats)
	if err != nil {
		return store.GraphInfo{}, fmt.Errorf("failed to marshal stats: %w", err)
	}

	if _, err := s.conn.Exec(ctx, insertGraphSQL,
		info.ID, info.SessionID, info.Fingerprint, snapshotData, statsData, info.CreatedAt,
	); err != nil {
		return store.GraphInfo{}, fmt.Errorf("failed to insert graph: %w", err)
	}

	logger.Debug("[Store] Saved graph", "graph", info.ID, "nodes", info.Stats.TotalNodes, "edges", info.Stats.TotalEdges)
	return info, nil
}

func (s *GraphDBStorage) GetGraph(ctx context.Context, id string) (store.GraphRecord, error) {
	var (
		record       store.GraphRecord
		snapshotData []byte
		statsData    []byte
	)
	err := s.conn.QueryRow(ctx, getGraphSQL, id).Scan(
		&record.ID, &record.SessionID, &record.Fingerprint, &snapshotData, &statsData, &record.CreatedAt,
	)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return store.GraphRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.GraphRecord{}, fmt.Errorf("failed to get graph %s: %w", id, err)
	}

	if err := json.Unmarshal(snapshotData, &record.Snapshot); err != nil {
		return store.GraphRecord{}, fmt.Errorf("failed to decode snapshot of graph %s: %w", id, err)
	}
	if err := json.Unmarshal(statsData, &record.Stats); err != nil {
		return store.GraphRecord{}, fmt.Errorf("failed to decode stats of graph %s: %w", id, err)
	}
	return record, nil
}

func (s *GraphDBStorage) ListGraphs(ctx context.Context, sessionID string) ([]store.GraphInfo, error) {
	rows, err := s.conn.Query(ctx, listGraphsSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	defer rows.Close()

	out := make([]store.GraphInfo, 0)
	for rows.Next() {
		var (
			info      store.GraphInfo
			statsData []byte
		)
		if err := rows.Scan(&info.ID, &info.SessionID, &info.Fingerprint, &statsData, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan graph: %w", err)
		}
		if err := json.Unmarshal(statsData, &info.Stats); err != nil {
			return nil, fmt.Errorf("failed to decode stats of graph %s: %w", info.ID, err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	return out, nil
}

// DeleteGraph removes a graph; its analysis is removed by the foreign key cascade.
func (s *GraphDBStorage) DeleteGraph(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx, deleteGraphSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete graph %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GraphDBStorage) SaveAnalysis(ctx context.Context, graphID string, result analysis.Result) error {
	data, err := encodeJSON(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	tag, err := s.conn.Exec(ctx, upsertAnalysisSQL, graphID, data, s.now())
	if err != nil {
		return fmt.Errorf("failed to save analysis of graph %s: %w", graphID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GraphDBStorage) GetAnalysis(ctx context.Context, graphID string) (analysis.Result, error) {
	var data []byte
	err := s.conn.QueryRow(ctx, getAnalysisSQL, graphID).Scan(&data)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return analysis.Result{}, store.ErrNotFound
	}
	if err != nil {
		return analysis.Result{}, fmt.Errorf("failed to get analysis of graph %s: %w", graphID, err)
	}

	var result analysis.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return analysis.Result{}, fmt.Errorf("failed to decode analysis of graph %s: %w", graphID, err)
	}
	return result, nil
}
