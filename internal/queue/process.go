package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/OFFIS-RIT/scholargraph/internal/pipeline"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"
	"github.com/OFFIS-RIT/scholargraph/pkg/records"
)

// GraphBuildMsg is the body of a graph_queue message.
type GraphBuildMsg struct {
	CorrelationID string          `json:"correlation_id"`
	Payload       records.Payload `json:"payload"`
	Export        bool            `json:"export"`
}

// ProcessGraphMessage builds, analyzes and optionally exports the graph
// described by a graph_queue message.
func ProcessGraphMessage(ctx context.Context, p *pipeline.Pipeline, body []byte) error {
	var msg GraphBuildMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to decode graph message: %w", err)
	}

	info, err := p.Process(ctx, msg.Payload, msg.Export)
	if err != nil {
		return fmt.Errorf("failed to process graph %s: %w", msg.CorrelationID, err)
	}

	if info.ID == "" {
		logger.Info("[Queue] Graph message produced no graph", "correlation_id", msg.CorrelationID)
		return nil
	}
	logger.Info(
		"[Queue] Processed graph message",
		"correlation_id", msg.CorrelationID,
		"graph", info.ID,
		"nodes", info.Stats.TotalNodes,
		"edges", info.Stats.TotalEdges,
	)
	return nil
}
