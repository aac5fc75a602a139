package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/OFFIS-RIT/scholargraph/pkg/analysis"
	"github.com/OFFIS-RIT/scholargraph/pkg/common"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const jsonContentType = "application/json"

// Export lists the uploaded documents of a graph and their download links.
type Export struct {
	SnapshotKey string `json:"snapshot_key"`
	AnalysisKey string `json:"analysis_key"`
	SnapshotURL string `json:"snapshot_url"`
	AnalysisURL string `json:"analysis_url"`
}

// GraphFolder is the key prefix under which a graph's exports live.
func GraphFolder(graphID string) string {
	return path.Join("graphs", graphID) + "/"
}

// ExportGraph uploads the snapshot and analysis of a graph as JSON documents
// and returns presigned links to both.
func ExportGraph(
	ctx context.Context,
	objects ObjectStore,
	graphID string,
	snapshot common.Snapshot,
	result analysis.Result,
) (Export, error) {
	folder := GraphFolder(graphID)
	export := Export{
		SnapshotKey: folder + "snapshot.json",
		AnalysisKey: folder + "analysis.json",
	}

	uploads := []struct {
		key   string
		value any
		url   *string
	}{
		{export.SnapshotKey, snapshot, &export.SnapshotURL},
		{export.AnalysisKey, result, &export.AnalysisURL},
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, upload := range uploads {
		g.Go(func() error {
			data, err := json.Marshal(upload.value)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", upload.key, err)
			}
			if err := objects.Put(gCtx, upload.key, jsonContentType, data); err != nil {
				return err
			}
			link, err := objects.DownloadLink(gCtx, upload.key)
			if err != nil {
				return err
			}
			*upload.url = link
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Export{}, err
	}

	logger.Info("[Export] Exported graph", "graph", graphID, "folder", folder)
	return export, nil
}
