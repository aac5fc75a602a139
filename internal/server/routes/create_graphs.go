package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/OFFIS-RIT/scholargraph/internal/queue"
	"github.com/OFFIS-RIT/scholargraph/internal/server/middleware"
	"github.com/OFFIS-RIT/scholargraph/pkg/common"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"
	"github.com/OFFIS-RIT/scholargraph/pkg/records"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func readPayload(c echo.Context) (records.Payload, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return records.Payload{}, err
	}
	payload, err := records.DecodePayload(body)
	if err != nil {
		return records.Payload{}, err
	}
	if payload.SessionID == "" {
		payload.SessionID = c.QueryParam("session_id")
	}
	return payload, nil
}

// CreateGraphHandler builds a graph from the posted analyses and stores it.
func CreateGraphHandler(c echo.Context) error {
	type createGraphResponse struct {
		GraphID   string        `json:"graph_id,omitempty"`
		SessionID string        `json:"session_id,omitempty"`
		Stats     *common.Stats `json:"stats,omitempty"`
		Error     string        `json:"error,omitempty"`
	}

	payload, err := readPayload(c)
	if err != nil {
		logger.Debug("[Routes] Rejected graph payload", "err", err)
		return badRequest(c)
	}

	ctx := c.Request().Context()
	p := c.(*middleware.AppContext).App.Pipeline

	built, info, err := p.Build(ctx, payload)
	if err != nil {
		logger.Error("[Routes] Failed to build graph", "err", err)
		return c.JSON(http.StatusInternalServerError, createGraphResponse{Error: "Internal server error"})
	}
	if built.Error != "" {
		return c.JSON(http.StatusOK, createGraphResponse{Error: built.Error})
	}

	return c.JSON(http.StatusOK, createGraphResponse{
		GraphID:   info.ID,
		SessionID: info.SessionID,
		Stats:     &info.Stats,
	})
}

// CreateGraphAsyncHandler queues a graph build for the worker. The graph can
// be found afterwards by listing the returned session.
func CreateGraphAsyncHandler(c echo.Context) error {
	type createGraphAsyncResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
		SessionID     string `json:"session_id,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	if app.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Async builds are not configured"})
	}

	payload, err := readPayload(c)
	if err != nil {
		return badRequest(c)
	}
	if payload.Empty() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No analyses found"})
	}

	export := false
	if raw := c.QueryParam("export"); raw != "" {
		export, err = strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c)
		}
	}

	correlationID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if payload.SessionID == "" {
		payload.SessionID = correlationID
	}

	body, err := json.Marshal(queue.GraphBuildMsg{
		CorrelationID: correlationID,
		Payload:       payload,
		Export:        export,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	ctx := c.Request().Context()
	if err := queue.PublishFIFO(ctx, app.Queue, queue.GraphQueue, body, nil); err != nil {
		logger.Error("[Routes] Failed to queue graph build", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, createGraphAsyncResponse{
		Message:       "Graph build queued",
		CorrelationID: correlationID,
		SessionID:     payload.SessionID,
	})
}
