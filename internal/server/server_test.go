package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/scholargraph/internal/pipeline"
	"github.com/OFFIS-RIT/scholargraph/internal/queue"
	mid "github.com/OFFIS-RIT/scholargraph/internal/server/middleware"
	"github.com/OFFIS-RIT/scholargraph/pkg/store/memory"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

const recordsBody = `[
	{"summary":"a","citations":[{"title":"Graph Networks","authors":"Smith, J."}],"metadata":{"core_ideas":["graph theory"],"research_domain":"CS"}},
	{"summary":"b","citations":[{"title":"Deep Graphs","authors":"Doe, A."}],"metadata":{"core_ideas":["graph theory","deep learning"],"research_domain":"CS"}}
]`

type fakePublisher struct {
	queue string
	body  []byte
}

func (f *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.queue = key
	f.body = msg.Body
	return nil
}

func newTestApp() *mid.App {
	return &mid.App{
		Pipeline:       pipeline.New(memory.NewGraphMemoryStorage()),
		MasterAPIKey:   testAPIKey,
		MasterUserID:   "1",
		MasterUserRole: "admin",
	}
}

func do(t *testing.T, app *mid.App, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	NewEcho(app).ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func createGraph(t *testing.T, app *mid.App) string {
	t.Helper()
	rec, out := do(t, app, http.MethodPost, "/api/graphs?session_id=s1", recordsBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id, ok := out["graph_id"].(string)
	require.True(t, ok)
	return id
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	NewEcho(newTestApp()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAPIRequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/graphs?session_id=s1", nil)
	rec := httptest.NewRecorder()
	NewEcho(newTestApp()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestCreateAndFetchGraph(t *testing.T) {
	app := newTestApp()
	id := createGraph(t, app)

	rec, out := do(t, app, http.MethodGet, "/api/graphs/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, out["id"])
	assert.Equal(t, "s1", out["session_id"])
	snapshot := out["snapshot"].(map[string]any)
	assert.NotEmpty(t, snapshot["nodes"])

	rec, _ = do(t, app, http.MethodGet, "/api/graphs?session_id=s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])
}

func TestCreateGraph_Empty(t *testing.T) {
	rec, out := do(t, newTestApp(), http.MethodPost, "/api/graphs", `[]`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No analyses found", out["error"])
	assert.NotContains(t, out, "graph_id")
}

func TestCreateGraph_InvalidBody(t *testing.T) {
	rec, _ := do(t, newTestApp(), http.MethodPost, "/api/graphs", `42`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListGraphs_RequiresSession(t *testing.T) {
	rec, _ := do(t, newTestApp(), http.MethodGet, "/api/graphs", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGraphAnalysis(t *testing.T) {
	app := newTestApp()
	id := createGraph(t, app)

	rec, out := do(t, app, http.MethodGet, "/api/graphs/"+id+"/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, out, "node_metrics")
	assert.Contains(t, out, "communities")
	assert.Contains(t, out, "central_nodes")
	assert.NotEmpty(t, out["insights"])
}

func TestGraphPath(t *testing.T) {
	app := newTestApp()
	id := createGraph(t, app)

	rec, out := do(t, app, http.MethodGet, "/api/graphs/"+id+"/path?source=paper_0&target=concept_0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["exists"])
	assert.Equal(t, float64(1), out["length"])

	rec, _ = do(t, app, http.MethodGet, "/api/graphs/"+id+"/path?source=paper_0&target=nope", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"exists":false}`, rec.Body.String())

	rec, _ = do(t, app, http.MethodGet, "/api/graphs/"+id+"/path?source=paper_0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNodeNeighborhood(t *testing.T) {
	app := newTestApp()
	id := createGraph(t, app)

	rec, out := do(t, app, http.MethodGet, "/api/graphs/"+id+"/nodes/paper_0/neighborhood", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, out["nodes"])

	rec, _ = do(t, app, http.MethodGet, "/api/graphs/"+id+"/nodes/missing/neighborhood", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, app, http.MethodGet, "/api/graphs/"+id+"/nodes/paper_0/neighborhood?depth=9", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_Disabled(t *testing.T) {
	app := newTestApp()
	id := createGraph(t, app)

	rec, _ := do(t, app, http.MethodPost, "/api/graphs/"+id+"/export", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDeleteGraph(t *testing.T) {
	app := newTestApp()
	id := createGraph(t, app)

	rec, out := do(t, app, http.MethodDelete, "/api/graphs/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Graph deleted", out["message"])

	rec, out = do(t, app, http.MethodGet, "/api/graphs/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Graph not found", out["error"])
}

func TestCreateGraphAsync(t *testing.T) {
	app := newTestApp()

	rec, _ := do(t, app, http.MethodPost, "/api/graphs/async", recordsBody)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	pub := &fakePublisher{}
	app.Queue = pub
	rec, out := do(t, app, http.MethodPost, "/api/graphs/async?export=true", recordsBody)
	require.Equal(t, http.StatusAccepted, rec.Code)
	correlationID := out["correlation_id"].(string)
	assert.NotEmpty(t, correlationID)
	assert.Equal(t, correlationID, out["session_id"])

	assert.Equal(t, queue.GraphQueue, pub.queue)
	var msg queue.GraphBuildMsg
	require.NoError(t, json.Unmarshal(pub.body, &msg))
	assert.Equal(t, correlationID, msg.CorrelationID)
	assert.Equal(t, correlationID, msg.Payload.SessionID)
	assert.True(t, msg.Export)
	assert.Len(t, msg.Payload.Records(), 2)
}

func TestRecordSchema(t *testing.T) {
	rec, out := do(t, newTestApp(), http.MethodGet, "/api/schema/records", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "object", out["type"])
}
