package records

import (
	"encoding/json"
	"testing"

	"github.com/OFFIS-RIT/scholargraph/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadShapes(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantSession string
		wantBatches int
		wantRecords int
		wantTotal   int
	}{
		{
			name:        "envelope",
			input:       `{"session_id":"s1","batches":[{"agent_id":"a","status":"completed","analyses":[{"summary":"x"}]}],"records":[{"summary":"y"}]}`,
			wantSession: "s1",
			wantBatches: 1,
			wantRecords: 1,
			wantTotal:   2,
		},
		{
			name:        "single batch",
			input:       `{"agent_id":"a","status":"completed","analyses":[{"summary":"x"},{"summary":"y"}]}`,
			wantBatches: 1,
			wantTotal:   2,
		},
		{
			name:        "batch array",
			input:       `[{"agent_id":"a","status":"completed","analyses":[{"summary":"x"}]},{"agent_id":"b","status":"failed","analyses":[{"summary":"y"}]}]`,
			wantBatches: 2,
			wantTotal:   1,
		},
		{
			name:        "record array",
			input:       `[{"summary":"x","citations":[{"title":"A"}]},{"summary":"y"}]`,
			wantRecords: 2,
			wantTotal:   2,
		},
		{
			name:        "double encoded",
			input:       `"[{\"summary\":\"x\"}]"`,
			wantRecords: 1,
			wantTotal:   1,
		},
		{
			name:        "trailing commas",
			input:       `{"session_id":"s2","records":[{"summary":"x",},],}`,
			wantSession: "s2",
			wantRecords: 1,
			wantTotal:   1,
		},
		{
			name:        "duplicated leading brace",
			input:       `{ {"records":[{"summary":"x"}]}`,
			wantRecords: 1,
			wantTotal:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePayload([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSession, p.SessionID)
			assert.Len(t, p.Batches, tt.wantBatches)
			assert.Len(t, p.Analyses, tt.wantRecords)
			assert.Len(t, p.Records(), tt.wantTotal)
		})
	}
}

func TestDecodePayloadErrors(t *testing.T) {
	_, err := DecodePayload([]byte("   "))
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = DecodePayload([]byte(`42`))
	assert.ErrorIs(t, err, ErrUnsupportedPayload)
}

func TestDecodePayloadKeepsMalformedFieldsTolerant(t *testing.T) {
	input := `[{"summary":"x","citations":[{"title":"A","authors":{"first":"Smith"},"year":2021}],"metadata":{"core_ideas":"single idea","relevance_score":7}}]`

	p, err := DecodePayload([]byte(input))
	require.NoError(t, err)
	require.Len(t, p.Analyses, 1)

	rec := p.Analyses[0]
	citation, ok := rec.CanonicalCitation()
	require.True(t, ok)
	assert.Equal(t, "A", citation.Title.String())
	assert.False(t, citation.Authors.Valid())
	assert.Equal(t, "2021", citation.Year.String())

	require.NotNil(t, rec.Metadata)
	assert.Equal(t, common.StringList{"single idea"}, rec.Metadata.CoreIdeas)
	require.NotNil(t, rec.Metadata.RelevanceScore)
	assert.Equal(t, 7.0, *rec.Metadata.RelevanceScore)
}

func TestPayloadRecordsOrder(t *testing.T) {
	p := Payload{
		Batches: []common.AgentBatch{
			{Status: common.BatchStatusCompleted, Analyses: []common.AnalysisRecord{{Summary: "b1"}}},
			{Status: "running", Analyses: []common.AnalysisRecord{{Summary: "skipped"}}},
			{Status: common.BatchStatusCompleted, Analyses: []common.AnalysisRecord{{Summary: "b2"}}},
		},
		Analyses: []common.AnalysisRecord{{Summary: "loose"}},
	}

	var got []string
	for _, r := range p.Records() {
		got = append(got, r.Summary)
	}
	assert.Equal(t, []string{"b1", "b2", "loose"}, got)
	assert.False(t, p.Empty())
	assert.True(t, Payload{}.Empty())
}

func TestUnmarshalFlexible(t *testing.T) {
	var out map[string]any
	require.NoError(t, UnmarshalFlexible(`{name: "test"}`, &out))
	assert.Equal(t, "test", out["name"])
}

func TestSchema(t *testing.T) {
	data, err := json.Marshal(Schema())
	require.NoError(t, err)

	var schema struct {
		Type       string `json:"type"`
		Properties map[string]struct {
			Type  string `json:"type"`
			Items struct {
				Properties map[string]json.RawMessage `json:"properties"`
			} `json:"items"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, "object", schema.Type)
	require.Contains(t, schema.Properties, "analyses")
	analyses := schema.Properties["analyses"]
	assert.Equal(t, "array", analyses.Type)
	assert.Contains(t, analyses.Items.Properties, "citations")
	assert.Contains(t, analyses.Items.Properties, "key_points")
	assert.Contains(t, string(analyses.Items.Properties["key_points"]), "anyOf")
}
