package common

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// BatchStatusCompleted marks an agent batch whose analyses are final.
const BatchStatusCompleted = "completed"

// AgentBatch is the per-agent envelope the upstream pipeline emits. Only
// batches with status "completed" contribute records to a graph.
type AgentBatch struct {
	AgentID  string           `json:"agent_id"`
	Status   string           `json:"status"`
	Analyses []AnalysisRecord `json:"analyses"`
}

// AnalysisRecord is the structured summary of one research paper.
type AnalysisRecord struct {
	Summary   string          `json:"summary"`
	KeyPoints StringList      `json:"key_points"`
	Citations []Citation      `json:"citations"`
	Metadata  *RecordMetadata `json:"metadata,omitempty"`
}

// CanonicalCitation returns the first citation of the record, which is the
// citation of the analysed paper itself.
func (r AnalysisRecord) CanonicalCitation() (Citation, bool) {
	if len(r.Citations) == 0 {
		return Citation{}, false
	}
	return r.Citations[0], true
}

// Citation references a paper. Upstream agents are inconsistent about the
// scalar types they emit, hence the tolerant field types.
type Citation struct {
	Title   FlexText `json:"title"`
	Authors FlexText `json:"authors"`
	Year    FlexText `json:"year"`
	Source  FlexText `json:"source"`
}

// RecordMetadata carries the extracted themes of a paper.
type RecordMetadata struct {
	CoreIdeas      StringList `json:"core_ideas"`
	Methodology    FlexText   `json:"methodology"`
	KeyFindings    StringList `json:"key_findings"`
	Novelty        FlexText   `json:"novelty"`
	Limitations    StringList `json:"limitations"`
	RelevanceScore *float64   `json:"relevance_score,omitempty" jsonschema:"minimum=0,maximum=10"`
	ResearchDomain string     `json:"research_domain"`
	TechnicalDepth string     `json:"technical_depth"`
}

// FlexText is a scalar that decodes from a JSON string, number or boolean.
// Any other JSON value (object, array) is kept but reported as invalid so the
// extraction step depending on it can be skipped instead of failing the record.
type FlexText struct {
	value string
	valid bool
	raw   json.RawMessage
}

// Text builds a valid FlexText.
func Text(s string) FlexText {
	return FlexText{value: s, valid: true}
}

// String returns the textual value, or "" when the value is missing or malformed.
func (f FlexText) String() string {
	if !f.valid {
		return ""
	}
	return f.value
}

// Valid reports whether the value was absent or a usable scalar.
func (f FlexText) Valid() bool {
	return f.valid || len(f.raw) == 0
}

// Present reports whether the value was given as a usable scalar.
func (f FlexText) Present() bool {
	return f.valid
}

func (f *FlexText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*f = FlexText{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			f.raw = append(json.RawMessage(nil), trimmed...)
			return nil
		}
		f.value, f.valid = s, true
	case 't', 'f':
		f.value, f.valid = string(trimmed), true
	case '{', '[':
		f.raw = append(json.RawMessage(nil), trimmed...)
	default:
		if n, err := strconv.ParseFloat(string(trimmed), 64); err == nil {
			f.value, f.valid = strconv.FormatFloat(n, 'f', -1, 64), true
			return nil
		}
		f.raw = append(json.RawMessage(nil), trimmed...)
	}
	return nil
}

func (f FlexText) MarshalJSON() ([]byte, error) {
	if f.valid {
		return json.Marshal(f.value)
	}
	if len(f.raw) > 0 {
		return f.raw, nil
	}
	return []byte("null"), nil
}

// StringList decodes from a JSON array of scalars or from a single string.
// Non-scalar array entries are dropped.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*l = nil
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] != '[' {
		var single FlexText
		_ = single.UnmarshalJSON(trimmed)
		if s := strings.TrimSpace(single.String()); s != "" {
			*l = StringList{s}
		}
		return nil
	}

	var items []FlexText
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil
	}
	out := make(StringList, 0, len(items))
	for _, item := range items {
		if !item.Present() {
			continue
		}
		out = append(out, item.String())
	}
	*l = out
	return nil
}
