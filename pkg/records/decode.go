package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/scholargraph/pkg/common"
	"github.com/OFFIS-RIT/scholargraph/pkg/graph"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"

	"github.com/kaptinlin/jsonrepair"
)

var (
	ErrEmptyPayload       = errors.New("empty payload")
	ErrUnsupportedPayload = errors.New("payload must be an object or an array")
)

// Payload is the body accepted by the graph endpoints and the build queue.
// Either field may be empty; records from completed batches and loose records
// are combined by Records.
type Payload struct {
	SessionID string                  `json:"session_id,omitempty"`
	Batches   []common.AgentBatch     `json:"batches,omitempty"`
	Analyses  []common.AnalysisRecord `json:"records,omitempty"`
}

// Records returns the analyses of all completed batches followed by the loose
// records, in input order.
func (p Payload) Records() []common.AnalysisRecord {
	return append(graph.FlattenBatches(p.Batches), p.Analyses...)
}

// Empty reports whether the payload carries neither batches nor records.
func (p Payload) Empty() bool {
	return len(p.Batches) == 0 && len(p.Analyses) == 0
}

func stripDuplicateLeadingBrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// Repair turns agent output into valid JSON. Valid input is returned as is,
// double-encoded JSON strings are unwrapped and anything else is passed
// through jsonrepair.
func Repair(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyPayload
	}

	if json.Valid([]byte(input)) {
		var asString string
		if err := json.Unmarshal([]byte(input), &asString); err != nil {
			return input, nil
		}
		input = strings.TrimSpace(asString)
		if json.Valid([]byte(input)) {
			return input, nil
		}
	}

	input = stripDuplicateLeadingBrace(input)
	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// UnmarshalFlexible repairs input if needed and decodes it into out.
func UnmarshalFlexible(input string, out any) error {
	repaired, err := Repair(input)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: %w", err)
	}
	return nil
}

type shape struct {
	Batches  json.RawMessage `json:"batches"`
	Records  json.RawMessage `json:"records"`
	Analyses json.RawMessage `json:"analyses"`
}

// DecodePayload accepts the shapes upstream agents are known to produce:
//
//	{"session_id": "...", "batches": [...], "records": [...]}
//	{"agent_id": "...", "status": "completed", "analyses": [...]}
//	[{"agent_id": "...", "analyses": [...]}, ...]
//	[{"summary": "...", "citations": [...]}, ...]
//
// Malformed JSON is repaired first.
func DecodePayload(data []byte) (Payload, error) {
	repaired, err := Repair(string(data))
	if err != nil {
		return Payload{}, err
	}

	switch repaired[0] {
	case '{':
		return decodeObject([]byte(repaired))
	case '[':
		return decodeArray([]byte(repaired))
	default:
		return Payload{}, ErrUnsupportedPayload
	}
}

func decodeObject(data []byte) (Payload, error) {
	var s shape
	if err := json.Unmarshal(data, &s); err != nil {
		return Payload{}, fmt.Errorf("failed to decode payload: %w", err)
	}

	if s.Batches == nil && s.Records == nil && s.Analyses != nil {
		var batch common.AgentBatch
		if err := json.Unmarshal(data, &batch); err != nil {
			return Payload{}, fmt.Errorf("failed to decode batch: %w", err)
		}
		return Payload{Batches: []common.AgentBatch{batch}}, nil
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("failed to decode payload: %w", err)
	}
	return p, nil
}

func decodeArray(data []byte) (Payload, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return Payload{}, fmt.Errorf("failed to decode payload: %w", err)
	}

	batches := false
	for _, item := range items {
		var s shape
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if s.Analyses != nil {
			batches = true
			break
		}
	}

	var p Payload
	if batches {
		if err := json.Unmarshal(data, &p.Batches); err != nil {
			return Payload{}, fmt.Errorf("failed to decode batches: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &p.Analyses); err != nil {
			return Payload{}, fmt.Errorf("failed to decode records: %w", err)
		}
	}

	logger.Debug("[Records] Decoded payload", "batches", len(p.Batches), "records", len(p.Analyses))
	return p, nil
}
