package util

import (
	"bytes"
	"strings"
)

// SanitizePostgresText drops invalid UTF-8 and NUL bytes, both rejected by
// PostgreSQL text columns.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

var nullEscape = []byte(`u0000`)

// SanitizePostgresJSON removes \u0000 escapes from encoded JSON, which jsonb
// columns reject. Escaped backslashes are left intact.
func SanitizePostgresJSON(data []byte) []byte {
	if !bytes.Contains(data, nullEscape) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if bytes.HasPrefix(data[i+1:], nullEscape) {
			i += len(nullEscape)
			continue
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}
