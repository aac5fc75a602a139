package util

import "testing"

func TestSanitizePostgresText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain utf8",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "contains null byte",
			input: "hel\x00lo",
			want:  "hello",
		},
		{
			name:  "contains invalid utf8",
			input: string([]byte{'a', 0xff, 'b'}),
			want:  "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizePostgresText(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected sanitized value: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizePostgresJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no escapes",
			input: `{"label":"graph"}`,
			want:  `{"label":"graph"}`,
		},
		{
			name:  "null escape",
			input: `{"label":"gra\u0000ph"}`,
			want:  `{"label":"graph"}`,
		},
		{
			name:  "escaped backslash before u0000",
			input: `{"label":"a\\u0000b"}`,
			want:  `{"label":"a\\u0000b"}`,
		},
		{
			name:  "other escapes kept",
			input: `{"label":"aé\n\u0000"}`,
			want:  `{"label":"aé\n"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(SanitizePostgresJSON([]byte(tt.input)))
			if got != tt.want {
				t.Fatalf("unexpected sanitized value: got %s, want %s", got, tt.want)
			}
		})
	}
}
