package graph

import (
	"reflect"
	"testing"
)

func TestNormalizeConcept(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Neural Networks", "neural networks"},
		{"leading the", "The Transformer Architecture", "transformer architecture"},
		{"leading a", "a benchmark", "benchmark"},
		{"leading an", "An Ontology", "ontology"},
		{"repeated articles", "the the a model", "model"},
		{"article inside", "theory of the mind", "theory of the mind"},
		{"word starting with article", "Anomaly detection", "anomaly detection"},
		{"whitespace", "  graph \t  neural\nnetworks  ", "graph neural networks"},
		{"only article", "the", "the"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeConcept(tt.in)
			if got != tt.want {
				t.Fatalf("NormalizeConcept(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := NormalizeConcept(got); again != got {
				t.Fatalf("NormalizeConcept is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestParseAuthors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"et al", "Smith et al.", []string{"Smith"}},
		{"et al with initials", "Smith, J., et al.", []string{"Smith, J."}},
		{"surname initials with and", "Smith, J. and Lee, K.", []string{"Smith, J.", "Lee, K."}},
		{"comma separated full names", "Ada Lovelace, Alan Turing", []string{"Ada Lovelace", "Alan Turing"}},
		{"semicolons", "Garcia; Chen and Patel", []string{"Garcia", "Chen", "Patel"}},
		{"and inside name", "Anderson and Brandt", []string{"Anderson", "Brandt"}},
		{"ampersand", "John Smith & Jane Doe", []string{"John Smith", "Jane Doe"}},
		{"multiple initials", "Nguyen, T. H., Okafor, C.", []string{"Nguyen, T. H.", "Okafor, C."}},
		{"duplicates", "Kim; Kim", []string{"Kim"}},
		{"unknown", "Unknown", nil},
		{"not provided", "Authors not provided in source", nil},
		{"empty", "   ", nil},
		{"only et al", "et al.", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAuthors(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseAuthors(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractMethods(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "case insensitive substring",
			in:   "We trained a NEURAL NETWORK and compared it against logistic regression.",
			want: []string{"Neural Network", "Regression"},
		},
		{
			name: "hyphenated keyword",
			in:   "Parameter-efficient fine-tuning evaluated on a public benchmark.",
			want: []string{"Fine-Tuning", "Benchmark"},
		},
		{
			name: "each method once",
			in:   "A survey of surveys, followed by another survey round.",
			want: []string{"Survey"},
		},
		{
			name: "too short",
			in:   "Regression.",
			want: nil,
		},
		{
			name: "no match",
			in:   "We read a lot of papers and thought about them carefully.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMethods(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractMethods(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
