package graph

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minConceptLength     = 4
	minMethodologyLength = 20
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reEtAl       = regexp.MustCompile(`(?i)\bet\.?\s*al\b`)
	reAuthorSep  = regexp.MustCompile(`(?i)\band\b|[;&]`)
	reInitials   = regexp.MustCompile(`^(?:\p{Lu}\.?[\s-]*)+$`)
)

var leadingArticles = []string{"the ", "a ", "an "}

// NormalizeConcept maps a free-text core idea to the key concepts are merged
// on: lowercased, trimmed, inner whitespace collapsed and leading articles
// removed. Applying it twice yields the same result as applying it once.
func NormalizeConcept(s string) string {
	s = strings.ToLower(reWhitespace.ReplaceAllString(strings.TrimSpace(s), " "))
	for {
		stripped := false
		for _, article := range leadingArticles {
			if strings.HasPrefix(s, article) {
				s = strings.TrimSpace(s[len(article):])
				stripped = true
				break
			}
		}
		if !stripped {
			return s
		}
	}
}

func isConceptKey(key string) bool {
	return utf8.RuneCountInString(key) >= minConceptLength
}

func isUnknownAuthor(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" ||
		strings.EqualFold(s, unknownValue) ||
		strings.Contains(strings.ToLower(s), "not provided")
}

func cleanAuthor(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), " ,;")
}

// ParseAuthors splits a citation author string into individual names.
//
// "et al" strings yield only the name before it. Otherwise names are split on
// semicolons, ampersands, the word "and" and commas; a comma followed only by
// initials is kept with the preceding surname, so "Smith, J. and Lee, K."
// yields "Smith, J." and "Lee, K.".
func ParseAuthors(raw string) []string {
	if isUnknownAuthor(raw) {
		return nil
	}

	if loc := reEtAl.FindStringIndex(raw); loc != nil {
		name := cleanAuthor(raw[:loc[0]])
		if isUnknownAuthor(name) {
			return nil
		}
		return []string{name}
	}

	var names []string
	seen := make(map[string]struct{})
	for _, chunk := range reAuthorSep.Split(raw, -1) {
		for _, name := range splitCommaNames(chunk) {
			if isUnknownAuthor(name) {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

func splitCommaNames(chunk string) []string {
	var out []string
	for _, part := range strings.Split(chunk, ",") {
		part = cleanAuthor(part)
		if part == "" {
			continue
		}
		if n := len(out); n > 0 && reInitials.MatchString(part) && canTakeInitials(out[n-1]) {
			out[n-1] = out[n-1] + ", " + part
			continue
		}
		out = append(out, part)
	}
	return out
}

func canTakeInitials(name string) bool {
	return !strings.Contains(name, ",") && !reInitials.MatchString(name)
}

type methodKeyword struct {
	keyword string
	name    string
}

var methodKeywords = []string{
	"machine learning",
	"deep learning",
	"neural network",
	"reinforcement learning",
	"transfer learning",
	"natural language processing",
	"computer vision",
	"transformer",
	"fine-tuning",
	"regression",
	"classification",
	"clustering",
	"bayesian",
	"monte carlo",
	"simulation",
	"optimization",
	"time series",
	"statistical analysis",
	"randomized control",
	"experiment",
	"cross-validation",
	"ablation",
	"benchmark",
	"meta-analysis",
	"systematic review",
	"survey",
	"case study",
	"interview",
	"longitudinal",
	"qualitative",
	"quantitative",
	"graph analysis",
}

var methodVocabulary = buildMethodVocabulary(methodKeywords)

func buildMethodVocabulary(keywords []string) []methodKeyword {
	caser := cases.Title(language.English)
	vocabulary := make([]methodKeyword, 0, len(keywords))
	for _, k := range keywords {
		vocabulary = append(vocabulary, methodKeyword{
			keyword: k,
			name:    caser.String(k),
		})
	}
	return vocabulary
}

// ExtractMethods returns the title-cased names of the known methods mentioned
// in a methodology description, each at most once, in vocabulary order.
// Descriptions shorter than 20 characters carry no usable signal and yield nil.
func ExtractMethods(methodology string) []string {
	methodology = strings.TrimSpace(methodology)
	if utf8.RuneCountInString(methodology) < minMethodologyLength {
		return nil
	}

	lower := strings.ToLower(methodology)
	var found []string
	for _, m := range methodVocabulary {
		if strings.Contains(lower, m.keyword) {
			found = append(found, m.name)
		}
	}
	return found
}
