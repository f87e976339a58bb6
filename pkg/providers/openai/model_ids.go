package openai

import "strings"

// contextWindows maps a model-ID prefix to its context window size in
// tokens. Matched longest-prefix-first so "gpt-4o-mini" doesn't fall
// through to the "gpt-4" entry.
var contextWindows = []struct {
	prefix string
	tokens int
}{
	{"gpt-4o-mini", 128_000},
	{"gpt-4o", 128_000},
	{"gpt-4-turbo", 128_000},
	{"gpt-4-32k", 32_768},
	{"gpt-4", 8_192},
	{"gpt-3.5-turbo-16k", 16_384},
	{"gpt-3.5-turbo", 16_385},
	{"o1-mini", 128_000},
	{"o1-preview", 128_000},
	{"o1", 200_000},
	{"o3-mini", 200_000},
	{"o3", 200_000},
}

// defaultContextWindow is used when modelID matches no known prefix, a
// conservative floor rather than a guess at a newer model's real limit.
const defaultContextWindow = 128_000

// contextWindowFor looks up the context window for modelID by longest
// matching prefix.
func contextWindowFor(modelID string) int {
	best := -1
	tokens := defaultContextWindow
	for _, entry := range contextWindows {
		if strings.HasPrefix(modelID, entry.prefix) && len(entry.prefix) > best {
			best = len(entry.prefix)
			tokens = entry.tokens
		}
	}
	return tokens
}
