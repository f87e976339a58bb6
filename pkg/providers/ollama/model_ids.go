package ollama

import "strings"

// Ollama serves whatever model the operator has pulled locally, so there
// is no fixed catalog the way hosted providers have; this table only
// covers the handful of widely-pulled model families whose default context
// window is well known, falling back to a conservative default otherwise.
var contextWindows = []struct {
	prefix string
	tokens int
}{
	{"llama3.2", 128_000},
	{"llama3.1", 128_000},
	{"llama3", 8_192},
	{"mistral", 32_768},
	{"mixtral", 32_768},
	{"phi3", 128_000},
	{"qwen2.5", 128_000},
	{"gemma2", 8_192},
}

const defaultContextWindow = 8_192

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
