package google

import "strings"

var contextWindows = []struct {
	prefix string
	tokens int
}{
	{"gemini-2.5-pro", 1_048_576},
	{"gemini-2.5-flash", 1_048_576},
	{"gemini-2.0-flash", 1_048_576},
	{"gemini-1.5-pro", 2_097_152},
	{"gemini-1.5-flash-8b", 1_048_576},
	{"gemini-1.5-flash", 1_048_576},
}

const defaultContextWindow = 1_048_576

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
