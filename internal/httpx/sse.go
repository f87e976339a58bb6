package httpx

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// SSEEvent is one parsed Server-Sent Event frame from a provider's
// streaming completion response.
type SSEEvent struct {
	Event string
	Data  string
	ID    string
	Retry int
}

// SSEParser reads Server-Sent Events off a streaming HTTP response body.
// Providers emit one JSON payload per "data:" line; IsStreamDone detects the
// `data: [DONE]` sentinel OpenAI-dialect providers send to close the stream.
type SSEParser struct {
	scanner *bufio.Scanner
	err     error
}

// NewSSEParser wraps r for line-by-line SSE parsing.
func NewSSEParser(r io.Reader) *SSEParser {
	return &SSEParser{scanner: bufio.NewScanner(r)}
}

// Next returns the next event, or io.EOF once the stream is exhausted.
func (p *SSEParser) Next() (*SSEEvent, error) {
	if p.err != nil {
		return nil, p.err
	}

	event := &SSEEvent{}
	var dataLines []string

	for p.scanner.Scan() {
		line := p.scanner.Text()

		if line == "" {
			if len(dataLines) > 0 || event.Event != "" {
				event.Data = strings.Join(dataLines, "\n")
				return event, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}
		field := line[:colonIdx]
		value := strings.TrimPrefix(line[colonIdx+1:], " ")

		switch field {
		case "event":
			event.Event = value
		case "data":
			dataLines = append(dataLines, value)
		case "id":
			event.ID = value
		case "retry":
			if retry, err := strconv.Atoi(value); err == nil {
				event.Retry = retry
			}
		}
	}

	if err := p.scanner.Err(); err != nil {
		p.err = err
		return nil, err
	}

	if len(dataLines) > 0 || event.Event != "" {
		event.Data = strings.Join(dataLines, "\n")
		return event, nil
	}

	p.err = io.EOF
	return nil, io.EOF
}

// Err returns the terminal error, or nil for a clean end-of-stream.
func (p *SSEParser) Err() error {
	if p.err == io.EOF {
		return nil
	}
	return p.err
}

// IsStreamDone reports whether event signals the end of an OpenAI-dialect
// SSE stream (`data: [DONE]`).
func IsStreamDone(event *SSEEvent) bool {
	return event != nil && event.Data == "[DONE]"
}
