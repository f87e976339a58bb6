package httpx_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/internal/httpx"
)

func TestSSEParserReadsDataLines(t *testing.T) {
	body := "data: {\"delta\":\"hel\"}\n\ndata: {\"delta\":\"lo\"}\n\ndata: [DONE]\n\n"
	parser := httpx.NewSSEParser(strings.NewReader(body))

	var events []*httpx.SSEEvent
	for {
		ev, err := parser.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, ev)
	}

	require.Len(t, events, 3)
	assert.Equal(t, `{"delta":"hel"}`, events[0].Data)
	assert.Equal(t, `{"delta":"lo"}`, events[1].Data)
	assert.True(t, httpx.IsStreamDone(events[2]))
}

func TestSSEParserIgnoresCommentLines(t *testing.T) {
	body := ": heartbeat\ndata: ping\n\n"
	parser := httpx.NewSSEParser(strings.NewReader(body))

	ev, err := parser.Next()
	require.NoError(t, err)
	assert.Equal(t, "ping", ev.Data)
}

func TestSSEParserParsesEventAndID(t *testing.T) {
	body := "event: message\nid: 42\ndata: hi\n\n"
	parser := httpx.NewSSEParser(strings.NewReader(body))

	ev, err := parser.Next()
	require.NoError(t, err)
	assert.Equal(t, "message", ev.Event)
	assert.Equal(t, "42", ev.ID)
	assert.Equal(t, "hi", ev.Data)
}
