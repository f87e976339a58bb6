package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldContentConcatenatesTextBlocks(t *testing.T) {
	text, resources := foldContent([]ToolResultContent{
		{Type: "text", Text: "first"},
		{Type: "text", Text: "second"},
	})
	assert.Equal(t, "first\nsecond", text)
	assert.Empty(t, resources)
}

func TestFoldContentAttachesResourceAsAnnotation(t *testing.T) {
	text, resources := foldContent([]ToolResultContent{
		{Type: "text", Text: "here's the file:"},
		{Type: "resource", URI: "file:///tmp/report.csv", MimeType: "text/csv"},
	})
	assert.Equal(t, "here's the file:", text)
	if assert.Len(t, resources, 1) {
		assert.Equal(t, "file:///tmp/report.csv", resources[0].URI)
		assert.Equal(t, "text/csv", resources[0].MimeType)
	}
}

func TestFoldContentResourceWithTextAppendsBoth(t *testing.T) {
	text, resources := foldContent([]ToolResultContent{
		{Type: "resource", URI: "file:///tmp/notes.txt", MimeType: "text/plain", Text: "note contents"},
	})
	assert.Equal(t, "note contents", text)
	if assert.Len(t, resources, 1) {
		assert.Equal(t, "file:///tmp/notes.txt", resources[0].URI)
	}
}

func TestFoldContentImageBecomesDataURIAnnotation(t *testing.T) {
	_, resources := foldContent([]ToolResultContent{
		{Type: "image", Data: "Zm9v", MimeType: "image/png"},
	})
	if assert.Len(t, resources, 1) {
		assert.Equal(t, "data:image/png;base64,Zm9v", resources[0].URI)
		assert.Equal(t, "image/png", resources[0].MimeType)
	}
}

func TestFoldContentImageURLKeptAsIs(t *testing.T) {
	_, resources := foldContent([]ToolResultContent{
		{Type: "image", Data: "https://example.com/chart.png", MimeType: "image/png"},
	})
	if assert.Len(t, resources, 1) {
		assert.Equal(t, "https://example.com/chart.png", resources[0].URI)
	}
}

func TestFoldContentUnknownTypeFallsBackToText(t *testing.T) {
	text, resources := foldContent([]ToolResultContent{
		{Type: "widget", Text: "unrecognized payload"},
	})
	assert.Equal(t, "unrecognized payload", text)
	assert.Empty(t, resources)
}

func TestFoldContentEmpty(t *testing.T) {
	text, resources := foldContent(nil)
	assert.Equal(t, "", text)
	assert.Empty(t, resources)
}
