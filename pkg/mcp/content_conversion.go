package mcp

import (
	"strings"

	"github.com/loomware/agentcore/pkg/convo"
)

// foldContent implements §4.5's tool-result folding: "text" blocks are
// concatenated into the ToolMessage's plain-text Content, and "resource"
// blocks are carried alongside as structured ResourceContentBlock
// annotations; a resource block's own Text, when non-empty, is also
// appended to Content. "image" content is folded the
// same way as a resource annotation (uri+mimeType, no inline bytes) — the
// teacher's content_conversion.go special-cased this to avoid inlining a
// base64 image as text and exploding the token count; generalized here to
// the single Annotations mechanism instead of a second bespoke image path.
func foldContent(content []ToolResultContent) (text string, resources []convo.ResourceContentBlock) {
	var b strings.Builder
	for _, item := range content {
		switch item.Type {
		case "text":
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(item.Text)

		case "resource":
			resources = append(resources, convo.ResourceContentBlock{
				URI:      item.URI,
				MimeType: item.MimeType,
			})
			if item.Text != "" {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(item.Text)
			}

		case "image":
			resources = append(resources, convo.ResourceContentBlock{
				URI:      imageReference(item),
				MimeType: item.MimeType,
			})

		default:
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(item.Text)
		}
	}
	return b.String(), resources
}

// imageReference returns a referenceable URI for inline image content: the
// item's own URI/URL data, or a data: URI wrapping the base64 payload MCP
// image content otherwise carries, so even raw-base64 image blocks keep a
// single Annotations[].URI as their structured reference instead of being
// inlined into Content as text.
func imageReference(item ToolResultContent) string {
	if strings.HasPrefix(item.Data, "http://") || strings.HasPrefix(item.Data, "https://") || strings.HasPrefix(item.Data, "data:") {
		return item.Data
	}
	if item.Data == "" {
		return item.URI
	}
	return "data:" + item.MimeType + ";base64," + item.Data
}
