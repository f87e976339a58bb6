package tool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loomware/agentcore/pkg/tool"
)

type searchParams struct {
	Query string `json:"query" jsonschema:"required,description=the search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=max results"`
}

func TestFromStructEmitsObjectSchema(t *testing.T) {
	out := tool.FromStruct(searchParams{})
	assert.Equal(t, "object", out["type"])
	assert.Contains(t, out, "properties")
}
