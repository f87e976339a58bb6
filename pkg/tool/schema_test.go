package tool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomware/agentcore/pkg/tool"
)

func TestValidName(t *testing.T) {
	assert.True(t, tool.ValidName("search_docs"))
	assert.True(t, tool.ValidName("_private"))
	assert.False(t, tool.ValidName("123bad"))
	assert.False(t, tool.ValidName("has-dash"))
	assert.False(t, tool.ValidName(""))
}

func TestObjectSchemaNonStrictEmitsDeclaredRequired(t *testing.T) {
	schema := tool.Object(map[string]tool.ParameterSchema{
		"query": tool.String("search query"),
		"limit": tool.Integer("max results"),
	}, []string{"query"}, "search parameters")

	out := schema.ToJSONSchema(false)
	assert.Equal(t, "object", out["type"])
	assert.Equal(t, []string{"query"}, out["required"])
	assert.NotContains(t, out, "additionalProperties")
}

func TestObjectSchemaStrictListsEveryPropertyAsRequired(t *testing.T) {
	schema := tool.Object(map[string]tool.ParameterSchema{
		"query": tool.String("search query"),
		"limit": tool.Integer("max results"),
	}, []string{"query"}, "search parameters")

	out := schema.ToJSONSchema(true)
	required, ok := out["required"].([]string)
	require.True(t, ok, "expected required to be []string")
	assert.ElementsMatch(t, []string{"query", "limit"}, required)
	assert.Equal(t, false, out["additionalProperties"])
}

func TestArraySchemaEmitsItems(t *testing.T) {
	schema := tool.Array(tool.String(""), "tags")
	out := schema.ToJSONSchema(false)
	assert.Equal(t, "array", out["type"])
	items, ok := out["items"].(map[string]any)
	require.True(t, ok, "expected items to be a map")
	assert.Equal(t, "string", items["type"])
}

func TestEnumSchemaEmitsEnumValues(t *testing.T) {
	schema := tool.Enum("string", []any{"low", "medium", "high"}, "priority")
	out := schema.ToJSONSchema(false)
	assert.Equal(t, "string", out["type"])
	assert.Equal(t, []any{"low", "medium", "high"}, out["enum"])
}

func TestHasRequiredProperties(t *testing.T) {
	withRequired := tool.Object(map[string]tool.ParameterSchema{"a": tool.String("")}, []string{"a"}, "")
	withoutRequired := tool.Object(map[string]tool.ParameterSchema{"a": tool.String("")}, nil, "")
	assert.True(t, withRequired.HasRequiredProperties())
	assert.False(t, withoutRequired.HasRequiredProperties())
	assert.False(t, tool.String("").HasRequiredProperties())
}
