package chatmodel

import (
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// OutputResult must satisfy ContentProvider as a value type, since the
// assistant is instantiated as Assistant[OutputResult].
var _ ContentProvider = OutputResult{}

func TestMCPInputRequest_ParseInput(t *testing.T) {
	t.Parallel()
	m := &MCPInputRequest{}
	raw := `{"chatID":"abc","input":"3 days in Lisbon"}`
	err := m.ParseInput(raw)
	require.NoError(t, err)
	assert.Equal(t, "abc", m.ChatID)
	assert.Equal(t, "3 days in Lisbon", m.Input)

	err = m.ParseInput("{invalid json}")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailedUnmarshalInput)
}

func TestMCPInputRequest_JSONSchemaExtend(t *testing.T) {
	t.Parallel()
	m := MCPInputRequest{}
	schema := &jsonschema.Schema{}
	m.JSONSchemaExtend(schema)
	assert.Equal(t, "MCP Input Request", schema.Title)
}

func TestInputRequest(t *testing.T) {
	t.Parallel()
	r := &InputRequest{}
	raw := `{"input":"hello"}`
	err := r.ParseInput(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", r.Input)
	assert.Equal(t, "hello", r.GetContent())

	err = r.ParseInput("{invalid json}")
	require.Error(t, err)

	schema := &jsonschema.Schema{}
	r.JSONSchemaExtend(schema)
	assert.Equal(t, "Input Request", schema.Title)

	assert.Equal(t, "hi", NewInputRequest("hi").GetContent())
}

func TestOutputResult(t *testing.T) {
	t.Parallel()
	res := NewOutputResult("Day 1: Alfama.")
	assert.Equal(t, "Day 1: Alfama.", res.GetContent())

	// the value, not only the pointer, carries the content
	var provider ContentProvider = *res
	assert.Equal(t, "Day 1: Alfama.", provider.GetContent())
}
