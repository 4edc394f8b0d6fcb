package conversation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_AppendOnly(t *testing.T) {
	c := New(System("sys"), User("hello"))
	require.Equal(t, 2, c.Len())

	snapshot := c.Turns()
	snapshot[0].Content = "rewritten"

	assert.Equal(t, "sys", c.Turns()[0].Content)
}

func TestConversation_ToolCallsCopied(t *testing.T) {
	calls := []ToolCall{{ID: "a", Name: "fetch_error_log", Arguments: json.RawMessage(`{}`)}}
	c := New()
	c.Append(Assistant("", calls...))

	calls[0].Name = "changed"
	assert.Equal(t, "fetch_error_log", c.Turns()[0].ToolCalls[0].Name)
}

func TestTurn_HasToolCalls(t *testing.T) {
	assert.False(t, Assistant("done").HasToolCalls())
	assert.True(t, Assistant("", ToolCall{ID: "1", Name: "x"}).HasToolCalls())
	assert.False(t, User("hi").HasToolCalls())
}

func TestConversation_ToolResultFor(t *testing.T) {
	c := New(
		Assistant("", ToolCall{ID: "call_1", Name: "fetch_error_log"}),
		ToolResult("call_1", "log text", false),
	)

	turn, ok := c.ToolResultFor("call_1")
	require.True(t, ok)
	assert.Equal(t, "log text", turn.Content)

	_, ok = c.ToolResultFor("missing")
	assert.False(t, ok)
}
