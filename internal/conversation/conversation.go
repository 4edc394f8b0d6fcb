package conversation

import "encoding/json"

type Role string

const (
	RoleSystem     Role = "system"
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool"
)

// ToolCall is a tool invocation requested by an assistant turn. ID correlates
// the call with its ToolResult turn.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Turn is one entry of a conversation. Role selects which fields are meaningful:
// Assistant turns may carry ToolCalls, ToolResult turns carry ToolCallID and IsError.
type Turn struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	IsError    bool       `json:"isError,omitempty"`
}

func System(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

func User(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

func Assistant(content string, calls ...ToolCall) Turn {
	return Turn{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

func ToolResult(callID, content string, isError bool) Turn {
	return Turn{Role: RoleToolResult, Content: content, ToolCallID: callID, IsError: isError}
}

func (t Turn) HasToolCalls() bool {
	return t.Role == RoleAssistant && len(t.ToolCalls) > 0
}

// Conversation is an append-only sequence of turns owned by a single analysis.
type Conversation struct {
	turns []Turn
}

func New(turns ...Turn) *Conversation {
	c := &Conversation{}
	for _, t := range turns {
		c.Append(t)
	}
	return c
}

func (c *Conversation) Append(t Turn) {
	if len(t.ToolCalls) > 0 {
		t.ToolCalls = append([]ToolCall(nil), t.ToolCalls...)
	}
	c.turns = append(c.turns, t)
}

func (c *Conversation) Len() int {
	return len(c.turns)
}

// Turns returns a copy; callers cannot rewrite history through it.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// ToolResultFor returns the result turn correlated with the given call id.
func (c *Conversation) ToolResultFor(callID string) (Turn, bool) {
	for _, t := range c.turns {
		if t.Role == RoleToolResult && t.ToolCallID == callID {
			return t, true
		}
	}
	return Turn{}, false
}
