package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ricardonunez-io/logsleuth/internal/conversation"
	"github.com/ricardonunez-io/logsleuth/internal/tools"
)

var ErrMissingAPIKey = errors.New("ANTHROPIC_API_KEY is not set")

// Anthropic drives the Messages API with tool use.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewAnthropic(cfg Config) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig("").MaxTokens
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig("").Model
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

func (a *Anthropic) Model() string {
	return a.model
}

// Next sends the whole conversation and returns exactly one assistant turn.
func (a *Anthropic) Next(ctx context.Context, turns []conversation.Turn, descriptors []tools.Descriptor) (conversation.Turn, error) {
	system, messages := toMessages(turns)

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    system,
		Messages:  messages,
		Tools:     toTools(descriptors),
	})
	if err != nil {
		return conversation.Turn{}, fmt.Errorf("anthropic API error: %w", err)
	}

	var text []string
	var calls []conversation.ToolCall
	for _, block := range message.Content {
		switch block.Type {
		case "text":
			text = append(text, block.Text)
		case "tool_use":
			calls = append(calls, conversation.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: json.RawMessage(block.Input),
			})
		}
	}

	return conversation.Assistant(strings.Join(text, "\n"), calls...), nil
}

func toTools(descriptors []tools.Descriptor) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(descriptors))
	for _, d := range descriptors {
		properties, required := d.InputSchema()
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        string(d.Name),
				Description: anthropic.String(d.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   required,
				},
			},
		})
	}
	return out
}

// toMessages maps turns onto the Messages API: system turns become the system
// prompt and consecutive tool results share one user message.
func toMessages(turns []conversation.Turn) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam
	var pendingResults []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pendingResults) > 0 {
			messages = append(messages, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, t := range turns {
		switch t.Role {
		case conversation.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: t.Content})
		case conversation.RoleUser:
			flush()
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		case conversation.RoleAssistant:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if t.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(t.Content))
			}
			for _, c := range t.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(c.ID, rawInput(c.Arguments), c.Name))
			}
			if len(blocks) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(blocks...))
			}
		case conversation.RoleToolResult:
			pendingResults = append(pendingResults, anthropic.NewToolResultBlock(t.ToolCallID, resultContent(t.Content), t.IsError))
		}
	}
	flush()

	return system, messages
}

// emptyResult replaces blank tool output; the API rejects empty text blocks.
const emptyResult = "(tool returned no output)"

func resultContent(content string) string {
	if strings.TrimSpace(content) == "" {
		return emptyResult
	}
	return content
}

func rawInput(args json.RawMessage) json.RawMessage {
	if len(args) == 0 {
		return json.RawMessage(`{}`)
	}
	return args
}
