package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ricardonunez-io/logsleuth/internal/conversation"
	"github.com/ricardonunez-io/logsleuth/internal/extract"
	"github.com/ricardonunez-io/logsleuth/internal/identifier"
	"github.com/ricardonunez-io/logsleuth/internal/report"
	"github.com/ricardonunez-io/logsleuth/internal/tools"
	"github.com/rs/zerolog/log"
)

var ErrIterationBudgetExceeded = errors.New("iteration budget exceeded")

// Model produces the next assistant turn for a conversation.
type Model interface {
	Next(ctx context.Context, turns []conversation.Turn, descriptors []tools.Descriptor) (conversation.Turn, error)
}

// Toolbox is the tool surface offered to the model.
type Toolbox interface {
	Describe() []tools.Descriptor
	Invoke(ctx context.Context, name string, arguments json.RawMessage) (string, error)
}

type Agent struct {
	model   Model
	toolbox Toolbox
	cfg     Config
	prompt  string
}

func New(model Model, toolbox Toolbox, cfg Config) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.DefaultPlatform == "" {
		cfg.DefaultPlatform = identifier.DefaultPlatform
	}
	return &Agent{
		model:   model,
		toolbox: toolbox,
		cfg:     cfg,
		prompt:  buildSystemPrompt(),
	}
}

// Analyze runs the tool-use loop for one input and returns the final report.
// Unparseable model output and model failures yield degraded reports; only
// cancellation and an exhausted iteration budget are returned as errors.
func (a *Agent) Analyze(ctx context.Context, input string) (report.Report, error) {
	conv := conversation.New(
		conversation.System(a.prompt),
		conversation.User(input),
	)

	var fallbackID string
	if id, ok := identifier.Find(input, a.cfg.DefaultPlatform); ok {
		fallbackID = id.String()
	}

	descriptors := a.toolbox.Describe()

	for iteration := 1; iteration <= a.cfg.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return report.Report{}, err
		}

		log.Debug().Int("iteration", iteration).Int("turns", conv.Len()).Msg("Requesting next turn")

		turn, err := a.model.Next(ctx, conv.Turns(), descriptors)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report.Report{}, ctxErr
			}
			log.Err(err).Int("iteration", iteration).Msg("Model request failed")
			return report.ModelFailure(fallbackID, err), nil
		}
		turn.Role = conversation.RoleAssistant
		conv.Append(turn)

		if !turn.HasToolCalls() {
			result := extract.Report(turn.Content, fallbackID)
			if !result.Degraded() {
				result = enrich(result, conv)
			}
			log.Info().
				Str("eventId", result.EventID).
				Str("errorCode", result.ErrorCode).
				Str("risk", string(result.RiskLevel)).
				Int("iterations", iteration).
				Msg("Analysis complete")
			return result, nil
		}

		for _, call := range turn.ToolCalls {
			content, isError := a.dispatch(ctx, call)
			conv.Append(conversation.ToolResult(call.ID, content, isError))
		}
	}

	log.Warn().Int("maxIterations", a.cfg.MaxIterations).Msg("Iteration budget exhausted without a final answer")
	return report.Report{}, fmt.Errorf("%w: no final answer after %d iterations", ErrIterationBudgetExceeded, a.cfg.MaxIterations)
}

func (a *Agent) dispatch(ctx context.Context, call conversation.ToolCall) (string, bool) {
	log.Debug().Str("tool", call.Name).Str("callId", call.ID).RawJSON("arguments", rawArgs(call.Arguments)).Msg("Dispatching tool call")

	content, err := a.toolbox.Invoke(ctx, call.Name, call.Arguments)
	if errors.Is(err, tools.ErrUnknownTool) {
		log.Warn().Str("tool", call.Name).Msg("Model requested an unknown tool")
		return fmt.Sprintf("Error: Unknown tool '%s'", call.Name), true
	}
	if err != nil {
		return fmt.Sprintf("Error: tool '%s' failed: %v", call.Name, err), true
	}
	return content, false
}

func rawArgs(args json.RawMessage) []byte {
	if !json.Valid(args) {
		return []byte(`{}`)
	}
	return args
}
