package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/ricardonunez-io/logsleuth/internal/identifier"
	"github.com/rs/zerolog/log"
)

var ErrUnknownTool = errors.New("unknown tool")

// LogSource returns the raw log text recorded for an event. Failures are
// reported inside the returned text.
type LogSource interface {
	Fetch(ctx context.Context, id identifier.Identifier) string
}

// StatusSource returns a free-text health report for a service.
type StatusSource interface {
	Fetch(ctx context.Context, service string) string
}

type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

type Descriptor struct {
	Name        Name        `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// InputSchema renders the parameters as a JSON-schema object body.
func (d Descriptor) InputSchema() (properties map[string]any, required []string) {
	properties = make(map[string]any, len(d.Parameters))
	for _, p := range d.Parameters {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return properties, required
}

type Registry struct {
	logs            LogSource
	status          StatusSource
	defaultPlatform string
	descriptors     []Descriptor
}

func NewRegistry(logs LogSource, status StatusSource, defaultPlatform string) *Registry {
	return &Registry{
		logs:            logs,
		status:          status,
		defaultPlatform: defaultPlatform,
		descriptors: []Descriptor{
			{
				Name:        FetchErrorLog,
				Description: "Fetch the raw error log text for an event ID. The result is unstructured log text with timestamps, levels, modules and error details that must be parsed to extract the key information.",
				Parameters:  parametersOf(&FetchErrorLogArgs{}),
			},
			{
				Name:        CheckServerStatus,
				Description: "Fetch today's health report for a service. The result is a monitoring text report with the service status, error rate, today's incidents and resource usage.",
				Parameters:  parametersOf(&CheckServerStatusArgs{}),
			},
		},
	}
}

// Describe returns the tool descriptors in a stable order.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Invoke runs the named tool. The only error returned is ErrUnknownTool;
// malformed arguments and collaborator failures come back as result text.
func (r *Registry) Invoke(ctx context.Context, name string, arguments json.RawMessage) (string, error) {
	call, err := Decode(name, arguments)
	if errors.Is(err, ErrUnknownTool) {
		return "", err
	}
	if err != nil {
		log.Warn().Err(err).Str("tool", name).Msg("Tool arguments could not be decoded")
		return fmt.Sprintf("Error: invalid arguments for tool '%s': %v", name, err), nil
	}

	switch c := call.(type) {
	case FetchErrorLogCall:
		id := identifier.Parse(c.Args.EventID, r.defaultPlatform)
		log.Info().Stringer("eventId", id).Str("platform", id.PlatformTag).Msg("Fetching error log")
		return r.logs.Fetch(ctx, id), nil
	case CheckServerStatusCall:
		service := strings.TrimSpace(c.Args.ServiceName)
		log.Info().Str("service", service).Msg("Checking server status")
		return r.status.Fetch(ctx, service), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

func parametersOf(v any) []Parameter {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := reflector.Reflect(v)

	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}

	var params []Parameter
	if s.Properties == nil {
		return params
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		params = append(params, Parameter{
			Name:        pair.Key,
			Type:        pair.Value.Type,
			Description: pair.Value.Description,
			Required:    required[pair.Key],
		})
	}
	return params
}
