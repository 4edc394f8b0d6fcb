package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Name string

const (
	FetchErrorLog     Name = "fetch_error_log"
	CheckServerStatus Name = "check_server_status"
)

type FetchErrorLogArgs struct {
	EventID string `json:"event_id" jsonschema:"description=Unique event identifier (serial) such as DJC-CF-1211212348-8RJKIC-529-425718"`
}

type CheckServerStatusArgs struct {
	ServiceName string `json:"service_name" jsonschema:"description=Service name taken from the log such as order-service or auth-service or payment-service"`
}

// Call is a decoded tool invocation. The set of implementations is closed.
type Call interface {
	Tool() Name
}

type FetchErrorLogCall struct {
	Args FetchErrorLogArgs
}

func (FetchErrorLogCall) Tool() Name { return FetchErrorLog }

type CheckServerStatusCall struct {
	Args CheckServerStatusArgs
}

func (CheckServerStatusCall) Tool() Name { return CheckServerStatus }

// Decode maps a tool name and its JSON arguments onto a typed Call. Arguments
// are not checked against the declared schema; absent fields stay empty.
func Decode(name string, arguments json.RawMessage) (Call, error) {
	switch Name(name) {
	case FetchErrorLog:
		var args FetchErrorLogArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return nil, err
		}
		return FetchErrorLogCall{Args: args}, nil
	case CheckServerStatus:
		var args CheckServerStatusArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return nil, err
		}
		return CheckServerStatusCall{Args: args}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
