package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ricardonunez-io/logsleuth/internal/report"
	"github.com/rs/zerolog/log"
)

const fence = "```"

var validate = validator.New(validator.WithRequiredStructEnabled())

// wireReport mirrors report.Report but tolerates numbers where strings are
// expected. Optional fields also accept objects and arrays.
type wireReport struct {
	EventID        looseString `json:"event_id"`
	ErrorCode      flexString  `json:"error_code" validate:"required"`
	ErrorSummary   flexString  `json:"error_summary" validate:"required"`
	ServerStatus   looseString `json:"server_status"`
	AffectedModule looseString `json:"affected_module"`
	UserInfo       looseString `json:"user_info"`
	RiskLevel      flexString  `json:"risk_level" validate:"required"`
	Recommendation flexString  `json:"recommendation" validate:"required"`
	RawErrorLogs   looseString `json:"raw_error_logs"`
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = flexString(n.String())
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*f = flexString(data)
	default:
		return fmt.Errorf("expected string, got %s", data)
	}
	return nil
}

// looseString is a flexString that also takes composite values. An array of
// strings is joined one per line; any other array or object is kept as compact
// JSON and marked composite.
type looseString struct {
	value     string
	composite bool
}

func (l *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || (data[0] != '{' && data[0] != '[') {
		var f flexString
		if err := f.UnmarshalJSON(data); err != nil {
			return err
		}
		*l = looseString{value: string(f)}
		return nil
	}

	var lines []string
	if data[0] == '[' && json.Unmarshal(data, &lines) == nil {
		*l = looseString{value: strings.Join(lines, "\n")}
		return nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return err
	}
	*l = looseString{value: compact.String(), composite: true}
	return nil
}

// scalar drops composite values, for fields that must stay a single token.
func (l looseString) scalar() string {
	if l.composite {
		return ""
	}
	return l.value
}

// Report pulls a report out of free-form model output. It never fails: output
// that cannot be decoded or validated yields report.ParseFailure. fallbackID
// is used when the payload has no event_id and for degraded reports.
func Report(text, fallbackID string) report.Report {
	payload := Candidate(text)

	r, err := decode(payload, fallbackID)
	if err != nil {
		log.Warn().Err(err).Int("length", len(text)).Msg("Falling back to degraded report")
		return report.ParseFailure(fallbackID, text)
	}
	return r
}

// Candidate selects the substring most likely to hold the JSON object, trying in
// order: a ```json fence, any fence, the first '{' to the last '}', the whole text.
func Candidate(text string) string {
	if _, after, found := strings.Cut(text, fence+"json"); found {
		return strings.TrimSpace(untilFence(after))
	}

	if _, after, found := strings.Cut(text, fence); found {
		return strings.TrimSpace(dropLanguageTag(untilFence(after)))
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func untilFence(s string) string {
	body, _, _ := strings.Cut(s, fence)
	return body
}

// dropLanguageTag removes an info string such as "javascript" after an opening fence.
func dropLanguageTag(block string) string {
	first, rest, found := strings.Cut(block, "\n")
	if !found {
		return block
	}
	tag := strings.TrimSpace(first)
	if tag != "" && !strings.ContainsAny(tag, "{}[]\":") {
		return rest
	}
	return block
}

func decode(payload, fallbackID string) (report.Report, error) {
	if payload == "" {
		return report.Report{}, errors.New("no JSON payload")
	}

	var w wireReport
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return report.Report{}, fmt.Errorf("decode report: %w", err)
	}
	if err := validate.Struct(w); err != nil {
		return report.Report{}, fmt.Errorf("validate report: %w", err)
	}

	r := report.Report{
		EventID:        w.EventID.scalar(),
		ErrorCode:      string(w.ErrorCode),
		ErrorSummary:   string(w.ErrorSummary),
		ServerStatus:   w.ServerStatus.value,
		AffectedModule: w.AffectedModule.value,
		UserInfo:       w.UserInfo.value,
		Recommendation: string(w.Recommendation),
		RawErrorLogs:   w.RawErrorLogs.value,
	}
	if strings.TrimSpace(r.EventID) == "" {
		r.EventID = fallbackID
	}
	if strings.TrimSpace(r.EventID) == "" {
		r.EventID = report.UnknownEventID
	}
	if r.ServerStatus == "" {
		r.ServerStatus = "unknown"
	}

	level, ok := report.ParseRiskLevel(string(w.RiskLevel))
	if !ok {
		r.ErrorSummary = fmt.Sprintf("%s (risk level %q not recognised, defaulted to %s)", r.ErrorSummary, string(w.RiskLevel), report.RiskMedium)
	}
	r.RiskLevel = level

	return r, nil
}
