package report

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

const (
	UnknownEventID = "UNKNOWN"

	CodeParseError = "PARSE_ERROR"
	CodeModelError = "MODEL_ERROR"

	// SummaryLimit bounds the summary of a degraded report and the raw error excerpt.
	SummaryLimit = 200
)

// Report is the structured diagnosis of one event.
type Report struct {
	EventID        string    `json:"event_id" yaml:"event_id" jsonschema:"description=Event identifier (serial) the analysis is about"`
	ErrorCode      string    `json:"error_code" yaml:"error_code" jsonschema:"description=Error code extracted from the log such as -6712"`
	ErrorSummary   string    `json:"error_summary" yaml:"error_summary" jsonschema:"description=One sentence: which module failed how and what it affects"`
	ServerStatus   string    `json:"server_status" yaml:"server_status" jsonschema:"description=Service status inferred from the log and health report"`
	AffectedModule string    `json:"affected_module,omitempty" yaml:"affected_module,omitempty" jsonschema:"description=Affected module name such as app.coupon.available"`
	UserInfo       string    `json:"user_info,omitempty" yaml:"user_info,omitempty" jsonschema:"description=User information found in the log such as QQ number"`
	RiskLevel      RiskLevel `json:"risk_level" yaml:"risk_level" jsonschema:"enum=low,enum=medium,enum=high,enum=critical"`
	Recommendation string    `json:"recommendation" yaml:"recommendation" jsonschema:"description=Concrete actionable next step"`
	RawErrorLogs   string    `json:"raw_error_logs,omitempty" yaml:"raw_error_logs,omitempty" jsonschema:"description=Key error log excerpt"`
}

// Degraded reports whether the report was produced by a fallback path.
func (r Report) Degraded() bool {
	return r.ErrorCode == CodeParseError || r.ErrorCode == CodeModelError
}

// ParseRiskLevel normalises case and whitespace. ok is false for values outside
// the four known levels, in which case RiskMedium is returned.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	normalized := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	if normalized.Valid() {
		return normalized, true
	}
	return RiskMedium, false
}

func (l RiskLevel) Valid() bool {
	for _, known := range RiskLevels {
		if l == known {
			return true
		}
	}
	return false
}

// ParseFailure builds the report returned when model output cannot be decoded.
func ParseFailure(eventID, content string) Report {
	summary := Truncate(content, SummaryLimit)
	if summary == "" {
		summary = "model output could not be parsed"
	}
	return Report{
		EventID:        orUnknown(eventID),
		ErrorCode:      CodeParseError,
		ErrorSummary:   summary,
		ServerStatus:   "unknown",
		RiskLevel:      RiskMedium,
		Recommendation: "Inspect the event log manually; the agent output did not match the report format.",
	}
}

// ModelFailure builds the report returned when the language model call fails.
func ModelFailure(eventID string, err error) Report {
	return Report{
		EventID:        orUnknown(eventID),
		ErrorCode:      CodeModelError,
		ErrorSummary:   Truncate(fmt.Sprintf("language model request failed: %v", err), SummaryLimit),
		ServerStatus:   "unknown",
		RiskLevel:      RiskMedium,
		Recommendation: "Retry the analysis later or inspect the event log manually.",
	}
}

// Truncate returns at most limit characters of s without splitting a rune.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

func orUnknown(eventID string) string {
	if strings.TrimSpace(eventID) == "" {
		return UnknownEventID
	}
	return eventID
}
