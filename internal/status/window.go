package status

import (
	"strings"
	"time"
)

type window string
type windowOptions []window

func (option window) Match(input string) bool {
	return strings.ToUpper(strings.TrimSpace(input)) == string(option)
}

func (options windowOptions) Includes(input string) bool {
	for _, w := range options {
		if w.Match(input) {
			return true
		}
	}
	return false
}

var NamedWindows windowOptions = windowOptions{
	"FIFTEEN_MINUTES",
	"THIRTY_MINUTES",
	"ONE_HOUR",
	"SIX_HOURS",
	"TWELVE_HOURS",
	"ONE_DAY",
}

var namedWindowDurations = map[window]time.Duration{
	"FIFTEEN_MINUTES": 15 * time.Minute,
	"THIRTY_MINUTES":  30 * time.Minute,
	"ONE_HOUR":        time.Hour,
	"SIX_HOURS":       6 * time.Hour,
	"TWELVE_HOURS":    12 * time.Hour,
	"ONE_DAY":         24 * time.Hour,
}

// ParseWindow accepts a named window such as ONE_HOUR or a Go duration such as
// 45m. ok is false for anything else, including non-positive durations.
func ParseWindow(raw string) (time.Duration, bool) {
	for _, w := range NamedWindows {
		if w.Match(raw) {
			return namedWindowDurations[w], true
		}
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
