package logline

import "strings"

type Level string
type levelOptions []Level

func (option Level) Match(input string) bool {
	return strings.ToUpper(strings.TrimSpace(input)) == string(option)
}

func (options levelOptions) Includes(input string) bool {
	for _, l := range options {
		if l.Match(input) {
			return true
		}
	}
	return false
}

const (
	INFO  Level = "INF"
	WARN  Level = "WRN"
	ERROR Level = "ER"
)

var ValidLevels levelOptions = levelOptions{
	INFO,  // routine request tracing
	WARN,  // recoverable problems
	ERROR, // failed calls, the lines an analysis cares about
}

func (l Level) rank() int {
	switch l {
	case ERROR:
		return 2
	case WARN:
		return 1
	default:
		return 0
	}
}

// ShouldSkip reports whether an entry at level falls below minimum.
func ShouldSkip(level, minimum Level) bool {
	return level.rank() < minimum.rank()
}
