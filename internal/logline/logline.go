package logline

import (
	"regexp"
	"strings"
)

// Entry is one line of the log service output:
//
//	[F:10.0.0.1|QQ:12345]2025-12-18 10:30:00|ER||[coupon.cpp:120][DJC-CF-1][app.coupon.available][OPENID:abc]call failed, ret=-6712
type Entry struct {
	IP        string
	QQ        string
	Timestamp string
	Level     Level
	Source    string
	Serial    string
	Module    string
	OpenID    string
	Message   string
	Raw       string
}

var (
	linePattern = regexp.MustCompile(`^\[F:([^|\]]*)\|QQ:([^\]]*)\]([^|]*)\|([A-Za-z]+)\|\|(.*)$`)
	tagPattern  = regexp.MustCompile(`^\[([^\]]*)\]`)
	codePattern = regexp.MustCompile(`(?:^|[^\w.])(-\d{2,})\b`)
)

func Parse(line string) (Entry, bool) {
	line = strings.TrimRight(line, "\r")
	m := linePattern.FindStringSubmatch(line)
	if m == nil || !ValidLevels.Includes(m[4]) {
		return Entry{}, false
	}

	e := Entry{
		IP:        m[1],
		QQ:        m[2],
		Timestamp: strings.TrimSpace(m[3]),
		Level:     Level(strings.ToUpper(m[4])),
		Raw:       line,
	}

	rest := m[5]
	var tags []string
	for len(tags) < 4 {
		t := tagPattern.FindStringSubmatch(rest)
		if t == nil {
			break
		}
		tags = append(tags, t[1])
		rest = rest[len(t[0]):]
		if strings.HasPrefix(t[1], "OPENID:") {
			break
		}
	}

	for i, tag := range tags {
		if openID, ok := strings.CutPrefix(tag, "OPENID:"); ok {
			e.OpenID = openID
			continue
		}
		switch i {
		case 0:
			e.Source = tag
		case 1:
			e.Serial = tag
		case 2:
			e.Module = tag
		}
	}
	e.Message = strings.TrimSpace(rest)

	return e, true
}

// ParseAll parses every recognisable line of text, skipping the rest.
func ParseAll(text string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(text, "\n") {
		if e, ok := Parse(line); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

func Filter(entries []Entry, minimum Level) []Entry {
	var out []Entry
	for _, e := range entries {
		if ShouldSkip(e.Level, minimum) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ErrorCode returns the first negative business code in message, such as -6712.
func ErrorCode(message string) string {
	m := codePattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1]
}
