package fuzzy

import "regexp"

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Negative business codes (ret=-6712) are kept verbatim: two errors that differ
// only by code are different errors.
var rules = []rule{
	{regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`), "<UUID>"},
	{regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9]*(?:-[A-Za-z0-9]+){3,}\b`), "<SERIAL>"},
	{regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}(:\d+)?\b`), "<IP>"},
	{regexp.MustCompile(`(?i)\b(qq|uin)([:=])\d+`), "$1$2<QQ>"},
	{regexp.MustCompile(`(?i)\b(openid)([:=])[\w-]+`), "$1$2<OPENID>"},
	{regexp.MustCompile(`\b[0-9a-fA-F]{24,}\b`), "<HEX>"},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?`), "<TIMESTAMP>"},
	{regexp.MustCompile(`/[\w./]+(:\d+)?`), "<PATH>"},
	{regexp.MustCompile(`(^|[^\w.-])\d+(\.\d+)?(ms|s)?\b`), "$1<NUM>"},
}

func Normalize(msg string) string {
	for _, r := range rules {
		msg = r.pattern.ReplaceAllString(msg, r.replacement)
	}
	return msg
}
