package identifier

import (
	"regexp"
	"strings"
)

// DefaultPlatform is used when an identifier carries no platform prefix.
const DefaultPlatform = "AMS"

const Separator = "-"

// Identifier is an event serial such as DJC-CF-1211212348-8RJKIC-529-425718.
type Identifier struct {
	Raw         string
	PlatformTag string
}

var candidate = regexp.MustCompile(`[A-Za-z][A-Za-z0-9]*(?:-[A-Za-z0-9]+){2,}`)

func Parse(raw, defaultPlatform string) Identifier {
	raw = strings.TrimSpace(raw)
	if defaultPlatform == "" {
		defaultPlatform = DefaultPlatform
	}

	tag := defaultPlatform
	if before, _, found := strings.Cut(raw, Separator); found {
		tag = before
	}

	return Identifier{Raw: raw, PlatformTag: tag}
}

// Find returns the first identifier-shaped token in free text, e.g.
// "flow id DJC-CF-1211212348-8RJKIC-529-425718, please check".
func Find(text, defaultPlatform string) (Identifier, bool) {
	match := candidate.FindString(text)
	if match == "" {
		return Identifier{}, false
	}
	return Parse(match, defaultPlatform), true
}

func (id Identifier) String() string {
	return id.Raw
}
