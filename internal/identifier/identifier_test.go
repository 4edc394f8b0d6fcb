package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PlatformTag(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"DJC-CF-1211212348-8RJKIC-529-425718", "DJC"},
		{"LotteryV31-abc-1", "LotteryV31"},
		{"AMS-H2-xxx", "AMS"},
		{"  DJC-CF-1  ", "DJC"},
		{"-leading", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw, "").PlatformTag)
		})
	}
}

func TestParse_NoSeparatorUsesDefault(t *testing.T) {
	for _, raw := range []string{"EVT2025121800042", "", "plain"} {
		assert.Equal(t, DefaultPlatform, Parse(raw, "").PlatformTag, raw)
	}
	assert.Equal(t, "XYZ", Parse("nodash", "XYZ").PlatformTag)
}

func TestParse_TrimsRaw(t *testing.T) {
	id := Parse(" DJC-CF-1 \n", "")
	assert.Equal(t, "DJC-CF-1", id.Raw)
	assert.Equal(t, "DJC-CF-1", id.String())
}

func TestFind(t *testing.T) {
	id, ok := Find("flow id DJC-CF-1211212348-8RJKIC-529-425718", "")
	require.True(t, ok)
	assert.Equal(t, "DJC-CF-1211212348-8RJKIC-529-425718", id.Raw)
	assert.Equal(t, "DJC", id.PlatformTag)

	id, ok = Find("我遇到问题了，流水号是 AMS-H2-99812-ZZ，帮我看看", "")
	require.True(t, ok)
	assert.Equal(t, "AMS-H2-99812-ZZ", id.Raw)
}

func TestFind_NoIdentifier(t *testing.T) {
	_, ok := Find("nothing to see here, only one-dash", "")
	assert.False(t, ok)

	_, ok = Find("", "")
	assert.False(t, ok)
}
