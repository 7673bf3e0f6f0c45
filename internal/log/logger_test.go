package log

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		env   string
		level string
		want  zerolog.Level
	}{
		{"production", "", zerolog.InfoLevel},
		{"development", "", zerolog.DebugLevel},
		{"production", "debug", zerolog.DebugLevel},
		{"development", "WARN", zerolog.WarnLevel},
		{"development", "error", zerolog.ErrorLevel},
		{"production", "bogus", zerolog.InfoLevel},
		{"development", "bogus", zerolog.DebugLevel},
		{"production", "trace", zerolog.TraceLevel},
		{"production", "Fatal", zerolog.FatalLevel},
		{"production", "panic", zerolog.PanicLevel},
		{"production", "disabled", zerolog.Disabled},
		{"development", " info ", zerolog.InfoLevel},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseLevel(tc.env, tc.level), "env=%s level=%s", tc.env, tc.level)
	}
}
