package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		" junk ":  zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "json", Service: "cardiorisk", Writer: &buf})

	ctx := WithRequestID(context.Background(), "01HREQ")
	assert.Equal(t, "01HREQ", RequestID(ctx))
	C(ctx).Info().Msg("hello")
	Named("store").Debug().Msg("ping")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "01HREQ", first["request_id"])
	assert.Equal(t, "cardiorisk", first["service"])
	assert.Equal(t, "store", second["component"])
}

func TestCWithoutRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Format: "json", Writer: &buf})

	C(context.Background()).Info().Msg("dropped")
	assert.Empty(t, buf.String())
	assert.Same(t, Get(), C(context.Background()))
}
