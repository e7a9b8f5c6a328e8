package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndGetShareOneLogger(t *testing.T) {
	var buf bytes.Buffer
	log := Init(Options{Level: "debug", Output: &buf})
	require.NotNil(t, log)

	// Get hands out the same instance and supports inline chaining.
	assert.Same(t, log, Get())
	Get().Info().Str("component", "sweeper").Msg("started")

	out := buf.String()
	assert.True(t, strings.Contains(out, `"component":"sweeper"`), out)
	assert.True(t, strings.Contains(out, "started"), out)

	// Repeated Init never re-wires the output.
	var other bytes.Buffer
	Init(Options{Output: &other})
	Get().Info().Msg("again")
	assert.Zero(t, other.Len())
	assert.True(t, strings.Contains(buf.String(), "again"))
}
