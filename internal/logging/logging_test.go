package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"", "dev", "prod", "json"} {
		l, err := New(mode, false)
		require.NoError(t, err, "mode %q", mode)
		assert.NotNil(t, l.SugaredLogger)
	}

	_, err := New("syslog", false)
	assert.Error(t, err)
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	l, err := New("dev", true)
	require.NoError(t, err)
	assert.True(t, l.SugaredLogger.Desugar().Core().Enabled(zap.DebugLevel))

	l, err = New("dev", false)
	require.NoError(t, err)
	assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zap.DebugLevel))
}

func TestLogger_RedactsMailto(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core))

	l.Info("client ready", "mailto", "me@example.org", "delay", "300ms")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["mailto"])
	assert.Equal(t, "300ms", fields["delay"])
}

func TestLogger_OddKeyValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).With("run", 1)

	assert.NotPanics(t, func() { l.Warn("dangling", "key") })
	assert.GreaterOrEqual(t, logs.Len(), 1)
}
