package debug

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDisabledIsSilent(t *testing.T) {
	Disable()
	Log("test", "nothing %d", 1)
	assert.False(t, Enabled())
}

func TestLogWritesCategory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EnableWriter(&buf, slog.LevelDebug))
	defer Disable()

	Log("register", "len=%d", 8)
	out := buf.String()
	assert.Contains(t, out, "len=8")
	assert.Contains(t, out, "category=register")
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EnableWriter(&buf, slog.LevelDebug))
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(5, "clock", "tick")
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "tick (every 5"))
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EnableWriter(&buf, slog.LevelWarn))
	defer Disable()

	Log("quiet", "hidden")
	Warn("loud", "shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
