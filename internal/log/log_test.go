package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormat_Fields(t *testing.T) {
	ts := time.Date(2025, 12, 6, 10, 45, 0, 0, time.UTC)
	got := Format(ts, LevelWarn, CatPlan, "geometry missing", "token", "abc", "side", "next")
	require.Equal(t, "2025-12-06T10:45:00 [WARN] [plan] geometry missing token=abc side=next\n", got)
}

func TestFormat_OddFieldCount(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got := Format(ts, LevelInfo, CatMatch, "paired", "count")
	require.Contains(t, got, "count=<missing>")
}

func TestSetOutput_RespectsLevelAndEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	SetMinLevel(LevelWarn)
	Info(CatMatch, "hidden")
	Warn(CatMatch, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "[WARN] [match] shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatMatch, "muted")
	require.Empty(t, buf.String())
}

func TestWrite_NoLoggerIsNoop(t *testing.T) {
	SetOutput(nil)
	require.NotPanics(t, func() {
		Debug(CatRender, "nothing installed")
	})
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}
