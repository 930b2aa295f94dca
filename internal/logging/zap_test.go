package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZapLogger_WritesLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewZapLogger("debug", &buf)
	require.NoError(t, err)

	ctx := context.Background()
	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.With("doc", "d-1").Error(ctx, "err", "d", 4)
	require.NoError(t, log.Sync())

	out := buf.String()
	for _, s := range []string{"DEBUG", "INFO", "WARN", "ERROR", "dbg", "inf", "wrn", "err", `"doc": "d-1"`, `"d": 4`} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output:\n%s", s, out)
		}
	}
}

func TestZapLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewZapLogger("warn", &buf)
	require.NoError(t, err)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
}

func TestZapLogger_BadLevel(t *testing.T) {
	_, err := NewZapLogger("loud", &bytes.Buffer{})
	require.Error(t, err)
}

func TestNew_Backends(t *testing.T) {
	var buf bytes.Buffer

	l, err := New("slog", "info", &buf)
	require.NoError(t, err)
	l.Info(context.Background(), "via slog")
	require.Contains(t, buf.String(), "msg=\"via slog\"")

	buf.Reset()
	l, err = New("zap", "info", &buf)
	require.NoError(t, err)
	l.Info(context.Background(), "via zap")
	require.Contains(t, buf.String(), "via zap")

	_, err = New("logrus", "info", &buf)
	require.Error(t, err)

	_, err = New("slog", "chatty", &buf)
	require.Error(t, err)
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	l.With("k", "v").Error(context.Background(), "ignored")
}
