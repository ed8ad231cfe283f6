package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLogPath(root string) func(string) string {
	return func(id string) string {
		return filepath.Join(root, id, "logs", "build.log")
	}
}

func TestInstanceLogHandler_WritesBuildLog(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "inst-1"), 0755))

	var stdout bytes.Buffer
	log := New(Config{Level: slog.LevelDebug, Output: &stdout, InstanceLogPath: buildLogPath(root)})

	log.With(InstanceIDKey, "inst-1").Info("building instance spec", "nics", 2)
	log.Info("added disk", InstanceIDKey, "inst-1", "disk", "boot")
	log.Info("unrelated", "other", "x")

	data, err := os.ReadFile(filepath.Join(root, "inst-1", "logs", "build.log"))
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "INFO building instance spec nics=2")
	assert.Contains(t, string(lines[1]), "added disk disk=boot")
	assert.NotContains(t, string(data), InstanceIDKey)
	assert.NotContains(t, string(data), "unrelated")

	assert.Contains(t, stdout.String(), "unrelated")
	assert.Contains(t, stdout.String(), "instance_id=inst-1")
}

func TestInstanceLogHandler_SkipsUnknownInstance(t *testing.T) {
	root := t.TempDir()

	log := New(Config{Output: &bytes.Buffer{}, InstanceLogPath: buildLogPath(root)})
	log.Info("building instance spec", InstanceIDKey, "missing")

	_, err := os.Stat(filepath.Join(root, "missing"))
	assert.True(t, os.IsNotExist(err))
}

func TestNew_Telemetry(t *testing.T) {
	var stdout, telemetry bytes.Buffer
	log := New(Config{
		Level:     slog.LevelWarn,
		JSON:      true,
		Output:    &stdout,
		Telemetry: slog.NewTextHandler(&telemetry, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})

	log.Debug("debug only")
	log.With("component", "specbuilder").Warn("warned")

	assert.NotContains(t, stdout.String(), "debug only")
	assert.Contains(t, stdout.String(), `"msg":"warned"`)
	assert.Contains(t, telemetry.String(), "debug only")
	assert.Contains(t, telemetry.String(), "component=specbuilder")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: " warn ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLevel(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	log := New(Config{Output: &bytes.Buffer{}})
	ctx := AddToContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
}
