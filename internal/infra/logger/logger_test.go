package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		environment string
		wantLevel   logrus.Level
		wantJSON    bool
	}{
		{"production json", "warn", "production", logrus.WarnLevel, true},
		{"staging json", "DEBUG", "Staging", logrus.DebugLevel, true},
		{"development text", "trace", "development", logrus.TraceLevel, false},
		{"invalid level falls back to info", "loud", "development", logrus.InfoLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := logrus.New()
			l.SetOutput(io.Discard)

			Configure(l, tt.level, tt.environment)

			assert.Equal(t, tt.wantLevel, l.GetLevel())
			_, isJSON := l.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, logrus.ErrorLevel, RequestLevel("/api/weather", 500))
	assert.Equal(t, logrus.ErrorLevel, RequestLevel("/health", 503))
	assert.Equal(t, logrus.TraceLevel, RequestLevel("/health", 200))
	assert.Equal(t, logrus.TraceLevel, RequestLevel("/metrics", 200))
	assert.Equal(t, logrus.InfoLevel, RequestLevel("/api/kiosk/viewports/nope", 404))
	assert.Equal(t, logrus.DebugLevel, RequestLevel("/api/substitution/plans", 200))
}

func TestStaticFieldsHook(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.AddHook(NewStaticFieldsHook(logrus.Fields{"version": "1.2.3"}))

	l.WithField("component", "scheduler").Info("first")
	l.WithField("version", "override").Info("second")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "1.2.3", first["version"])
	assert.Equal(t, "scheduler", first["component"])
	assert.Equal(t, "override", second["version"])
}
