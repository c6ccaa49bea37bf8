package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "info at warn level",
			level:   log.WarnLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.level)
			tt.logFunc(logger)

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("wrote output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != log.DebugLevel {
		t.Error("expected debug level")
	}
	if ParseLevel("nonsense") != log.InfoLevel {
		t.Error("expected fallback to info level")
	}
}

func TestOrDefault(t *testing.T) {
	if OrDefault(nil) != log.Default() {
		t.Error("expected default logger for nil")
	}
	l := New(&bytes.Buffer{}, log.InfoLevel)
	if OrDefault(l) != l {
		t.Error("expected the given logger back")
	}
}
