package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{" warn ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewBuildsBothEncoders(t *testing.T) {
	for _, pretty := range []bool{true, false} {
		log, err := New("debug", pretty)
		if err != nil {
			t.Fatalf("New(pretty=%v) error = %v", pretty, err)
		}
		log.With(String("component", "test")).Debug("hello", Int("n", 1))
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNop()
	log.Info("discarded", Bool("ok", true), Int64("id", 1))
	if err := log.Sync(); err != nil {
		t.Errorf("Sync() on nop logger = %v", err)
	}
}
