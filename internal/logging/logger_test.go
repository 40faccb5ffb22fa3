package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func resetState() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()

	// Initialize with global info level, overrides for two modules
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"indicator": "debug",
			"api":       "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"indicator", true, true, true},
		{"api", false, false, true},
		{"other", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()

			gotDebug := handler.Enabled(context.Background(), slog.LevelDebug)
			gotInfo := handler.Enabled(context.Background(), slog.LevelInfo)
			gotWarn := handler.Enabled(context.Background(), slog.LevelWarn)

			if gotDebug != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, gotDebug, tt.wantDebug)
			}
			if gotInfo != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, gotInfo, tt.wantInfo)
			}
			if gotWarn != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, gotWarn, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState()

	// Pre-Initialize loggers default to info level
	handler := GetLogger("early").Handler()
	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Pre-initialize logger should not be debug-enabled")
	}
	if !handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Pre-initialize logger should be info-enabled")
	}

	// Initialize retroactively raises the module to debug
	Initialize(Config{
		Level:   "info",
		Format:  "text",
		Modules: map[string]string{"early": "debug"},
	})

	handler = GetLogger("early").Handler()
	if !handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Initialize should apply the module override to existing loggers")
	}
}

func TestMultiHandlerLevelFanout(t *testing.T) {
	var infoBuf, warnBuf bytes.Buffer
	logger := slog.New(newMultiHandler([]slog.Handler{
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}))

	logger.Info("scheduler started")
	logger.Warn("battery low")

	if !strings.Contains(infoBuf.String(), "scheduler started") {
		t.Error("Info destination missing info record")
	}
	if strings.Contains(warnBuf.String(), "scheduler started") {
		t.Error("Warn destination received a record below its level")
	}
	for name, buf := range map[string]*bytes.Buffer{"info": &infoBuf, "warn": &warnBuf} {
		if !strings.Contains(buf.String(), "battery low") {
			t.Errorf("%s destination missing warn record", name)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  *slog.Level
	}{
		{"debug", levelPtr(slog.LevelDebug)},
		{"INFO", levelPtr(slog.LevelInfo)},
		{"warning", levelPtr(slog.LevelWarn)},
		{"error", levelPtr(slog.LevelError)},
		{"bogus", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := parseLevel(tt.input)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, *got, *tt.want)
		}
	}
}

func levelPtr(l slog.Level) *slog.Level {
	return &l
}
