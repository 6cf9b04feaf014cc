package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantError bool
	}{
		{"default", DefaultConfig(), false},
		{"debug", DebugConfig(), false},
		{"bad level", &Config{Level: "trace", Format: TextFormat, Output: StderrOutput}, true},
		{"bad format", &Config{Level: InfoLevel, Format: "xml", Output: StderrOutput}, true},
		{"file without path", &Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestConfigFromSettings(t *testing.T) {
	config := ConfigFromSettings("DEBUG", "json", "")
	if config.Level != DebugLevel {
		t.Errorf("expected debug level, got %s", config.Level)
	}
	if config.Format != JSONFormat {
		t.Errorf("expected json format, got %s", config.Format)
	}
	if config.Output != StderrOutput {
		t.Errorf("expected stderr output, got %s", config.Output)
	}

	config = ConfigFromSettings("", "", "logs/reconciler.log")
	if config.Output != FileOutput || config.File != "logs/reconciler.log" {
		t.Errorf("expected file output, got %s %q", config.Output, config.File)
	}
	if config.Level != InfoLevel {
		t.Errorf("expected default level, got %s", config.Level)
	}
}

func TestFieldsAccumulate(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, DebugLevel)

	log.WithComponent("extractor").WithField("sheet", "Jan").Info("header found")

	out := buf.String()
	for _, want := range []string{"component=extractor", "sheet=Jan", "header found"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output %q", want, out)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, WarnLevel)

	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn message should be written")
	}
}
