package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		want  int
	}{
		{"debug shows everything", DEBUG, 4},
		{"info hides debug", INFO, 3},
		{"warn hides info", WARN, 2},
		{"error only", ERROR, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: tt.level, Format: JSONFormat, Output: &buf})

			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			l.Error("e", nil)

			got := 0
			if s := strings.TrimSpace(buf.String()); s != "" {
				got = len(strings.Split(s, "\n"))
			}
			if got != tt.want {
				t.Errorf("Expected %d lines, got %d", tt.want, got)
			}
		})
	}
}

func TestJSONEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: INFO, Format: JSONFormat, Output: &buf, Component: "lifecycle"})

	l.Error("render failed", errors.New("boom"), Fields{"chart": "salesTrendChart"})

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected valid JSON, got error: %v", err)
	}
	if entry.Level != "ERROR" {
		t.Errorf("Expected level ERROR, got %s", entry.Level)
	}
	if entry.Component != "lifecycle" {
		t.Errorf("Expected component lifecycle, got %s", entry.Component)
	}
	if entry.Error != "boom" {
		t.Errorf("Expected error boom, got %s", entry.Error)
	}
	if entry.Fields["chart"] != "salesTrendChart" {
		t.Errorf("Expected chart field, got %v", entry.Fields)
	}
	if !strings.Contains(entry.Caller, "logger_test.go") {
		t.Errorf("Expected caller to point at the test file, got %s", entry.Caller)
	}
}

func TestTextEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: DEBUG, Format: TextFormat, Output: &buf, Component: "guard"})

	l.Info("dropped trigger", Fields{"b": 2, "a": 1})

	out := buf.String()
	if !strings.Contains(out, "[guard] dropped trigger") {
		t.Errorf("Expected component and message in %q", out)
	}
	if !strings.Contains(out, "a=1 b=2") {
		t.Errorf("Expected sorted fields in %q", out)
	}
}

func TestWithBindsFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: INFO, Format: JSONFormat, Output: &buf})
	child := base.With(Fields{"session": "abc"}).WithComponent("dashboard")

	child.Info("loaded", Fields{"charts": 9})

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected valid JSON, got error: %v", err)
	}
	if entry.Fields["session"] != "abc" {
		t.Errorf("Expected bound session field, got %v", entry.Fields)
	}
	if entry.Fields["charts"] != float64(9) {
		t.Errorf("Expected charts=9, got %v", entry.Fields["charts"])
	}
	if entry.Component != "dashboard" {
		t.Errorf("Expected component dashboard, got %s", entry.Component)
	}
}

func TestFatalExits(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: INFO, Output: &buf})
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatal("cannot start", errors.New("port in use"))

	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"warning", WARN, false},
		{"Error", ERROR, false},
		{"fatal", FATAL, false},
		{"verbose", INFO, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("text"); err != nil || f != TextFormat {
		t.Errorf("Expected text format, got %v (%v)", f, err)
	}
	if f, err := ParseFormat("JSON"); err != nil || f != JSONFormat {
		t.Errorf("Expected json format, got %v (%v)", f, err)
	}
	if _, err := ParseFormat("auto"); err != nil {
		t.Errorf("Expected auto to be accepted, got %v", err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("Expected error for xml format")
	}
}

func TestConfigure(t *testing.T) {
	prev := Get()
	defer Set(prev)

	var buf bytes.Buffer
	Set(New(Config{Level: INFO, Format: JSONFormat, Output: &buf}))

	if err := Configure("warn", "text"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	Info("hidden")
	Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "visible") {
		t.Errorf("Expected text warn line, got %q", out)
	}
	if err := Configure("loud", "text"); err == nil {
		t.Error("Expected error for unknown level")
	}
}
