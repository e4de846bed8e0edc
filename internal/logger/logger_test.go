package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sonntkms/taskapproval/internal/config"
)

func TestNew(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc"}
	l, closer := New(cfg)
	defer closer.Close()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewAsync(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc", Async: true}
	l, closer := New(cfg)
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	closer.Close()
}

func TestJSONOutputCarriesCorrelationIDs(t *testing.T) {
	var buf bytes.Buffer
	l, closer := newWithWriter(config.Logging{Level: "info", Service: "taskapproval"}, &buf, false)

	ctx := WithInstanceID(WithRequestID(context.Background(), "req-1"), "inst-1")
	l.InfoContext(ctx, "approval started")
	closer.Close()

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if rec["service"] != "taskapproval" {
		t.Errorf("expected service attr, got %v", rec["service"])
	}
	if rec["request_id"] != "req-1" {
		t.Errorf("expected request_id req-1, got %v", rec["request_id"])
	}
	if rec["instance_id"] != "inst-1" {
		t.Errorf("expected instance_id inst-1, got %v", rec["instance_id"])
	}
}

func TestTTYUsesTextHandler(t *testing.T) {
	var buf bytes.Buffer
	l, closer := newWithWriter(config.Logging{Level: "info", Service: "svc"}, &buf, true)
	l.Info("hello")
	closer.Close()

	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected text output on a terminal, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("expected msg=hello in %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, closer := newWithWriter(config.Logging{Level: "warn"}, &buf, false)
	l.Info("dropped")
	closer.Close()

	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input).String()
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()

	if got := RequestID(ctx); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}
	if got := InstanceID(ctx); got != "" {
		t.Errorf("expected empty instance ID, got %q", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithInstanceID(ctx, "inst-9")
	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}
	if got := InstanceID(ctx); got != "inst-9" {
		t.Errorf("expected inst-9, got %q", got)
	}
}
