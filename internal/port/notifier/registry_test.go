package notifier

import (
	"context"
	"slices"
	"testing"
)

type stubSender struct{ name string }

func (s stubSender) Name() string                         { return s.name }
func (s stubSender) Send(context.Context, Message) error { return nil }

func TestRegisterAndNew(t *testing.T) {
	Register("stub-test", func(cfg map[string]string) (Sender, error) {
		return stubSender{name: cfg["name"]}, nil
	})

	s, err := New("stub-test", map[string]string{"name": "configured"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Name() != "configured" {
		t.Errorf("expected configured, got %s", s.Name())
	}
	if !slices.Contains(Available(), "stub-test") {
		t.Errorf("expected stub-test in %v", Available())
	}
}

func TestNewUnknown(t *testing.T) {
	if _, err := New("does-not-exist", nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup-test", func(map[string]string) (Sender, error) { return stubSender{}, nil })
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	Register("dup-test", func(map[string]string) (Sender, error) { return stubSender{}, nil })
}
