package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/sonntkms/taskapproval/internal/port/notifier"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	raw  string
}

func newCapturingSMTP(t *testing.T, cfg SMTPConfig) (*SMTPSender, *capturedMail) {
	t.Helper()
	s, err := NewSMTP(cfg)
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}
	got := &capturedMail{}
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		got.addr, got.from, got.to, got.raw = addr, from, to, string(msg)
		return nil
	}
	return s, got
}

func TestSMTPSendHTMLOnly(t *testing.T) {
	s, got := newCapturingSMTP(t, SMTPConfig{Host: "mail.local", Port: 2525, From: "approvals@example.com"})

	err := s.Send(context.Background(), notifier.Message{
		To:       "user@example.com",
		Subject:  "Approval Process Started for Deploy",
		HTMLBody: "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.addr != "mail.local:2525" {
		t.Errorf("unexpected addr %s", got.addr)
	}
	if len(got.to) != 1 || got.to[0] != "user@example.com" {
		t.Errorf("unexpected recipients %v", got.to)
	}
	if !strings.Contains(got.raw, "Content-Type: text/html; charset=UTF-8") {
		t.Errorf("expected html content type in %q", got.raw)
	}
	if !strings.HasSuffix(got.raw, "<p>hi</p>") {
		t.Errorf("expected body at end of message, got %q", got.raw)
	}
}

func TestSMTPSendMultipart(t *testing.T) {
	s, got := newCapturingSMTP(t, SMTPConfig{Host: "mail.local", Port: 25, From: "a@b.c"})

	err := s.Send(context.Background(), notifier.Message{
		To: "user@example.com", Subject: "s", HTMLBody: "<b>x</b>", TextBody: "x",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(got.raw, "multipart/alternative") {
		t.Errorf("expected multipart message, got %q", got.raw)
	}
	if !strings.Contains(got.raw, "text/plain") || !strings.Contains(got.raw, "<b>x</b>") {
		t.Errorf("expected both parts, got %q", got.raw)
	}
}

func TestSMTPRejectsInvalidRecipient(t *testing.T) {
	s, _ := newCapturingSMTP(t, SMTPConfig{Host: "h", Port: 25, From: "a@b.c"})
	err := s.Send(context.Background(), notifier.Message{To: "not an address"})
	if !errors.Is(err, notifier.ErrInvalidRecipient) {
		t.Fatalf("expected ErrInvalidRecipient, got %v", err)
	}
}

func TestSMTPPropagatesRelayError(t *testing.T) {
	s, _ := newCapturingSMTP(t, SMTPConfig{Host: "h", Port: 25, From: "a@b.c"})
	relayErr := errors.New("451 try again")
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return relayErr }

	err := s.Send(context.Background(), notifier.Message{To: "u@example.com"})
	if !errors.Is(err, relayErr) {
		t.Fatalf("expected relay error, got %v", err)
	}
}

func TestNewSMTPRequiresHostAndFrom(t *testing.T) {
	if _, err := NewSMTP(SMTPConfig{Port: 25}); !errors.Is(err, notifier.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRegistryVariants(t *testing.T) {
	m, err := notifier.New("mock", nil)
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if m.Name() != "mock" {
		t.Errorf("expected mock, got %s", m.Name())
	}

	s, err := notifier.New("smtp", map[string]string{"host": "h", "port": "25", "from": "a@b.c"})
	if err != nil {
		t.Fatalf("smtp: %v", err)
	}
	if s.Name() != "smtp" {
		t.Errorf("expected smtp, got %s", s.Name())
	}

	if _, err := notifier.New("smtp", map[string]string{"host": "h", "port": "x", "from": "a@b.c"}); err == nil {
		t.Error("expected error for invalid port")
	}
}

func TestMockRecordsMessages(t *testing.T) {
	m := NewMock()
	_ = m.Send(context.Background(), notifier.Message{To: "a@b.c", Subject: "one"})
	_ = m.Send(context.Background(), notifier.Message{To: "a@b.c", Subject: "two"})

	sent := m.Sent()
	if len(sent) != 2 || sent[1].Subject != "two" {
		t.Fatalf("unexpected recorded messages %+v", sent)
	}
}
