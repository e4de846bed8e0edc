package email

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sonntkms/taskapproval/internal/port/notifier"
)

func init() {
	notifier.Register("mock", func(map[string]string) (notifier.Sender, error) {
		return NewMock(), nil
	})
}

// MockSender logs and keeps every message instead of delivering it.
type MockSender struct {
	mu   sync.Mutex
	sent []notifier.Message
}

// NewMock creates an empty mock sender.
func NewMock() *MockSender { return &MockSender{} }

// Name returns the provider identifier.
func (m *MockSender) Name() string { return "mock" }

// Send records msg.
func (m *MockSender) Send(ctx context.Context, msg notifier.Message) error {
	slog.InfoContext(ctx, "mock email sent", "to", msg.To, "subject", msg.Subject)
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockSender) Sent() []notifier.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notifier.Message, len(m.sent))
	copy(out, m.sent)
	return out
}
