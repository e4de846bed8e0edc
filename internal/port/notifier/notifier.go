// Package notifier defines the email gateway port used by approval
// notifications.
package notifier

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a sender is not properly configured.
var ErrNotConfigured = errors.New("notifier: not configured")

// ErrInvalidRecipient marks a message that can never be delivered.
var ErrInvalidRecipient = errors.New("notifier: invalid recipient")

// Message is a rendered email ready for delivery.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body,omitempty"`
}

// Sender is the port interface for delivering email.
type Sender interface {
	// Name returns the unique identifier for this sender (e.g. "smtp", "mock").
	Name() string

	// Send delivers a message.
	Send(ctx context.Context, msg Message) error
}
