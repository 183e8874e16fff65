// Package mailx hands rendered emails to a transactional email provider.
package mailx

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

// ErrInvalidMessage is returned for messages missing a recipient or subject.
var ErrInvalidMessage = errors.New("mailx: message requires from, to and subject")

// Message is a single outbound email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

func (m Message) validate() error {
	if m.From == "" || m.To == "" || m.Subject == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// NoopSender accepts every message without sending it. It is used when no
// provider API key is configured so local setups keep working.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}

	id := "noop-" + idx.New().String()
	slogx.FromContext(ctx).Info("email provider not configured, skipping send",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("message_id", id),
	)
	return id, nil
}
