package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs sends without delivering them. Used in development and tests.
type NoopSender struct {
	mu   sync.Mutex
	sent []SendRequest
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the email and remembers it.
// POST: Sent() includes req
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	names := make([]string, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		names = append(names, a.Filename)
	}
	slog.Info("noop_email_send", "to", req.To, "subject", req.Subject, "attachments", names)

	s.mu.Lock()
	s.sent = append(s.sent, req)
	s.mu.Unlock()
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}

// Sent returns a copy of every request seen so far.
func (s *NoopSender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SendRequest, len(s.sent))
	copy(out, s.sent)
	return out
}
