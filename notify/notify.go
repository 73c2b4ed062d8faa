// Package notify delivers workflow notifications. The engine's nodes
// only depend on the Notifier interface; delivery failures surface as
// errors for the caller to record, never as panics.
package notify

import (
	"context"
	"sync"
	"time"
)

// Message is one outbound notification.
type Message struct {
	To      string         `json:"to"`
	Subject string         `json:"subject"`
	Body    string         `json:"body"`
	Kind    string         `json:"kind,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Notifier sends notifications.
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, msg *Message) error

func (f Func) Send(ctx context.Context, msg *Message) error { return f(ctx, msg) }

// Recorder is a Notifier that keeps sent messages in memory, for
// development and tests.
type Recorder struct {
	mu   sync.RWMutex
	sent []*Message
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(ctx context.Context, msg *Message) error {
	stored := *msg
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, &stored)
	return nil
}

// Sent returns all recorded messages in send order.
func (r *Recorder) Sent() []*Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Message, len(r.sent))
	copy(out, r.sent)
	return out
}

// SentAt is a convenience for asserting on the nth message.
func (r *Recorder) SentAt(i int) (*Message, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.sent) {
		return nil, false
	}
	return r.sent[i], true
}

// retryableStatus reports whether a webhook delivery should be retried
// for the given HTTP status.
func retryableStatus(status int) bool {
	return status == 429 || status >= 500
}

// backoffDelay is the delay before attempt n (1-based), doubling each
// time from base.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}
