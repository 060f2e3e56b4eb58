/*
Package notify sends outbound messages to users.

Delivery is fire-and-forget: no confirmation, no retry. Callers log a
failure and move on — a notification must never fail the state mutation
that triggered it.
*/
package notify

import (
	"context"
	"log"
)

// Message is one outbound notification.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier delivers a message to a target address.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the process log. Used in development and
// tests, and as the fallback when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, msg Message) error {
	log.Printf("[Notify] to=%s subject=%q", msg.To, msg.Subject)
	return nil
}

// Recorder captures messages for test assertions.
type Recorder struct {
	Sent []Message
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.Sent = append(r.Sent, msg)
	return nil
}
