package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oksasatya/go-ddd-rbac/internal/application"
	"github.com/oksasatya/go-ddd-rbac/pkg/mailer"
)

// outcome tells the consume loop what to do with a delivery.
type outcome int

const (
	ack outcome = iota
	drop
	retry
)

type notifier struct {
	appName string
	sender  mailer.Sender
	timeout time.Duration
}

// handle decodes one audit event and sends the email it triggers, if any.
// Malformed messages are dropped; send failures are requeued.
func (n *notifier) handle(ctx context.Context, body []byte) (outcome, error) {
	var evt application.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return drop, fmt.Errorf("decode event: %w", err)
	}
	job, ok := mailer.JobForEvent(n.appName, evt.Type, evt.Attributes, evt.OccurredAt)
	if !ok {
		return ack, nil
	}
	subject, text, html, err := job.Render()
	if err != nil {
		return drop, fmt.Errorf("render %s: %w", job.Template, err)
	}
	timeout := n.timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := n.sender.Send(c, job.To, subject, text, html); err != nil {
		return retry, fmt.Errorf("send %s to %s: %w", job.Template, job.To, err)
	}
	return ack, nil
}
