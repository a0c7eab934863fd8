package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-rbac/internal/application"
)

type fakeChannel struct {
	key  string
	msgs []amqp.Publishing
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.key = key
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestPublishEncodesEvent(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{ch: ch, Queue: "rbac.events", AppID: "rbac"}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := p.Publish(context.Background(), application.Event{
		Type:       "user.created",
		SubjectID:  "42",
		Attributes: map[string]any{"email": "carla@farmacia.com"},
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Equal(t, "rbac.events", ch.key)
	require.Len(t, ch.msgs, 1)

	msg := ch.msgs[0]
	require.Equal(t, "user.created", msg.Type)
	require.Equal(t, amqp.Persistent, msg.DeliveryMode)
	require.Equal(t, at, msg.Timestamp)

	var got application.Event
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	require.Equal(t, "42", got.SubjectID)
	require.Equal(t, "carla@farmacia.com", got.Attributes["email"])
}
