package application

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
)

// Event is an audit record emitted after a successful state change.
type Event struct {
	Type       string         `json:"type"`
	SubjectID  string         `json:"subject_id"`
	Attributes map[string]any `json:"attributes,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// EventPublisher delivers audit events. Delivery is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Metrics records use-case outcomes.
type Metrics interface {
	ObserveUseCase(name string, kind apperr.Kind, elapsed time.Duration)
}

// Hooks bundles the optional collaborators every service accepts.
// Any field may be left nil.
type Hooks struct {
	Logger  *logrus.Logger
	Events  EventPublisher
	Metrics Metrics
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (h Hooks) log() *logrus.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return discardLogger
}

func (h Hooks) publish(ctx context.Context, typ, subjectID string, attrs map[string]any) {
	if h.Events == nil {
		return
	}
	evt := Event{Type: typ, SubjectID: subjectID, Attributes: attrs, OccurredAt: time.Now().UTC()}
	if err := h.Events.Publish(ctx, evt); err != nil {
		h.log().WithError(err).WithField("event", typ).Warn("publish audit event failed")
	}
}

// observe is deferred by use cases with a pointer to their named error result.
func (h Hooks) observe(name string, start time.Time, err *error) {
	if h.Metrics == nil {
		return
	}
	kind := apperr.Kind("ok")
	if err != nil && *err != nil {
		kind = apperr.KindOf(*err)
	}
	h.Metrics.ObserveUseCase(name, kind, time.Since(start))
}
