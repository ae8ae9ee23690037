package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"neo-overwatch/pkg/logger"
	"neo-overwatch/pkg/metrics"
	"neo-overwatch/pkg/shared"
)

// EventWorker audits the event stream: every load and query event is logged
// and counted.
type EventWorker struct {
	*BaseWorker
	onEvent func(shared.Event)
}

func NewEventWorker(js nats.JetStreamContext, log *logger.Logger) *EventWorker {
	return &EventWorker{
		BaseWorker: NewBaseWorker(
			"EventWorker",
			js,
			shared.StreamEvents,
			shared.ConsumerEventAuditor,
			shared.SubjectEventsAll,
			log,
		),
	}
}

func (w *EventWorker) Start(ctx context.Context) error {
	return w.processMessages(ctx, func(msg *nats.Msg) error {
		var event shared.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			// Malformed events are dropped rather than redelivered.
			w.log.Warn("discarding malformed event", "subject", msg.Subject, "error", err)
			return nil
		}
		if event.Type == "" {
			return fmt.Errorf("event %s has no type", event.ID)
		}

		metrics.EventsConsumed.WithLabelValues(event.Type).Inc()
		w.log.Info("event", "id", event.ID, "type", event.Type, "subject", msg.Subject, "data", event.Data)
		if w.onEvent != nil {
			w.onEvent(event)
		}
		return nil
	})
}
