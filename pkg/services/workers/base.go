package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"neo-overwatch/pkg/logger"
)

type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}

// BaseWorker pulls batches from a durable JetStream consumer.
type BaseWorker struct {
	name     string
	js       nats.JetStreamContext
	mu       sync.Mutex
	sub      *nats.Subscription
	consumer string
	stream   string
	subject  string
	log      *logger.Logger
}

func NewBaseWorker(name string, js nats.JetStreamContext, stream, consumer, subject string, log *logger.Logger) *BaseWorker {
	return &BaseWorker{
		name:     name,
		js:       js,
		consumer: consumer,
		stream:   stream,
		subject:  subject,
		log:      logger.OrNop(log).With("worker", name),
	}
}

func (w *BaseWorker) Name() string {
	return w.name
}

func (w *BaseWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sub != nil {
		return w.sub.Drain()
	}
	return nil
}

// processMessages fetches until ctx is done. A message is acked when handler
// succeeds and nak'ed for redelivery otherwise.
func (w *BaseWorker) processMessages(ctx context.Context, handler func(*nats.Msg) error) error {
	sub, err := w.js.PullSubscribe(w.subject, w.consumer,
		nats.ManualAck(),
		nats.Bind(w.stream, w.consumer),
	)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.sub = sub
	w.mu.Unlock()

	w.log.Info("starting worker", "stream", w.stream, "consumer", w.consumer)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopping")
			return ctx.Err()
		default:
		}

		msgs, err := sub.Fetch(10, nats.MaxWait(2*time.Second))
		if err != nil && !errors.Is(err, nats.ErrTimeout) {
			if errors.Is(err, nats.ErrConnectionClosed) || errors.Is(err, nats.ErrBadSubscription) {
				return ctx.Err()
			}
			w.log.Warn("error fetching messages", "error", err)
			continue
		}

		for _, msg := range msgs {
			if err := handler(msg); err != nil {
				w.log.Warn("handler failed", "subject", msg.Subject, "error", err)
				_ = msg.Nak()
				continue
			}
			if err := msg.Ack(); err != nil {
				w.log.Warn("error acknowledging message", "error", err)
			}
		}
	}
}
