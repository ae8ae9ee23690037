package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"neo-overwatch/api/services"
	"neo-overwatch/pkg/logger"
	"neo-overwatch/pkg/neodb"
	embeddednats "neo-overwatch/pkg/services/embedded-nats"
)

type Manager struct {
	workers []Worker
	log     *logger.Logger
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewManager builds the event auditor and the query responder over the
// embedded server's connection.
func NewManager(natsClient *embeddednats.EmbeddedNATS, db *neodb.Database, log *logger.Logger) (*Manager, error) {
	nc := natsClient.Connection()
	if nc == nil {
		return nil, fmt.Errorf("NATS connection not initialized")
	}

	js := natsClient.JetStream()
	if js == nil {
		return nil, fmt.Errorf("JetStream not initialized")
	}

	log = logger.OrNop(log)
	ctx, cancel := context.WithCancel(context.Background())

	var publisher services.EventPublisher = natsClient
	return &Manager{
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		workers: []Worker{
			NewEventWorker(js, log),
			NewQueryResponder(nc, db, publisher, log),
		},
	}, nil
}

func (m *Manager) Start() error {
	for _, worker := range m.workers {
		m.wg.Add(1)
		go func(w Worker) {
			defer m.wg.Done()

			m.log.Debug("starting worker", "worker", w.Name())
			if err := w.Start(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.log.Error("worker failed", "worker", w.Name(), "error", err)
			}
			m.log.Debug("worker stopped", "worker", w.Name())
		}(worker)
	}

	m.log.Info("started workers", "count", len(m.workers))
	return nil
}

func (m *Manager) Stop() error {
	m.cancel()

	for _, worker := range m.workers {
		if err := worker.Stop(); err != nil {
			m.log.Warn("error stopping worker", "worker", worker.Name(), "error", err)
		}
	}

	m.wg.Wait()

	m.log.Info("all workers stopped")
	return nil
}
