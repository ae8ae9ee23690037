package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"neo-overwatch/api/services"
	"neo-overwatch/pkg/logger"
	"neo-overwatch/pkg/neodb"
	"neo-overwatch/pkg/shared"
	"neo-overwatch/pkg/write"
)

// QueryResponder answers lookups and approach queries over NATS
// request/reply. Requests and replies are JSON; replies use the same
// shared.Response envelope as the HTTP API.
type QueryResponder struct {
	nc       *nats.Conn
	mu       sync.Mutex
	sub      *nats.Subscription
	neos     *services.NEOService
	approach *services.ApproachService
	log      *logger.Logger
}

func NewQueryResponder(nc *nats.Conn, db *neodb.Database, publisher services.EventPublisher, log *logger.Logger) *QueryResponder {
	log = logger.OrNop(log)
	return &QueryResponder{
		nc:       nc,
		neos:     services.NewNEOService(db, log),
		approach: services.NewApproachService(db, publisher, log),
		log:      log.With("worker", "QueryResponder"),
	}
}

func (w *QueryResponder) Name() string {
	return "QueryResponder"
}

// Start subscribes and blocks until ctx is done.
func (w *QueryResponder) Start(ctx context.Context) error {
	sub, err := w.nc.Subscribe(shared.SubjectQueryAll, w.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", shared.SubjectQueryAll, err)
	}
	w.mu.Lock()
	w.sub = sub
	w.mu.Unlock()
	w.log.Info("responding to queries", "subject", shared.SubjectQueryAll)

	<-ctx.Done()
	return ctx.Err()
}

func (w *QueryResponder) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sub != nil {
		return w.sub.Drain()
	}
	return nil
}

func (w *QueryResponder) handle(msg *nats.Msg) {
	var resp shared.Response
	switch msg.Subject {
	case shared.SubjectQueryApproaches:
		resp = w.queryApproaches(msg.Data)
	case shared.SubjectQueryLookup:
		resp = w.lookup(msg.Data)
	default:
		resp = errorResponse(shared.CodeNotFound, "unknown subject "+msg.Subject)
	}

	if msg.Reply == "" {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		w.log.Error("failed to encode reply", "error", err)
		return
	}
	if err := msg.Respond(payload); err != nil {
		w.log.Warn("failed to send reply", "subject", msg.Subject, "error", err)
	}
}

func (w *QueryResponder) queryApproaches(data []byte) shared.Response {
	var req shared.QueryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(shared.CodeInvalidRequest, err.Error())
	}
	req.ApplyDefaults()
	results, err := w.approach.Query(&req, shared.SourceNATS)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRequest) {
			return errorResponse(shared.CodeInvalidRequest, err.Error())
		}
		return errorResponse(shared.CodeInternal, err.Error())
	}

	records := make([]write.ApproachRecord, 0, len(results))
	for _, ca := range results {
		records = append(records, write.NewApproachRecord(ca))
	}
	return shared.Response{Success: true, Data: shared.QueryResult{Count: len(records), Approaches: records}}
}

func (w *QueryResponder) lookup(data []byte) shared.Response {
	var req shared.LookupRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(shared.CodeInvalidRequest, err.Error())
	}
	neo, err := w.neos.Lookup(&req)
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return errorResponse(shared.CodeMissingParams, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return errorResponse(shared.CodeNotFound, err.Error())
	case err != nil:
		return errorResponse(shared.CodeInternal, err.Error())
	}
	return shared.Response{Success: true, Data: services.NewNEOView(neo, false)}
}

func errorResponse(code, message string) shared.Response {
	return shared.Response{Success: false, Error: &shared.Error{Code: code, Message: message}}
}
