package services

import (
	"fmt"
	"slices"

	"neo-overwatch/pkg/filters"
	"neo-overwatch/pkg/logger"
	"neo-overwatch/pkg/metrics"
	"neo-overwatch/pkg/neodb"
	"neo-overwatch/pkg/ontology"
	"neo-overwatch/pkg/shared"
)

type ApproachService struct {
	db        *neodb.Database
	publisher EventPublisher
	log       *logger.Logger
}

func NewApproachService(db *neodb.Database, publisher EventPublisher, log *logger.Logger) *ApproachService {
	return &ApproachService{
		db:        db,
		publisher: publisher,
		log:       logger.OrNop(log),
	}
}

// Query runs the request's filters against the database and returns the
// matches in load order, truncated to the request limit.
func (s *ApproachService) Query(req *shared.QueryRequest, source string) ([]*ontology.CloseApproach, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	opts, err := req.Filters.Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	results := slices.Collect(neodb.Limit(s.db.Query(filters.Create(opts)...), req.Limit))
	metrics.ObserveQuery(source, len(results))

	go s.publishQueryEvent(req, source, len(results))

	return results, nil
}

func (s *ApproachService) publishQueryEvent(req *shared.QueryRequest, source string, count int) {
	if s.publisher == nil {
		return
	}
	data := map[string]interface{}{
		"source":  source,
		"filters": req.Filters,
		"limit":   req.Limit,
		"count":   count,
	}
	if err := s.publisher.PublishEvent(shared.EventTypeQueried, shared.SubjectEventQueried, data); err != nil {
		s.log.Warn("failed to publish query event", "error", err)
	}
}
