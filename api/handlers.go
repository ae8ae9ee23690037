package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"neo-overwatch/api/middleware"
	"neo-overwatch/api/services"
	"neo-overwatch/pkg/filters"
	"neo-overwatch/pkg/logger"
	"neo-overwatch/pkg/neodb"
	"neo-overwatch/pkg/shared"
	"neo-overwatch/pkg/write"
)

// HealthChecker reports the health of a dependency.
type HealthChecker interface {
	HealthCheck() error
}

type Handlers struct {
	neoService      *services.NEOService
	approachService *services.ApproachService
	log             *logger.Logger
	started         time.Time
}

// NewHandlers wires the services over db. publisher may be nil.
func NewHandlers(db *neodb.Database, publisher services.EventPublisher, log *logger.Logger) *Handlers {
	log = logger.OrNop(log)
	return &Handlers{
		neoService:      services.NewNEOService(db, log),
		approachService: services.NewApproachService(db, publisher, log),
		log:             log,
		started:         time.Now(),
	}
}

// GetNEO looks an object up by designation or name.
func (h *Handlers) GetNEO(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &shared.LookupRequest{
		Designation: q.Get("designation"),
		Name:        q.Get("name"),
	}
	withApproaches, _ := strconv.ParseBool(q.Get("approaches"))

	neo, err := h.neoService.Lookup(req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRequest):
			sendError(w, http.StatusBadRequest, shared.CodeMissingParams, "designation or name is required")
		case errors.Is(err, services.ErrNotFound):
			sendError(w, http.StatusNotFound, shared.CodeNotFound, err.Error())
		default:
			sendError(w, http.StatusInternalServerError, shared.CodeInternal, err.Error())
		}
		return
	}

	sendSuccess(w, http.StatusOK, services.NewNEOView(neo, withApproaches))
}

// QueryApproaches filters close approaches. format=csv streams CSV instead
// of the JSON envelope.
func (h *Handlers) QueryApproaches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &shared.QueryRequest{
		Filters: filters.Params{
			Date:        q.Get("date"),
			StartDate:   q.Get("start_date"),
			EndDate:     q.Get("end_date"),
			DistanceMin: q.Get("distance_min"),
			DistanceMax: q.Get("distance_max"),
			VelocityMin: q.Get("velocity_min"),
			VelocityMax: q.Get("velocity_max"),
			DiameterMin: q.Get("diameter_min"),
			DiameterMax: q.Get("diameter_max"),
			Hazardous:   q.Get("hazardous"),
			Designation: q.Get("designation"),
			Name:        q.Get("name"),
		},
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			sendError(w, http.StatusBadRequest, shared.CodeInvalidRequest, "limit must be an integer")
			return
		}
		req.Limit = limit
	}
	req.ApplyDefaults()

	format := q.Get("format")
	if format != "" && format != "json" && format != "csv" {
		sendError(w, http.StatusBadRequest, shared.CodeInvalidRequest, "format must be json or csv")
		return
	}

	results, err := h.approachService.Query(req, shared.SourceHTTP)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRequest) {
			sendError(w, http.StatusBadRequest, shared.CodeInvalidRequest, err.Error())
		} else {
			sendError(w, http.StatusInternalServerError, shared.CodeInternal, err.Error())
		}
		return
	}

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		if _, err := write.WriteCSV(w, slices.Values(results)); err != nil {
			h.log.Warn("failed to stream csv", "error", err)
		}
		return
	}

	records := make([]write.ApproachRecord, 0, len(results))
	for _, ca := range results {
		records = append(records, write.NewApproachRecord(ca))
	}
	sendSuccess(w, http.StatusOK, shared.QueryResult{Count: len(records), Approaches: records})
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, http.StatusOK, h.neoService.Stats())
}

// Health check
func (h *Handlers) HealthCheck(nats HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := h.neoService.Stats()
		health := shared.HealthStatus{
			Status:    "healthy",
			Service:   shared.ServiceName,
			Uptime:    time.Since(h.started),
			Timestamp: time.Now(),
			Details: map[string]string{
				"neos":       strconv.Itoa(stats.NEOs),
				"approaches": strconv.Itoa(stats.Approaches),
				"orphans":    strconv.Itoa(stats.Orphans),
			},
		}

		if nats == nil {
			health.Details["nats"] = "disabled"
		} else if err := nats.HealthCheck(); err != nil {
			health.Status = "unhealthy"
			health.Details["nats"] = "unhealthy: " + err.Error()
		} else {
			health.Details["nats"] = "healthy"
		}

		statusCode := http.StatusOK
		if health.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}

		sendSuccess(w, statusCode, health)
	}
}

// Helper functions
func sendSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := shared.Response{
		Success: true,
		Data:    data,
	}

	json.NewEncoder(w).Encode(response)
}

func sendError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := shared.Response{
		Success: false,
		Error: &shared.Error{
			Code:    code,
			Message: message,
		},
	}

	json.NewEncoder(w).Encode(response)
}

func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			sendError(w, http.StatusMethodNotAllowed, shared.CodeNotAllowed, "Method not allowed")
			return
		}
		next(w, r)
	}
}

// RegisterRoutes sets up all API routes. nats may be nil when messaging is
// disabled.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux, token string, nats HealthChecker) {
	auth := middleware.BearerAuth(token)

	// No auth required
	mux.HandleFunc("/health", h.HealthCheck(nats))
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/neos", getOnly(auth(h.GetNEO)))
	mux.HandleFunc("/api/v1/approaches", getOnly(auth(h.QueryApproaches)))
	mux.HandleFunc("/api/v1/stats", getOnly(auth(h.GetStats)))
}
