package shared

import (
	"time"

	"neo-overwatch/pkg/filters"
)

// API Response types
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeMissingParams  = "MISSING_PARAMS"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotAllowed     = "METHOD_NOT_ALLOWED"
)

// Remote query page sizes. MaxQueryLimit must match the lte bound on
// QueryRequest.Limit.
const (
	DefaultQueryLimit = 1000
	MaxQueryLimit     = 100000
)

// QueryRequest asks for close approaches matching the filters. A zero Limit
// means every match unless ApplyDefaults has run.
type QueryRequest struct {
	Filters filters.Params `json:"filters"`
	Limit   int            `json:"limit" validate:"gte=0,lte=100000"`
}

// ApplyDefaults sets the default page size when no limit was given. HTTP and
// NATS requests always go through it.
func (r *QueryRequest) ApplyDefaults() {
	if r.Limit == 0 {
		r.Limit = DefaultQueryLimit
	}
}

// LookupRequest asks for one NEO by designation or by name.
type LookupRequest struct {
	Designation string `json:"designation,omitempty" validate:"required_without=Name"`
	Name        string `json:"name,omitempty" validate:"required_without=Designation"`
}

// QueryResult is the payload returned for a QueryRequest.
type QueryResult struct {
	Count      int         `json:"count"`
	Approaches interface{} `json:"approaches"`
}

// Event types
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Subject   string                 `json:"subject"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
}

// Health check
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version,omitempty"`
	Uptime    time.Duration     `json:"uptime,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

// Constants
const (
	ServiceName = "neo-overwatch"

	EventTypeLoaded  = "loaded"
	EventTypeQueried = "queried"

	SourceHTTP = "http"
	SourceNATS = "nats"
	SourceCLI  = "cli"
)
