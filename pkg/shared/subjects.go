package shared

// NATS Subject patterns
const (
	SubjectPrefix = "neo"

	// Event subjects
	SubjectEvents       = "neo.events"
	SubjectEventsAll    = "neo.events.>"
	SubjectEventLoaded  = "neo.events.loaded"
	SubjectEventQueried = "neo.events.query"

	// Request/reply subjects served by the query responder
	SubjectQueryAll        = "neo.query.>"
	SubjectQueryApproaches = "neo.query.approaches"
	SubjectQueryLookup     = "neo.query.lookup"
)

// Stream names
const (
	StreamEvents = "NEO_EVENTS"
)

// Consumer names
const (
	ConsumerEventAuditor = "event-auditor"
)
