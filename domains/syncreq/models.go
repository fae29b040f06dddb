package syncreq

// EventName is the name of the canonical sync event.
const EventName = "capture/repository.sync.graphql"

const (
	DefaultDays     = 7
	DefaultMaxItems = 50
	// MaxItemsCeiling caps maxItems regardless of what a trigger asks for.
	MaxItemsCeiling = 50
)

// Reason is the trigger category used to pick a throttle window. Unknown
// reasons are carried through as-is and fall back to the default window.
type Reason string

const (
	ReasonManual     Reason = "manual"
	ReasonAutoFix    Reason = "auto-fix"
	ReasonScheduled  Reason = "scheduled"
	ReasonPRActivity Reason = "pr-activity"
	ReasonAutomatic  Reason = "automatic"
)

func (r Reason) String() string {
	return string(r)
}

// Priority orders queued work.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) String() string {
	return string(p)
}

// Source identifies where a trigger payload came from.
type Source string

const (
	// SourceCanonical is the canonical sync event data.
	SourceCanonical Source = "canonical"
	// SourceQueueManager payloads use timeRange and triggerSource.
	SourceQueueManager Source = "queue-manager"
	SourceWebhook      Source = "webhook"
	SourceManual       Source = "manual"
	SourceScheduled    Source = "scheduled"
)

// ParseSource maps a source name to a Source, defaulting to canonical.
func ParseSource(s string) Source {
	switch Source(s) {
	case SourceQueueManager, SourceWebhook, SourceManual, SourceScheduled:
		return Source(s)
	}
	return SourceCanonical
}

// Request is the canonical work item. Its JSON form is the canonical event data.
type Request struct {
	RepositoryID   string   `json:"repositoryId" validate:"required"`
	RepositoryName string   `json:"repositoryName,omitempty"`
	Days           int      `json:"days" validate:"min=1,max=3650"`
	Priority       Priority `json:"priority" validate:"oneof=low medium high"`
	Reason         Reason   `json:"reason" validate:"required"`
	JobID          string   `json:"jobId" validate:"required"`
	MaxItems       int      `json:"maxItems" validate:"min=1,max=50"`
}

// rawPayload is the union of every trigger shape we accept.
type rawPayload struct {
	RepositoryID   string   `json:"repositoryId"`
	RepositoryName string   `json:"repositoryName"`
	Days           *float64 `json:"days"`
	Priority       string   `json:"priority"`
	Reason         string   `json:"reason"`
	JobID          string   `json:"jobId"`
	MaxItems       *float64 `json:"maxItems"`

	// queue-manager fields
	TimeRange     any    `json:"timeRange"`
	TriggerSource string `json:"triggerSource"`
}
