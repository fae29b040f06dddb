// Package syncreq turns trigger payloads from every known source into the
// canonical sync Request.
package syncreq

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// sourceDefaults are the mapped values a source contributes when the payload
// leaves a field empty.
var sourceDefaults = map[Source]struct {
	reason   Reason
	priority Priority
}{
	SourceManual:    {ReasonManual, PriorityHigh},
	SourceScheduled: {ReasonScheduled, PriorityLow},
	SourceWebhook:   {ReasonPRActivity, PriorityMedium},
}

// triggerSources maps queue-manager triggerSource values to reasons.
var triggerSources = map[string]Reason{
	"manual":      ReasonManual,
	"user":        ReasonManual,
	"ui":          ReasonManual,
	"auto-fix":    ReasonAutoFix,
	"repair":      ReasonAutoFix,
	"cron":        ReasonScheduled,
	"schedule":    ReasonScheduled,
	"scheduled":   ReasonScheduled,
	"webhook":     ReasonPRActivity,
	"pr-activity": ReasonPRActivity,
	"automatic":   ReasonAutomatic,
}

// Normalize decodes a trigger payload from source and returns the canonical
// request. Precedence for every field is explicit value, then the
// source-mapped value, then the hard default. Any failure is a
// *ValidationError.
func Normalize(source Source, payload []byte) (Request, error) {
	if err := checkTypes(payload); err != nil {
		return Request{}, err
	}

	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Request{}, invalid(err, "malformed trigger payload: %v", err)
	}

	return normalize(source, raw)
}

// MustEncode renders a request as canonical event data.
func MustEncode(req Request) []byte {
	b, err := json.Marshal(req)
	if err != nil {
		panic(fmt.Sprintf("syncreq: encode request: %v", err))
	}
	return b
}

func normalize(source Source, raw rawPayload) (Request, error) {
	repositoryID := strings.TrimSpace(raw.RepositoryID)
	if repositoryID == "" {
		return Request{}, NotFound("")
	}

	req := Request{
		RepositoryID:   repositoryID,
		RepositoryName: strings.TrimSpace(raw.RepositoryName),
		Days:           DefaultDays,
		Priority:       PriorityMedium,
		Reason:         ReasonAutomatic,
		JobID:          strings.TrimSpace(raw.JobID),
		MaxItems:       DefaultMaxItems,
	}

	if d, ok := sourceDefaults[source]; ok {
		req.Reason = d.reason
		req.Priority = d.priority
	}

	if source == SourceQueueManager {
		if err := applyQueueManager(&req, raw); err != nil {
			return Request{}, err
		}
	}

	if raw.Days != nil {
		req.Days = int(*raw.Days)
	}
	if raw.Reason != "" {
		req.Reason = Reason(raw.Reason)
	}
	if raw.Priority != "" {
		req.Priority = Priority(raw.Priority)
	}
	if raw.MaxItems != nil && *raw.MaxItems > 0 {
		req.MaxItems = int(math.Min(*raw.MaxItems, MaxItemsCeiling))
	}
	req.MaxItems = min(req.MaxItems, MaxItemsCeiling)

	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	if err := validate.Struct(req); err != nil {
		return Request{}, invalid(err, "invalid sync request for %s: %v", repositoryID, err)
	}
	return req, nil
}

func applyQueueManager(req *Request, raw rawPayload) error {
	if raw.TimeRange != nil {
		days, err := parseTimeRange(raw.TimeRange)
		if err != nil {
			return err
		}
		if days > 0 {
			req.Days = days
		}
	}
	if raw.TriggerSource != "" {
		if reason, ok := triggerSources[strings.ToLower(raw.TriggerSource)]; ok {
			req.Reason = reason
		} else {
			req.Reason = Reason(raw.TriggerSource)
		}
	}
	return nil
}

// MaxTimeRangeDays bounds the lookback a timeRange may ask for.
const MaxTimeRangeDays = 3650

// parseTimeRange accepts a day count or strings such as "7d", "2w", "3m", "1y".
func parseTimeRange(v any) (int, error) {
	switch tr := v.(type) {
	case float64:
		if tr < 0 || tr > MaxTimeRangeDays {
			return 0, invalid(nil, "invalid timeRange %v: must be between 0 and %d days", tr, MaxTimeRangeDays)
		}
		return int(tr), nil
	case string:
		s := strings.ToLower(strings.TrimSpace(tr))
		if s == "" {
			return 0, nil
		}
		mult := 1
		switch s[len(s)-1] {
		case 'd':
			s = s[:len(s)-1]
		case 'w':
			mult, s = 7, s[:len(s)-1]
		case 'm':
			mult, s = 30, s[:len(s)-1]
		case 'y':
			mult, s = 365, s[:len(s)-1]
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, invalid(err, "invalid timeRange %q", tr)
		}
		if n > MaxTimeRangeDays/mult {
			return 0, invalid(nil, "invalid timeRange %q: must be at most %d days", tr, MaxTimeRangeDays)
		}
		return n * mult, nil
	}
	return 0, invalid(nil, "invalid timeRange %v", v)
}
