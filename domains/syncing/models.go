package syncing

import (
	"errors"
	"time"

	"github.com/gomantics/contribsync/domains/syncreq"
	"github.com/gomantics/contribsync/domains/throttle"
	"github.com/gomantics/contribsync/libs/gitrepo"
)

// ErrNoJob is returned by Queue.Claim when nothing is queued.
var ErrNoJob = errors.New("no queued sync job")

// State is the ledger state of one sync request.
type State string

const (
	StateQueued       State = "queued"
	StateReceived     State = "received"
	StateNormalized   State = "normalized"
	StateSkipped      State = "skipped"
	StateFetching     State = "fetching"
	StateRetryPending State = "retry_pending"
	StateSucceeded    State = "succeeded"
	StateFailed       State = "failed"
)

func (s State) String() string {
	return string(s)
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateSkipped || s == StateSucceeded || s == StateFailed
}

// Outcome is how a dispatch ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
	OutcomeInvalid   Outcome = "invalid"
	// OutcomeRequeued means the dispatch was interrupted and the job went
	// back to the queue.
	OutcomeRequeued Outcome = "requeued"
)

// Result describes one dispatch.
type Result struct {
	Outcome  Outcome                   `json:"outcome"`
	Request  syncreq.Request           `json:"request"`
	Decision *throttle.Decision        `json:"decision,omitempty"`
	Attempts int                       `json:"attempts"`
	Snapshot *gitrepo.ActivitySnapshot `json:"-"`
	// CacheErr is set when the sync succeeded but the cache write failed.
	CacheErr error `json:"-"`
	Err      error `json:"-"`
}

// Job is a queued sync request as stored in the ledger.
type Job struct {
	JobID        string
	RepositoryID string
	Reason       string
	State        State
	Attempts     int
	Error        string
	Payload      []byte
	CompletedAt  *time.Time
	Created      int64
	Updated      int64
}
