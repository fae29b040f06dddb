package repos

import "time"

// Repo represents a tracked repository in the domain layer
type Repo struct {
	ID              string
	Owner           string
	Name            string
	Status          Status
	Error           string
	LastSyncedAt    *time.Time
	HasCompleteData bool
	Counts          ActivityCounts
	Created         int64
	Updated         int64
}

// FullName returns owner/name, which is also the activity cache key
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// CreatedAt returns the creation time
func (r Repo) CreatedAt() time.Time {
	return time.Unix(r.Created, 0)
}

// ActivityCounts are the item counts of the last successful sync
type ActivityCounts struct {
	Commits      int64
	PullRequests int64
	Contributors int64
}

// DataAvailability summarizes what the dashboard can render for a repo
type DataAvailability struct {
	HasCommits       bool  `json:"hasCommits"`
	HasPullRequests  bool  `json:"hasPullRequests"`
	HasContributors  bool  `json:"hasContributors"`
	CommitCount      int64 `json:"commitCount"`
	PullRequestCount int64 `json:"pullRequestCount"`
	ContributorCount int64 `json:"contributorCount"`
	HasCompleteData  bool  `json:"hasCompleteData"`
}

// Availability derives the data availability summary from the stored counts
func (r Repo) Availability() DataAvailability {
	return DataAvailability{
		HasCommits:       r.Counts.Commits > 0,
		HasPullRequests:  r.Counts.PullRequests > 0,
		HasContributors:  r.Counts.Contributors > 0,
		CommitCount:      r.Counts.Commits,
		PullRequestCount: r.Counts.PullRequests,
		ContributorCount: r.Counts.Contributors,
		HasCompleteData:  r.HasCompleteData,
	}
}

// CreateParams contains parameters for registering a repository
type CreateParams struct {
	Owner string
	Name  string
}

// ListParams contains parameters for listing repositories
type ListParams struct {
	Limit  int
	Offset int
}

// ListResult contains the result of listing repositories
type ListResult struct {
	Repos []Repo
	Total int64
}

// SyncedParams records the result of a successful sync
type SyncedParams struct {
	SyncedAt time.Time
	Counts   ActivityCounts
	Complete bool
}
