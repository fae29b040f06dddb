package gitrepo

import "time"

// ActivitySnapshot is the activity of one repository over a lookback window.
// It is stored as the activity cache payload.
type ActivitySnapshot struct {
	RepositoryID string        `json:"repositoryId"`
	Repository   string        `json:"repository"`
	Since        time.Time     `json:"since"`
	FetchedAt    time.Time     `json:"fetchedAt"`
	Totals       Totals        `json:"totals"`
	Commits      []Commit      `json:"commits"`
	PullRequests []PullRequest `json:"pullRequests"`
	Contributors []Contributor `json:"contributors"`
}

// Totals count everything in the window, before the maxItems cap.
type Totals struct {
	Commits      int `json:"commits"`
	PullRequests int `json:"pullRequests"`
	Contributors int `json:"contributors"`
}

type Commit struct {
	SHA         string    `json:"sha"`
	Author      string    `json:"author"`
	Email       string    `json:"email"`
	Message     string    `json:"message"`
	Additions   int64     `json:"additions"`
	Deletions   int64     `json:"deletions"`
	CommittedAt time.Time `json:"committedAt"`
}

// PullRequest is a pull request recovered from its merge or squash commit.
type PullRequest struct {
	Number    int64     `json:"number"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Additions int64     `json:"additions"`
	Deletions int64     `json:"deletions"`
	MergedAt  time.Time `json:"mergedAt"`
}

type Contributor struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Commits int    `json:"commits"`
}
