package backfill

import (
	"slices"
	"time"

	"github.com/goccy/go-json"
)

// AllowedTypes are the event types kept by the backfill.
var AllowedTypes = []string{
	"WatchEvent",
	"ForkEvent",
	"PullRequestEvent",
	"IssuesEvent",
	"StarEvent",
}

// Allowed reports whether events of type t are stored.
func Allowed(t string) bool {
	return slices.Contains(AllowedTypes, t)
}

// Event is one entry of a repository's public event feed.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     Actor           `json:"actor"`
	Repo      EventRepo       `json:"repo"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Public    bool            `json:"public"`
	CreatedAt time.Time       `json:"created_at"`
}

type Actor struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type EventRepo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Stats summarizes a backfill run.
type Stats struct {
	ReposProcessed int `json:"reposProcessed"`
	EventsFetched  int `json:"eventsFetched"`
	EventsInserted int `json:"eventsInserted"`
	APICalls       int `json:"apiCalls"`
	Errors         int `json:"errors"`
}
