package backfill

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-github/v66/github"
)

// ErrRepositoryNotFound is returned when the upstream has no such repository.
var ErrRepositoryNotFound = errors.New("repository not found upstream")

// RateLimitError is returned when the upstream budget is exhausted.
type RateLimitError struct {
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.Reset.Format(time.RFC3339))
}

// StatusError is an unexpected upstream response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// EventSource pages through a repository's event feed, newest first.
type EventSource interface {
	ListEvents(ctx context.Context, owner, name string, page, perPage int) ([]Event, error)
}

// GitHubSource reads the GitHub REST repository events feed.
type GitHubSource struct {
	client *github.Client
	now    func() time.Time
}

// NewGitHubSource creates a source against apiURL, or api.github.com when
// apiURL is empty. A nil httpClient gets a 30 second timeout.
func NewGitHubSource(apiURL, token string, httpClient *http.Client) (*GitHubSource, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if apiURL != "" {
		base, err := url.Parse(strings.TrimSuffix(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse api url %q: %w", apiURL, err)
		}
		client.BaseURL = base
	}
	client.UserAgent = "contribsync-backfill"

	return &GitHubSource{client: client, now: time.Now}, nil
}

func (s *GitHubSource) ListEvents(ctx context.Context, owner, name string, page, perPage int) ([]Event, error) {
	events, _, err := s.client.Activity.ListRepositoryEvents(ctx, owner, name, &github.ListOptions{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, s.mapError(owner, name, err)
	}

	out := make([]Event, 0, len(events))
	for _, ev := range events {
		out = append(out, fromGitHub(ev))
	}
	return out, nil
}

func (s *GitHubSource) mapError(owner, name string, err error) error {
	var rl *github.RateLimitError
	if errors.As(err, &rl) {
		return &RateLimitError{Reset: rl.Rate.Reset.Time}
	}

	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) && abuse.RetryAfter != nil {
		return &RateLimitError{Reset: s.now().Add(*abuse.RetryAfter)}
	}

	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		if er.Response.StatusCode == http.StatusNotFound {
			return ErrRepositoryNotFound
		}
		return &StatusError{Code: er.Response.StatusCode}
	}

	return fmt.Errorf("list events %s/%s: %w", owner, name, err)
}

func fromGitHub(ev *github.Event) Event {
	out := Event{
		ID:   ev.GetID(),
		Type: ev.GetType(),
		Actor: Actor{
			ID:        ev.GetActor().GetID(),
			Login:     ev.GetActor().GetLogin(),
			AvatarURL: ev.GetActor().GetAvatarURL(),
		},
		Repo: EventRepo{
			ID:   ev.GetRepo().GetID(),
			Name: ev.GetRepo().GetName(),
			URL:  ev.GetRepo().GetURL(),
		},
		Public:    ev.GetPublic(),
		CreatedAt: ev.GetCreatedAt().Time,
	}
	if ev.RawPayload != nil {
		out.Payload = json.RawMessage(*ev.RawPayload)
	}
	return out
}
