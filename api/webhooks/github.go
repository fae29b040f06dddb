package webhooks

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/domains/syncreq"
	"github.com/google/go-github/v66/github"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxWebhookBytes = 1 << 20

// pullRequestActions change the activity the dashboard shows.
var pullRequestActions = []string{"opened", "reopened", "closed", "synchronize", "edited"}

// WebhookResponse reports what the webhook did
type WebhookResponse struct {
	Status string `json:"status"`
	JobID  string `json:"jobId,omitempty"`
}

// GitHub handles POST /v1/webhooks/github. Pull request events on tracked
// repositories queue a pr-activity sync; everything else is acknowledged
// and ignored.
func (h handlers) GitHub(c web.Context) error {
	r := c.Request()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes+1))
	if err != nil {
		return c.BadRequest("failed to read request body")
	}
	if len(body) > maxWebhookBytes {
		return c.Error(http.StatusRequestEntityTooLarge, "webhook payload too large")
	}

	// An empty secret skips the signature check.
	payload, err := github.ValidatePayloadFromBody(
		r.Header.Get(echo.HeaderContentType),
		bytes.NewReader(body),
		r.Header.Get(github.SHA256SignatureHeader),
		[]byte(h.secret),
	)
	if err != nil {
		if h.secret != "" {
			return c.Error(http.StatusUnauthorized, "invalid signature")
		}
		return c.BadRequest(err.Error())
	}

	switch github.WebHookType(r) {
	case "ping":
		return c.OK(WebhookResponse{Status: "pong"})
	case "pull_request":
	default:
		return c.Accepted(WebhookResponse{Status: "ignored"})
	}

	parsed, err := github.ParseWebHook("pull_request", payload)
	if err != nil {
		return c.BadRequest("invalid pull_request payload")
	}
	ev, ok := parsed.(*github.PullRequestEvent)
	if !ok {
		return c.BadRequest("invalid pull_request payload")
	}
	if !slices.Contains(pullRequestActions, ev.GetAction()) {
		return c.Accepted(WebhookResponse{Status: "ignored"})
	}

	owner, name, ok := strings.Cut(ev.GetRepo().GetFullName(), "/")
	if !ok {
		return c.BadRequest("repository.full_name is required")
	}

	ctx := r.Context()

	repo, err := h.repos.FindByName(ctx, owner, name)
	if errors.Is(err, repos.ErrNotFound) {
		return c.Accepted(WebhookResponse{Status: "untracked"})
	}
	if err != nil {
		c.L.Error("failed to resolve webhook repository", zap.Error(err))
		return c.InternalError("failed to resolve repository")
	}

	trigger, err := json.Marshal(map[string]any{
		"repositoryId":   repo.ID,
		"repositoryName": repo.FullName(),
	})
	if err != nil {
		return c.InternalError("failed to encode sync request")
	}

	req, err := h.submit.Submit(ctx, syncreq.SourceWebhook, trigger)
	if err != nil {
		c.L.Error("failed to submit webhook sync", zap.Error(err))
		return c.Unavailable("sync could not be queued")
	}

	c.L.Info("pull request activity sync queued",
		zap.String("repository", repo.FullName()),
		zap.Int("pull_request", ev.GetNumber()),
		zap.String("action", ev.GetAction()),
		zap.String("job_id", req.JobID),
	)

	return c.Accepted(WebhookResponse{Status: "queued", JobID: req.JobID})
}
