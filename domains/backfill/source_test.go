package backfill

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubSource_ListEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/events", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": "123",
			"type": "WatchEvent",
			"actor": {"id": 1, "login": "octocat", "avatar_url": "https://example.com/a.png"},
			"repo": {"id": 2, "name": "acme/widgets", "url": "https://api.github.com/repos/acme/widgets"},
			"payload": {"action": "started"},
			"public": true,
			"created_at": "2024-06-01T10:00:00Z"
		}]`))
	}))
	defer srv.Close()

	src, err := NewGitHubSource(srv.URL, "s3cret", nil)
	require.NoError(t, err)
	events, err := src.ListEvents(context.Background(), "acme", "widgets", 2, 100)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "123", ev.ID)
	assert.Equal(t, "WatchEvent", ev.Type)
	assert.Equal(t, "octocat", ev.Actor.Login)
	assert.Equal(t, "acme/widgets", ev.Repo.Name)
	assert.JSONEq(t, `{"action":"started"}`, string(ev.Payload))
	assert.True(t, ev.CreatedAt.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)))
}

func TestGitHubSource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header map[string]string
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrRepositoryNotFound)
			},
		},
		{
			name:   "rate limited",
			status: http.StatusForbidden,
			header: map[string]string{
				"X-RateLimit-Limit":     "5000",
				"X-RateLimit-Remaining": "0",
				"X-RateLimit-Reset":     "1718020800",
			},
			check: func(t *testing.T, err error) {
				var rl *RateLimitError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, int64(1718020800), rl.Reset.Unix())
			},
		},
		{
			name:   "secondary rate limit",
			status: http.StatusForbidden,
			header: map[string]string{"Retry-After": "120"},
			body:   `{"message":"slow down","documentation_url":"https://docs.github.com/rest/overview/rate-limits-for-the-rest-api#about-secondary-rate-limits"}`,
			check: func(t *testing.T, err error) {
				var rl *RateLimitError
				require.ErrorAs(t, err, &rl)
				assert.WithinDuration(t, time.Now().Add(2*time.Minute), rl.Reset, 10*time.Second)
			},
		},
		{
			name:   "forbidden without reset",
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusForbidden, se.Code)
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusBadGateway, se.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Empty(t, r.Header.Get("Authorization"))
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				if tt.body != "" {
					_, _ = w.Write([]byte(tt.body))
				}
			}))
			defer srv.Close()

			src, err := NewGitHubSource(srv.URL, "", nil)
			require.NoError(t, err)
			_, err = src.ListEvents(context.Background(), "acme", "widgets", 1, 100)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
