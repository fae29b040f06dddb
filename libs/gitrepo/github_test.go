package gitrepo

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubProvider_ParseURL(t *testing.T) {
	g := NewGitHubProvider("", "")

	tests := []struct {
		url   string
		owner string
		repo  string
	}{
		{"https://github.com/acme/widgets", "acme", "widgets"},
		{"https://github.com/acme/widgets.git", "acme", "widgets"},
		{"https://github.com/acme/widgets/", "acme", "widgets"},
		{"github.com/acme/widgets", "acme", "widgets"},
		{"git@github.com:acme/widgets.git", "acme", "widgets"},
		{"https://github.com/acme/widgets/pull/3", "acme", "widgets"},
		{"widgets", "", "widgets"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			owner, repo := g.ParseURL(tt.url)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

func TestGitHubProvider_CloneURL(t *testing.T) {
	assert.Equal(t, "https://github.com/acme/widgets.git", NewGitHubProvider("", "").CloneURL("acme", "widgets"))
	assert.Equal(t, "https://ghe.example.com/acme/widgets.git", NewGitHubProvider("https://ghe.example.com/", "").CloneURL("acme", "widgets"))
}

func TestGitHubProvider_Auth(t *testing.T) {
	assert.Nil(t, NewGitHubProvider("", "").Auth())

	auth, ok := NewGitHubProvider("", "tok").Auth().(*http.BasicAuth)
	require.True(t, ok)
	assert.Equal(t, "git", auth.Username)
	assert.Equal(t, "tok", auth.Password)
}

func TestParseRepository(t *testing.T) {
	tests := []struct {
		in      string
		owner   string
		name    string
		wantErr bool
	}{
		{"acme/widgets", "acme", "widgets", false},
		{" acme/widgets ", "acme", "widgets", false},
		{"https://github.com/acme/widgets", "acme", "widgets", false},
		{"acme", "", "", true},
		{"acme/widgets/extra", "", "", true},
		{"", "", "", true},
		{"https://github.com/acme", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, name, err := ParseRepository(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.name, name)
		})
	}
}
