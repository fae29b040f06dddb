package gitrepo

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

const defaultGitHubURL = "https://github.com"

// GitHubProvider implements Provider for GitHub repositories
type GitHubProvider struct {
	baseURL string
	token   string
}

// NewGitHubProvider creates a GitHub provider. An empty baseURL means
// github.com; an empty token means anonymous access.
func NewGitHubProvider(baseURL, token string) *GitHubProvider {
	if baseURL == "" {
		baseURL = defaultGitHubURL
	}
	return &GitHubProvider{baseURL: strings.TrimSuffix(baseURL, "/"), token: token}
}

func (g *GitHubProvider) Name() string {
	return "github"
}

func (g *GitHubProvider) CloneURL(owner, name string) string {
	return g.baseURL + "/" + owner + "/" + name + ".git"
}

func (g *GitHubProvider) ParseURL(url string) (owner, repo string) {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")
	url = strings.TrimSuffix(url, ".git")
	for _, prefix := range []string{g.baseURL + "/", "https://github.com/", "http://github.com/", "github.com/", "git@github.com:"} {
		url = strings.TrimPrefix(url, prefix)
	}

	parts := strings.Split(url, "/")
	if len(parts) >= 2 {
		return parts[0], parts[1]
	}
	return "", url
}

func (g *GitHubProvider) Auth() transport.AuthMethod {
	if g.token == "" {
		return nil
	}
	return &http.BasicAuth{
		Username: "git", // GitHub uses "git" as username for token auth
		Password: g.token,
	}
}

func (g *GitHubProvider) MatchesURL(url string) bool {
	url = strings.ToLower(url)
	return strings.Contains(url, "github.com") ||
		strings.HasPrefix(url, strings.ToLower(g.baseURL))
}
