package gitrepo

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Provider defines the interface for git hosting services
type Provider interface {
	// Name returns the provider name (e.g., "github")
	Name() string

	// CloneURL returns the clone URL for owner/name
	CloneURL(owner, name string) string

	// ParseURL extracts owner and repository name from a URL
	ParseURL(url string) (owner, repo string)

	// Auth returns the authentication method for this provider (nil if no auth)
	Auth() transport.AuthMethod

	// MatchesURL returns true if the URL belongs to this provider
	MatchesURL(url string) bool
}

// Registry holds registered providers and allows auto-detection
type Registry struct {
	providers []Provider
}

// NewRegistry creates a registry holding providers
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// Register adds a provider to the registry
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// Detect finds the appropriate provider for a given URL
func (r *Registry) Detect(url string) Provider {
	for _, p := range r.providers {
		if p.MatchesURL(url) {
			return p
		}
	}
	return nil
}

// DefaultRegistry knows the public GitHub host without authentication
var DefaultRegistry = NewRegistry(NewGitHubProvider("", ""))

// ParseRepository accepts "owner/name" or a URL of a registered provider and
// returns the owner and name.
func ParseRepository(s string) (owner, name string, err error) {
	s = strings.TrimSpace(s)

	if p := DefaultRegistry.Detect(s); p != nil {
		owner, name = p.ParseURL(s)
	} else if parts := strings.Split(strings.Trim(s, "/"), "/"); len(parts) == 2 {
		owner, name = parts[0], parts[1]
	}

	if owner == "" || name == "" || strings.ContainsAny(owner+name, " \t/:") {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name or a GitHub URL", s)
	}
	return owner, name, nil
}
