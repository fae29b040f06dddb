package repositories

import (
	"errors"

	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/libs/gitrepo"
	"go.uber.org/zap"
)

// CreateRequest is the request body for registering a repository.
// Repository is "owner/name" or a clone URL.
type CreateRequest struct {
	Repository string `json:"repository" validate:"required"`
}

// Create handles POST /v1/repositories
func (h handlers) Create(c web.Context) error {
	var req CreateRequest
	if err := c.BindAndValidate(&req); err != nil {
		return c.BadRequest("repository is required")
	}

	owner, name, err := gitrepo.ParseRepository(req.Repository)
	if err != nil {
		return c.BadRequest(err.Error())
	}

	ctx := c.Request().Context()

	repo, err := h.Repos.Create(ctx, repos.CreateParams{Owner: owner, Name: name})
	if errors.Is(err, repos.ErrAlreadyExists) {
		return c.OK(toResponse(repo))
	}
	if err != nil {
		c.L.Error("failed to create repo", zap.Error(err))
		return c.InternalError("failed to create repository")
	}

	c.L.Info("repository registered",
		zap.String("id", repo.ID),
		zap.String("repository", repo.FullName()),
	)

	return c.Created(toResponse(repo))
}
