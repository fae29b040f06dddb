package repositories

import (
	"strconv"

	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/repos"
	"go.uber.org/zap"
)

// ListResponse is the response for listing repositories
type ListResponse struct {
	Repos []RepoResponse `json:"repos"`
	Total int64          `json:"total"`
}

// List handles GET /v1/repositories
func (h handlers) List(c web.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	result, err := h.Repos.List(c.Request().Context(), repos.ListParams{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		c.L.Error("failed to list repos", zap.Error(err))
		return c.InternalError("failed to list repositories")
	}

	out := make([]RepoResponse, len(result.Repos))
	for i := range result.Repos {
		out[i] = toResponse(&result.Repos[i])
	}

	return c.OK(ListResponse{
		Repos: out,
		Total: result.Total,
	})
}
