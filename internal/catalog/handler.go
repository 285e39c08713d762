package catalog

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillgap-backend/internal/shared/server/respond"
)

// Handler serves the resource catalog.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches catalog routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resources", h.list)
}

type listResponse struct {
	Skill     string     `json:"skill,omitempty"`
	Resources []Resource `json:"resources"`
}

func (h *Handler) list(c *gin.Context) {
	skill := strings.TrimSpace(c.Query("skill"))

	var (
		out []Resource
		err error
	)
	if skill != "" {
		out, err = h.Repo.Lookup(c.Request.Context(), skill)
	} else {
		out, err = h.Repo.List(c.Request.Context())
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load resources", nil)
		return
	}
	if out == nil {
		out = []Resource{}
	}
	respond.OK(c, listResponse{Skill: skill, Resources: out})
}
