package handler

import (
	"net/http"
	"sort"

	"github.com/todopath/todopath/internal/api/response"
	"github.com/todopath/todopath/internal/domain"
)

// ProjectLister reports the projects that have stored plans.
type ProjectLister interface {
	ListProjects() ([]string, error)
}

// SystemHandler serves the endpoints that are not scoped to a project.
type SystemHandler struct {
	projects ProjectLister
}

// NewSystemHandler creates a SystemHandler listing projects from projects.
func NewSystemHandler(projects ProjectLister) *SystemHandler {
	return &SystemHandler{projects: projects}
}

// Health handles GET /v1/health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// ListProjects handles GET /v1/projects. Names are sorted; an empty data
// directory yields an empty array.
func (h *SystemHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListProjects()
	if err != nil {
		response.Error(w, domain.NewInternalError(err))
		return
	}
	if projects == nil {
		projects = []string{}
	}
	sort.Strings(projects)
	response.OK(w, projects)
}
