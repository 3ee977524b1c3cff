package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/todopath/todopath/internal/api/middleware"
	"github.com/todopath/todopath/internal/api/request"
	"github.com/todopath/todopath/internal/api/response"
	"github.com/todopath/todopath/internal/schedule"
)

// DependencyHandler handles dependency operations.
type DependencyHandler struct{}

// NewDependencyHandler creates a new DependencyHandler.
func NewDependencyHandler() *DependencyHandler {
	return &DependencyHandler{}
}

// ListDependencies handles GET /tasks/{id}/deps.
func (h *DependencyHandler) ListDependencies(w http.ResponseWriter, r *http.Request) {
	plan := middleware.GetPlan(r.Context())

	deps, err := plan.Dependencies(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, deps)
}

// AddDependency handles POST /tasks/{id}/deps.
func (h *DependencyHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	var req request.AddDependency
	if err := request.Bind(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	res, err := apply(r, schedule.AddDependency{
		TaskID:       chi.URLParam(r, "id"),
		DependencyID: req.DependencyID,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, res)
}

// RemoveDependency handles DELETE /tasks/{id}/deps/{depID}.
func (h *DependencyHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	res, err := apply(r, schedule.RemoveDependency{
		TaskID:       chi.URLParam(r, "id"),
		DependencyID: chi.URLParam(r, "depID"),
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, res)
}

// PruneDangling handles POST /deps/prune.
func (h *DependencyHandler) PruneDangling(w http.ResponseWriter, r *http.Request) {
	res, err := apply(r, schedule.PruneDanglingDependencies{})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, res)
}
