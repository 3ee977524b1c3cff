package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/todopath/todopath/internal/api/request"
	"github.com/todopath/todopath/internal/api/response"
	"github.com/todopath/todopath/internal/schedule"
)

// TransitionHandler handles changes to a task's completion and timing.
type TransitionHandler struct{}

// NewTransitionHandler creates a new TransitionHandler.
func NewTransitionHandler() *TransitionHandler {
	return &TransitionHandler{}
}

// ToggleCompletion handles POST /tasks/{id}/toggle.
func (h *TransitionHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	res, err := apply(r, schedule.ToggleCompletion{ID: chi.URLParam(r, "id")})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, res)
}

// SetDeadline handles PUT /tasks/{id}/deadline.
func (h *TransitionHandler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	var req request.SetDeadline
	if err := request.Bind(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	res, err := apply(r, schedule.SetDeadline{ID: chi.URLParam(r, "id"), Deadline: req.Deadline})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, res)
}

// SetHours handles PUT /tasks/{id}/hours.
func (h *TransitionHandler) SetHours(w http.ResponseWriter, r *http.Request) {
	var req request.SetHours
	if err := request.Bind(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	res, err := apply(r, schedule.SetEstimatedHours{ID: chi.URLParam(r, "id"), Hours: *req.Hours})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, res)
}
