package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/todopath/todopath/internal/api/middleware"
	"github.com/todopath/todopath/internal/api/request"
	"github.com/todopath/todopath/internal/api/response"
	"github.com/todopath/todopath/internal/schedule"
)

// TaskHandler handles task creation, lookup and deletion.
type TaskHandler struct{}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler() *TaskHandler {
	return &TaskHandler{}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTask
	if err := request.Bind(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	res, err := apply(r, schedule.AddTask{Content: req.Content})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, res)
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	plan := middleware.GetPlan(r.Context())

	task, err := plan.Task(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, task)
}

// ListTasks handles GET /tasks?filter=&q=.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, search, err := request.ParseTaskQuery(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	plan := middleware.GetPlan(r.Context())
	response.OK(w, plan.ListTasks(filter, search))
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	res, err := apply(r, schedule.DeleteTask{ID: chi.URLParam(r, "id")})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, res)
}

// apply runs cmd against the request's project on behalf of its agent.
func apply(r *http.Request, cmd schedule.Command) (*schedule.Result, error) {
	ctx := r.Context()
	return middleware.GetPlan(ctx).Apply(ctx, cmd, middleware.GetAgentID(ctx))
}
