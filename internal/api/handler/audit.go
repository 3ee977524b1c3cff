package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/todopath/todopath/internal/api/middleware"
	"github.com/todopath/todopath/internal/api/request"
	"github.com/todopath/todopath/internal/api/response"
)

// AuditHandler serves a project's change history.
type AuditHandler struct{}

func NewAuditHandler() *AuditHandler {
	return &AuditHandler{}
}

// GetTaskHistory handles GET /tasks/{id}/history.
func (h *AuditHandler) GetTaskHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := middleware.GetPlan(r.Context()).History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, entries)
}

// QueryAuditLog handles GET /audit.
func (h *AuditHandler) QueryAuditLog(w http.ResponseWriter, r *http.Request) {
	filter, err := request.ParseAuditQuery(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	entries, total, err := middleware.GetPlan(r.Context()).QueryAudit(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Paginated(w, entries, filter.Page, filter.PerPage, total)
}
