package handler

import (
	"mime"
	"net/http"

	"github.com/todopath/todopath/internal/api/middleware"
	"github.com/todopath/todopath/internal/api/response"
	"github.com/todopath/todopath/internal/domain"
	"github.com/todopath/todopath/internal/schedule"
	"github.com/todopath/todopath/internal/snapshot"
)

// PlanHandler serves whole-project views: the schedule, the path forest and
// snapshot export/import.
type PlanHandler struct{}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler() *PlanHandler {
	return &PlanHandler{}
}

// GetSchedule handles GET /schedule.
func (h *PlanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	response.OK(w, middleware.GetPlan(r.Context()).Schedule())
}

// GetForest handles GET /forest.
func (h *PlanHandler) GetForest(w http.ResponseWriter, r *http.Request) {
	forest := middleware.GetPlan(r.Context()).Forest()
	if forest == nil {
		forest = []*schedule.PathNode{}
	}
	response.OK(w, forest)
}

// Export handles GET /snapshot?format=yaml|json. JSON is the default.
func (h *PlanHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := snapshot.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := snapshot.ParseFormat(f)
		if err != nil {
			response.Error(w, domain.NewValidationError([]string{err.Error()}))
			return
		}
		format = parsed
	}

	doc := middleware.GetPlan(r.Context()).Export()
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	snapshot.Encode(w, doc, format)
}

// Import handles PUT /snapshot. The body is YAML when the Content-Type says
// so, JSON otherwise.
func (h *PlanHandler) Import(w http.ResponseWriter, r *http.Request) {
	format := snapshot.FormatJSON
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
		switch mt {
		case "application/yaml", "application/x-yaml", "text/yaml":
			format = snapshot.FormatYAML
		}
	}

	doc, err := snapshot.Decode(r.Body, format)
	if err != nil {
		response.Error(w, domain.NewValidationError([]string{err.Error()}))
		return
	}

	ctx := r.Context()
	res, err := middleware.GetPlan(ctx).Import(ctx, doc, middleware.GetAgentID(ctx))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, res)
}

func contentType(f snapshot.Format) string {
	if f == snapshot.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}
