// Package api assembles the HTTP surface of todopathd.
package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/todopath/todopath/internal/api/handler"
	"github.com/todopath/todopath/internal/api/middleware"
	"github.com/todopath/todopath/internal/api/response"
	"github.com/todopath/todopath/internal/service"
	"github.com/todopath/todopath/internal/store"
)

// NewRouter wires every /v1 route. Project routes are served by the
// registry's plan services; manager lists the projects on disk.
func NewRouter(manager *store.Manager, registry *service.Registry, logger *log.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AgentID)
	r.Use(middleware.Logging(logger))

	r.NotFound(routeError(http.StatusNotFound, "ROUTE_NOT_FOUND", "No such endpoint"))
	r.MethodNotAllowed(routeError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed on this endpoint"))

	system := handler.NewSystemHandler(manager)
	r.Get("/v1/health", system.Health)
	r.Get("/v1/projects", system.ListProjects)

	r.Route("/v1/projects/{project}", func(r chi.Router) {
		r.Use(middleware.ProjectContext(registry))
		mountTasks(r)
		mountPlan(r)
	})

	return r
}

// mountTasks registers task, dependency and history routes.
func mountTasks(r chi.Router) {
	tasks := handler.NewTaskHandler()
	transitions := handler.NewTransitionHandler()
	deps := handler.NewDependencyHandler()
	audit := handler.NewAuditHandler()

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", tasks.ListTasks)
		r.Post("/", tasks.CreateTask)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", tasks.GetTask)
			r.Delete("/", tasks.DeleteTask)

			r.Post("/toggle", transitions.ToggleCompletion)
			r.Put("/deadline", transitions.SetDeadline)
			r.Put("/hours", transitions.SetHours)

			r.Get("/deps", deps.ListDependencies)
			r.Post("/deps", deps.AddDependency)
			r.Delete("/deps/{depID}", deps.RemoveDependency)

			r.Get("/history", audit.GetTaskHistory)
		})
	})

	r.Post("/deps/prune", deps.PruneDangling)
	r.Get("/audit", audit.QueryAuditLog)
}

// mountPlan registers the derived views and snapshot transfer.
func mountPlan(r chi.Router) {
	plan := handler.NewPlanHandler()

	r.Get("/schedule", plan.GetSchedule)
	r.Get("/forest", plan.GetForest)
	r.Get("/snapshot", plan.Export)
	r.Put("/snapshot", plan.Import)
}

func routeError(status int, code, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, status, response.ErrorResponse{
			Error: response.ErrorBody{Code: code, Message: message},
		})
	}
}
