package middleware

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/todopath/todopath/internal/api/response"
	"github.com/todopath/todopath/internal/domain"
	"github.com/todopath/todopath/internal/service"
)

const projectKey contextKey = "project"

// MaxProjectNameLength bounds project names, which double as file names.
const MaxProjectNameLength = 64

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidProjectName reports whether name can be used as a project name:
// 1 to MaxProjectNameLength letters, digits, hyphens or underscores.
func ValidProjectName(name string) bool {
	return len(name) <= MaxProjectNameLength && projectNamePattern.MatchString(name)
}

// projectScope is what ProjectContext attaches to a request.
type projectScope struct {
	name string
	plan *service.PlanService
}

// ProjectContext resolves the {project} URL parameter to its plan service,
// opening the project on first use.
func ProjectContext(registry *service.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "project")
			if !ValidProjectName(name) {
				response.Error(w, domain.NewValidationError([]string{
					"Invalid project name. Must be 1-64 alphanumeric characters, hyphens, or underscores.",
				}))
				return
			}

			plan, err := registry.Get(r.Context(), name)
			if err != nil {
				var de *domain.DomainError
				if !errors.As(err, &de) {
					err = domain.NewInternalError(err)
				}
				response.Error(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), projectKey, projectScope{name: name, plan: plan})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func scopeOf(ctx context.Context) projectScope {
	s, _ := ctx.Value(projectKey).(projectScope)
	return s
}

// GetProject returns the request's project name, or "" outside a project route.
func GetProject(ctx context.Context) string {
	return scopeOf(ctx).name
}

// GetPlan returns the request's plan service, or nil outside a project route.
func GetPlan(ctx context.Context) *service.PlanService {
	return scopeOf(ctx).plan
}
