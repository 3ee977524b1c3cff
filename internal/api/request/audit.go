package request

import (
	"fmt"
	"net/http"
	"time"

	"github.com/todopath/todopath/internal/domain"
)

// ParseAuditQuery reads the audit log filter and page from query
// parameters. Unknown actions and malformed times are collected into one
// validation error.
func ParseAuditQuery(r *http.Request) (domain.AuditFilter, error) {
	p := ParsePagination(r)
	filter := domain.AuditFilter{Page: p.Page, PerPage: p.PerPage}
	q := r.URL.Query()
	var errors []string

	if taskID := q.Get("task"); taskID != "" {
		filter.TaskID = &taskID
	}

	if a := q.Get("action"); a != "" {
		action := domain.AuditAction(a)
		if action.IsValid() {
			filter.Action = &action
		} else {
			errors = append(errors, fmt.Sprintf("unknown action %q", a))
		}
	}

	if agentID := q.Get("agent"); agentID != "" {
		filter.AgentID = &agentID
	}

	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{
		{"since", &filter.Since},
		{"until", &filter.Until},
	} {
		s := q.Get(bound.name)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s must be an RFC3339 time", bound.name))
			continue
		}
		*bound.dst = &t
	}

	if len(errors) > 0 {
		return filter, domain.NewValidationError(errors)
	}
	return filter, nil
}
