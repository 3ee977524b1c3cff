package request

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/todopath/todopath/internal/domain"
)

// Validator is implemented by bodies that check their own fields.
type Validator interface {
	Validate() []string
}

// Bind decodes the JSON body into v and, when v is a Validator, validates
// it. Both failures are reported as validation errors.
func Bind(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError([]string{"Invalid JSON body"})
	}
	if val, ok := v.(Validator); ok {
		if details := val.Validate(); len(details) > 0 {
			return domain.NewValidationError(details)
		}
	}
	return nil
}

// CreateTask is the body of POST /tasks.
type CreateTask struct {
	Content string `json:"content"`
}

func (b *CreateTask) Validate() []string {
	if strings.TrimSpace(b.Content) == "" {
		return []string{"content is required"}
	}
	return nil
}

// SetDeadline is the body of PUT /tasks/{id}/deadline. A null deadline
// clears it.
type SetDeadline struct {
	Deadline *time.Time `json:"deadline"`
}

// SetHours is the body of PUT /tasks/{id}/hours.
type SetHours struct {
	Hours *float64 `json:"hours"`
}

func (b *SetHours) Validate() []string {
	switch {
	case b.Hours == nil:
		return []string{"hours is required"}
	case !domain.ValidEstimate(*b.Hours):
		return []string{domain.EstimateRangeMessage}
	}
	return nil
}

// AddDependency is the body of POST /tasks/{id}/deps.
type AddDependency struct {
	DependencyID string `json:"dependency_id"`
}

func (b *AddDependency) Validate() []string {
	if strings.TrimSpace(b.DependencyID) == "" {
		return []string{"dependency_id is required"}
	}
	return nil
}
