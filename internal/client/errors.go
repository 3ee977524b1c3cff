package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"

	"github.com/todopath/todopath/internal/domain"
)

var (
	// ErrServerNotRunning is returned when nothing accepts the connection.
	ErrServerNotRunning = errors.New("server is not running or unreachable")
	// ErrServerUnhealthy is returned when the health endpoint does not say ok.
	ErrServerUnhealthy = errors.New("server health check failed")
)

// errorEnvelope is the body of every non-2xx API response.
type errorEnvelope struct {
	Error struct {
		Code    domain.ErrorCode       `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	} `json:"error"`
}

// parseErrorResponse turns an API error body back into a *domain.DomainError
// so callers can use domain.IsCode on it. Bodies without a code are reported
// verbatim with the status.
func parseErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Code == "" {
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return &domain.DomainError{
		Code:    env.Error.Code,
		Message: env.Error.Message,
		Context: normalizeContext(env.Error.Context),
	}
}

// normalizeContext converts JSON string arrays back to []string, matching
// the context the server built.
func normalizeContext(ctx map[string]interface{}) map[string]interface{} {
	for key, v := range ctx {
		items, ok := v.([]interface{})
		if !ok {
			continue
		}
		strs := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				strs = nil
				break
			}
			strs = append(strs, s)
		}
		if strs != nil {
			ctx[key] = strs
		}
	}
	return ctx
}

func isConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(err.Error(), "connection refused")
}
