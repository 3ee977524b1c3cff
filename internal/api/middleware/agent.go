package middleware

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"
)

type contextKey string

const (
	// AgentHeader is the request header naming the caller.
	AgentHeader = "X-Todopath-Agent"
	// DefaultAgentID attributes requests that carry no usable agent header.
	DefaultAgentID = "anonymous"
	// MaxAgentIDLength bounds the identity stored with each audit entry.
	MaxAgentIDLength = 128

	agentKey contextKey = "agent"
)

// AgentID stores the caller's identity in the request context. The header
// is trimmed and cut to MaxAgentIDLength runes; blank or non-UTF-8 values
// fall back to DefaultAgentID.
func AgentID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent := normalizeAgent(r.Header.Get(AgentHeader))
		next.ServeHTTP(w, r.WithContext(WithAgentID(r.Context(), agent)))
	})
}

// WithAgentID returns ctx carrying agent as the caller's identity.
func WithAgentID(ctx context.Context, agent string) context.Context {
	return context.WithValue(ctx, agentKey, agent)
}

// GetAgentID returns the caller's identity, DefaultAgentID when unset.
func GetAgentID(ctx context.Context) string {
	if agent, ok := ctx.Value(agentKey).(string); ok {
		return agent
	}
	return DefaultAgentID
}

func normalizeAgent(raw string) string {
	agent := strings.TrimSpace(raw)
	if agent == "" || !utf8.ValidString(agent) {
		return DefaultAgentID
	}
	if utf8.RuneCountInString(agent) > MaxAgentIDLength {
		agent = string([]rune(agent)[:MaxAgentIDLength])
	}
	return agent
}
