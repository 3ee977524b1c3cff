package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/todopath/todopath/internal/domain"
	"github.com/todopath/todopath/internal/schedule"
	"github.com/todopath/todopath/internal/snapshot"
)

// AgentHeader carries the caller's identity on every request.
const AgentHeader = "X-Todopath-Agent"

// Client is an HTTP client for the todopath server API.
type Client struct {
	baseURL string       // http://host:port
	agentID string       // X-Todopath-Agent header value
	project string       // Project name for URL paths
	http    *http.Client // HTTP client
}

// NewClient creates a new todopath API client.
func NewClient(host string, port int, project string, agentID string) *Client {
	return &Client{
		baseURL: fmt.Sprintf("http://%s:%d", host, port),
		agentID: agentID,
		project: project,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// =============================================================================
// Health
// =============================================================================

// Health checks if the server is healthy.
func (c *Client) Health(ctx context.Context) error {
	var health healthResponse
	err := c.do(ctx, http.MethodGet, "/v1/health", nil, http.StatusOK, &health)
	if err == ErrServerNotRunning {
		return err
	}
	if err != nil || health.Status != "ok" {
		return ErrServerUnhealthy
	}
	return nil
}

// ListProjects returns a list of all project names.
func (c *Client) ListProjects(ctx context.Context) ([]string, error) {
	var projects []string
	if err := c.do(ctx, http.MethodGet, "/v1/projects", nil, http.StatusOK, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// =============================================================================
// Tasks
// =============================================================================

// CreateTask adds a task to the front of the list.
func (c *Client) CreateTask(ctx context.Context, content string) (*schedule.Result, error) {
	return c.mutate(ctx, http.MethodPost, "/tasks", createTaskRequest{Content: content}, http.StatusCreated)
}

// GetTask retrieves a task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, c.projectPath("/tasks/"+url.PathEscape(id)), nil, http.StatusOK, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks lists tasks matching filter ("all", "active" or "completed")
// whose content contains search.
func (c *Client) ListTasks(ctx context.Context, filter, search string) ([]domain.Task, error) {
	q := url.Values{}
	if filter != "" {
		q.Set("filter", filter)
	}
	if search != "" {
		q.Set("q", search)
	}

	path := c.projectPath("/tasks")
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// DeleteTask removes a task. Dependents keep the id as a dangling dependency.
func (c *Client) DeleteTask(ctx context.Context, id string) (*schedule.Result, error) {
	return c.mutate(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, http.StatusOK)
}

// ToggleCompletion completes an incomplete task or un-completes a completed
// one, cascading to its dependents.
func (c *Client) ToggleCompletion(ctx context.Context, id string) (*schedule.Result, error) {
	return c.mutate(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/toggle", nil, http.StatusOK)
}

// SetDeadline sets a task's deadline. A nil deadline clears it.
func (c *Client) SetDeadline(ctx context.Context, id string, deadline *time.Time) (*schedule.Result, error) {
	return c.mutate(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id)+"/deadline", setDeadlineRequest{Deadline: deadline}, http.StatusOK)
}

// SetHours sets a task's estimated hours.
func (c *Client) SetHours(ctx context.Context, id string, hours float64) (*schedule.Result, error) {
	return c.mutate(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id)+"/hours", setHoursRequest{Hours: hours}, http.StatusOK)
}

// =============================================================================
// Dependencies
// =============================================================================

// AddDependency makes taskID depend on dependencyID.
func (c *Client) AddDependency(ctx context.Context, taskID, dependencyID string) (*schedule.Result, error) {
	return c.mutate(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/deps",
		addDependencyRequest{DependencyID: dependencyID}, http.StatusCreated)
}

// RemoveDependency removes dependencyID from taskID's dependencies.
func (c *Client) RemoveDependency(ctx context.Context, taskID, dependencyID string) (*schedule.Result, error) {
	return c.mutate(ctx, http.MethodDelete,
		"/tasks/"+url.PathEscape(taskID)+"/deps/"+url.PathEscape(dependencyID), nil, http.StatusOK)
}

// ListDependencies lists a task's dependency edges.
func (c *Client) ListDependencies(ctx context.Context, taskID string) ([]domain.Dependency, error) {
	var deps []domain.Dependency
	if err := c.do(ctx, http.MethodGet, c.projectPath("/tasks/"+url.PathEscape(taskID)+"/deps"), nil, http.StatusOK, &deps); err != nil {
		return nil, err
	}
	return deps, nil
}

// PruneDanglingDependencies removes dependencies on deleted tasks.
func (c *Client) PruneDanglingDependencies(ctx context.Context) (*schedule.Result, error) {
	return c.mutate(ctx, http.MethodPost, "/deps/prune", nil, http.StatusOK)
}

// =============================================================================
// Plan
// =============================================================================

// Schedule returns every task's derived start, end and delay status.
func (c *Client) Schedule(ctx context.Context) (map[string]domain.ScheduleEntry, error) {
	var sched map[string]domain.ScheduleEntry
	if err := c.do(ctx, http.MethodGet, c.projectPath("/schedule"), nil, http.StatusOK, &sched); err != nil {
		return nil, err
	}
	return sched, nil
}

// Forest returns the path-to-completion forest.
func (c *Client) Forest(ctx context.Context) ([]*schedule.PathNode, error) {
	var forest []*schedule.PathNode
	if err := c.do(ctx, http.MethodGet, c.projectPath("/forest"), nil, http.StatusOK, &forest); err != nil {
		return nil, err
	}
	return forest, nil
}

// Export downloads the project snapshot encoded in format.
func (c *Client) Export(ctx context.Context, format snapshot.Format) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.projectPath("/snapshot?format="+string(format)), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req, "export")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp)
	}
	return io.ReadAll(resp.Body)
}

// Import replaces the project's tasks with the snapshot in data.
func (c *Client) Import(ctx context.Context, data []byte, format snapshot.Format) (*schedule.Result, error) {
	req, err := c.newRequest(ctx, http.MethodPut, c.projectPath("/snapshot"), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if format == snapshot.FormatYAML {
		req.Header.Set("Content-Type", "application/yaml")
	} else {
		req.Header.Set("Content-Type", "application/json")
	}

	var res schedule.Result
	if err := c.roundTrip(req, http.StatusOK, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// =============================================================================
// Audit
// =============================================================================

// GetTaskHistory returns a task's audit history, newest first.
func (c *Client) GetTaskHistory(ctx context.Context, taskID string) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	if err := c.do(ctx, http.MethodGet, c.projectPath("/tasks/"+url.PathEscape(taskID)+"/history"), nil, http.StatusOK, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// QueryAudit returns one page of the project audit log.
func (c *Client) QueryAudit(ctx context.Context, query AuditQuery) (*AuditPage, error) {
	q := url.Values{}
	if query.TaskID != "" {
		q.Set("task", query.TaskID)
	}
	if query.Action != "" {
		q.Set("action", query.Action)
	}
	if query.AgentID != "" {
		q.Set("agent", query.AgentID)
	}
	if query.Since != nil {
		q.Set("since", query.Since.UTC().Format(time.RFC3339))
	}
	if query.Until != nil {
		q.Set("until", query.Until.UTC().Format(time.RFC3339))
	}
	if query.Page > 0 {
		q.Set("page", strconv.Itoa(query.Page))
	}
	if query.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(query.PerPage))
	}

	path := c.projectPath("/audit")
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page AuditPage
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// =============================================================================
// Helper Methods
// =============================================================================

// projectPath constructs a URL path with the project prefix.
func (c *Client) projectPath(path string) string {
	return "/v1/projects/" + url.PathEscape(c.project) + path
}

// mutate sends a command to a project path and decodes the updated task set.
func (c *Client) mutate(ctx context.Context, method, path string, body interface{}, want int) (*schedule.Result, error) {
	var res schedule.Result
	if err := c.do(ctx, method, c.projectPath(path), body, want, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// do sends a request with an optional JSON body and decodes a JSON response
// with the wanted status into out.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, want int, out interface{}) error {
	var req *http.Request
	var err error
	if body != nil {
		req, err = c.newJSONRequest(ctx, method, path, body)
	} else {
		req, err = c.newRequest(ctx, method, path, nil)
	}
	if err != nil {
		return err
	}
	return c.roundTrip(req, want, out)
}

func (c *Client) roundTrip(req *http.Request, want int, out interface{}) error {
	resp, err := c.send(req, req.Method+" "+req.URL.Path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return parseErrorResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) send(req *http.Request, what string) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if isConnectionRefused(err) {
			return nil, ErrServerNotRunning
		}
		return nil, fmt.Errorf("%s failed: %w", what, err)
	}
	return resp, nil
}

// newRequest creates a new HTTP request with common headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(AgentHeader, c.agentID)

	return req, nil
}

// newJSONRequest creates a new HTTP request with JSON body.
func (c *Client) newJSONRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, &buf)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
