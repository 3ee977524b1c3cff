package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/todopath/todopath/internal/api/response"
	"github.com/todopath/todopath/internal/service"
	"github.com/todopath/todopath/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	manager, err := store.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	logger := log.New(io.Discard, "", 0)
	registry := service.NewRegistry(service.MemoryOpener(service.WithLogger(logger)))
	return NewRouter(manager, registry, logger)
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, rd))
	return rr
}

func TestRouter_TaskRoutes(t *testing.T) {
	h := newTestRouter(t)

	rr := serve(h, "POST", "/v1/projects/demo/tasks", `{"content":"write"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rr.Code, rr.Body)
	}
	var res struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil || res.TaskID == "" {
		t.Fatalf("create: decode %v, task_id %q", err, res.TaskID)
	}

	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{"GET", "/v1/projects/demo/tasks", http.StatusOK},
		{"GET", "/v1/projects/demo/tasks?filter=active", http.StatusOK},
		{"GET", "/v1/projects/demo/tasks/" + res.TaskID, http.StatusOK},
		{"GET", "/v1/projects/demo/tasks/" + res.TaskID + "/deps", http.StatusOK},
		{"GET", "/v1/projects/demo/tasks/" + res.TaskID + "/history", http.StatusOK},
		{"GET", "/v1/projects/demo/tasks/missing", http.StatusNotFound},
		{"GET", "/v1/projects/demo/schedule", http.StatusOK},
		{"GET", "/v1/projects/demo/forest", http.StatusOK},
		{"GET", "/v1/projects/demo/audit", http.StatusOK},
		{"GET", "/v1/health", http.StatusOK},
		{"GET", "/v1/projects", http.StatusOK},
	} {
		if rr := serve(h, tc.method, tc.path, ""); rr.Code != tc.want {
			t.Errorf("%s %s: status %d, want %d", tc.method, tc.path, rr.Code, tc.want)
		}
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	h := newTestRouter(t)

	rr := serve(h, "GET", "/v2/nothing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rr.Code)
	}
	var body response.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "ROUTE_NOT_FOUND" {
		t.Errorf("code = %q", body.Error.Code)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t)

	rr := serve(h, "PATCH", "/v1/health", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status %d, want 405", rr.Code)
	}
}
