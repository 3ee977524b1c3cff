package request

import (
	"net/http"
	"strconv"

	"github.com/todopath/todopath/internal/schedule"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 50
	MaxPerPage     = 100
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page    int
	PerPage int
}

// positiveInt returns the query value as an int, or def when it is missing
// or not positive.
func positiveInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// ParsePagination reads page and per_page, clamping per_page to MaxPerPage.
func ParsePagination(r *http.Request) Pagination {
	return Pagination{
		Page:    positiveInt(r, "page", DefaultPage),
		PerPage: min(positiveInt(r, "per_page", DefaultPerPage), MaxPerPage),
	}
}

// ParseTaskQuery reads the completion filter and search text of a task
// listing.
func ParseTaskQuery(r *http.Request) (schedule.Filter, string, error) {
	q := r.URL.Query()
	filter, err := schedule.ParseFilter(q.Get("filter"))
	if err != nil {
		return "", "", err
	}
	return filter, q.Get("q"), nil
}
