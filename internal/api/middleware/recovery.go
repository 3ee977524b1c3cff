package middleware

import (
	"errors"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/todopath/todopath/internal/api/response"
	"github.com/todopath/todopath/internal/domain"
)

// Recovery answers 500 INTERNAL_ERROR when a handler panics, logging the
// stack. http.ErrAbortHandler is re-raised so the server aborts the
// connection silently.
func Recovery(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logger.Printf("panic in %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				response.Error(w, domain.NewInternalError(nil))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
