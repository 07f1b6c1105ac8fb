// Package http wires the web presenter's handlers into a router.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/student-lookup/internal/http/handlers/lookup"
	"github.com/aanand-mishra/student-lookup/internal/http/handlers/student"
	"github.com/aanand-mishra/student-lookup/internal/store"
)

// Hint is the example student ID shown under the page header.
const Hint = "S202411132"

// NewRouter registers every route. writer may be nil, in which case
// POST /api/students is not registered.
//
// Route table:
//
//	GET    /              → lookup page
//	POST   /lookup        → submit the page form
//	GET    /api/lookup    → current state as JSON
//	POST   /api/lookup    → submit a lookup, returns the resulting state
//	POST   /api/students  → add a student (writable stores only)
//	GET    /healthz       → liveness
func NewRouter(ctrl lookup.Controller, writer store.Writer, log *slog.Logger) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", lookup.Page(ctrl, Hint))
	router.HandleFunc("POST /lookup", lookup.SubmitForm(ctrl))
	router.HandleFunc("GET /api/lookup", lookup.Get(ctrl))
	router.HandleFunc("POST /api/lookup", lookup.Submit(ctrl))
	router.HandleFunc("GET /healthz", lookup.Health())

	if writer != nil {
		router.HandleFunc("POST /api/students", student.New(writer))
	}

	return logRequests(log, router)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}
