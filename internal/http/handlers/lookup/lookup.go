// Package lookup contains the HTTP handlers of the web presenter: an HTML
// page with the lookup form, and a JSON view of the same state.
//
// Handlers are built with the closure / factory pattern:
//
//	router.HandleFunc("POST /api/lookup", lookup.Submit(ctrl))
//
// Submit(ctrl) is called ONCE at startup; the returned handler runs on
// every request.
package lookup

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	ctrllookup "github.com/aanand-mishra/student-lookup/internal/lookup"
	"github.com/aanand-mishra/student-lookup/internal/types"
	"github.com/aanand-mishra/student-lookup/internal/utils/response"
)

//go:embed templates/page.html
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/page.html"))

// Controller is the part of the lookup controller the handlers use.
type Controller interface {
	Submit(ctx context.Context, rawInput string) ctrllookup.State
	State() ctrllookup.State
	Input() string
}

// StateResponse is the JSON form of a lookup state.
type StateResponse struct {
	Status    string         `json:"status"`
	Query     string         `json:"query,omitempty"`
	Kind      string         `json:"kind,omitempty"`
	Message   string         `json:"message,omitempty"`
	Student   *types.Student `json:"student,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// SubmitRequest is the body of POST /api/lookup.
type SubmitRequest struct {
	SID string `json:"sid"`
}

func newStateResponse(st ctrllookup.State) StateResponse {
	return StateResponse{
		Status:    st.Status.String(),
		Query:     st.Query,
		Kind:      st.Kind.String(),
		Message:   st.Message,
		Student:   st.Student,
		RequestID: st.RequestID,
	}
}

// pageData is what templates/page.html renders.
type pageData struct {
	Input string
	View  ctrllookup.View
	Hint  string
}

// ─────────────────────────────────────────────────────────────────────────────
// Page handles GET /
// Renders the form, banner and result card from the current state.
// ─────────────────────────────────────────────────────────────────────────────
func Page(ctrl Controller, hint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{
			Input: ctrl.Input(),
			View:  ctrllookup.Render(ctrl.State()),
			Hint:  hint,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(w, data); err != nil {
			slog.Error("error rendering page", slog.String("error", err.Error()))
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// SubmitForm handles POST /lookup
// Submits the "sid" form field (an Enter keypress in the field does the
// same as the button), then redirects back to the page.
// ─────────────────────────────────────────────────────────────────────────────
func SubmitForm(ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		// The lookup outlives the request: its outcome is the shared state
		// the next page load shows.
		ctrl.Submit(context.WithoutCancel(r.Context()), r.PostFormValue("sid"))

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Get handles GET /api/lookup
// Returns the current state.
//
// Success response (200 OK):
//
//	{ "status": "success", "query": "S1", "student": { "sid": "S1", ... } }
//
// ─────────────────────────────────────────────────────────────────────────────
func Get(ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, newStateResponse(ctrl.State()))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit handles POST /api/lookup
// Runs one lookup and returns the resulting state. Outcomes of the lookup
// itself (empty input, not found, store failure) are states, not HTTP
// errors, so they all answer 200.
//
// Request body (JSON):
//
//	{ "sid": "S202411132" }
//
// Error responses:
//
//	400 Bad Request : empty body or malformed JSON
//
// ─────────────────────────────────────────────────────────────────────────────
func Submit(ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		st := ctrl.Submit(context.WithoutCancel(r.Context()), req.SID)

		response.WriteJSON(w, http.StatusOK, newStateResponse(st))
	}
}

// Health handles GET /healthz.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.OK())
	}
}
