// Package student contains the HTTP handler that adds student records to
// a writable store. It is registered only when http_server.allow_writes
// is enabled.
package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-lookup/internal/store"
	"github.com/aanand-mishra/student-lookup/internal/types"
	"github.com/aanand-mishra/student-lookup/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "sid": "S202411132", "name": "Li Hua", "college": "Computer Science", "major": "Software Engineering" }
//
// Success response (201 Created):
//
//	{ "id": "6f1c..." }
//
// Error responses:
//
//	400 Bad Request : empty body, malformed JSON, or failed validation
//	409 Conflict    : the sid is already taken
//	500 Internal    : store error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(writer store.Writer) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var student types.Student

		err := json.NewDecoder(r.Body).Decode(&student)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validate.Struct(student); err != nil {
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		id, err := writer.Insert(r.Context(), store.Students, student)
		if errors.Is(err, store.ErrDuplicateSID) {
			response.WriteJSON(w, http.StatusConflict,
				response.GeneralError(fmt.Errorf("student %s already exists", student.SID)))
			return
		}
		if err != nil {
			// Store errors may carry connection details; keep them in the log.
			slog.Error("error creating student",
				slog.String("sid", student.SID),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(errors.New("could not store the student")))
			return
		}

		slog.Info("student created", slog.String("id", id), slog.String("sid", student.SID))

		response.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}
