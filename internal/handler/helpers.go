package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/folioapp/folio/internal/model"
)

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error response using the standard error
// envelope. The optional ctx map provides additional context fields.
func writeError(w http.ResponseWriter, code int, message string, ctx ...map[string]interface{}) {
	var ctxMap map[string]interface{}
	if len(ctx) > 0 {
		ctxMap = ctx[0]
	}
	writeJSON(w, code, model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    code,
			Message: message,
			Context: ctxMap,
		},
	})
}

// writeInternalError logs err server-side and answers with a 500. Clients
// receive only the generic message; the underlying error is appended when
// expose is set, which non-production deployments enable.
func writeInternalError(w http.ResponseWriter, logger *slog.Logger, expose bool, message string, err error) {
	logger.Error(message, "error", err)
	if expose {
		writeError(w, http.StatusInternalServerError, message+": "+err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, message)
}

// writeValidationErrors writes a 400 response carrying the full list of
// field-level violations.
func writeValidationErrors(w http.ResponseWriter, errs []model.FieldError) {
	writeJSON(w, http.StatusBadRequest, model.ValidationErrorResponse{Errors: errs})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure. Unknown fields are ignored, so
// clients may send extra keys without being rejected.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
