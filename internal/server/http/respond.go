package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/and161185/notes-keeper/internal/convert"
	"github.com/and161185/notes-keeper/internal/errs"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func errorBody(msg, field string) convert.ErrorResponse {
	return convert.ErrorResponse{Error: msg, Field: field}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &errs.ValidationError{Reason: "request body is required"}
		}
		return &errs.ValidationError{Reason: fmt.Sprintf("malformed json: %v", err)}
	}
	return nil
}

// writeError maps domain errors to HTTP status codes. Unexpected errors are
// logged and answered with a generic body.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var (
		ve *errs.ValidationError
		ce *errs.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody(ve.Error(), ve.Field))
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorBody(ce.Error(), ce.Field))
	case errors.Is(err, errs.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized", ""))
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found", ""))
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("route", routePattern(r)),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error", ""))
	}
}
