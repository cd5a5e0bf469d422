package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/vancho-go/ipreverser/internal/app/models"
)

var (
	ErrMissingInput = errors.New("missing input")
	ErrStoreFailure = errors.New("store failure")
)

const (
	missingInputMessage = "IP address not provided in request body"
	serverErrorMessage  = "Server error"
	databaseMessage     = "Database error"
)

func writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		slog.Error("writeJSON: error encoding response", slog.Any("error", err))
	}
}

// writeError maps err onto a status code. Store failures are logged with
// their cause and answered with the generic message only.
func writeError(res http.ResponseWriter, req *http.Request, err error, message string) {
	if errors.Is(err, ErrMissingInput) {
		writeJSON(res, http.StatusBadRequest, models.APIErrorResponse{Error: missingInputMessage})
		return
	}

	slog.ErrorContext(req.Context(), err.Error(),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("request_id", middleware.GetReqID(req.Context())),
	)
	writeJSON(res, http.StatusInternalServerError, models.APIErrorResponse{Error: message})
}
