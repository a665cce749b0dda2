package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"devspace/internal/domain"
	"devspace/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Anything that is not a known domain error is logged and answered with an
// opaque 500 body.
func handleError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr) && validationErr.Field != "":
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, err.Error(), map[string]any{
			"field": validationErr.Field,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", httputil.GetRequestID(r),
		)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondBadBody reports a body that could not be decoded
func respondBadBody(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	httputil.RespondError(w, http.StatusBadRequest, err.Error())
}
