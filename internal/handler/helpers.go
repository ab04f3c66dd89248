package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, domain.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parseDateParam reads a YYYY-MM-DD query parameter, defaulting to today (UTC).
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return domain.DateOf(time.Now().UTC()), nil
	}
	d, err := domain.ParseDate(v)
	if err != nil {
		return time.Time{}, &domain.ErrInvalidInput{Field: name, Message: "expected YYYY-MM-DD"}
	}
	return d, nil
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var invalid *domain.ErrInvalidInput
	var validation *domain.ErrValidation
	var unknownCategory *domain.ErrUnknownCategory
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &invalid):
		logger.Debug("invalid input", zap.String("field", invalid.Field), zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unknownCategory):
		if unknownCategory.Card != "" {
			logger.Error("catalog defect", zap.Error(err))
		} else {
			logger.Debug("unknown category", zap.String("category", string(unknownCategory.Category)))
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrNoEligibleCards):
		logger.Debug("no eligible cards")
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &external):
		logger.Error("external service error", zap.String("service", external.Service), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
