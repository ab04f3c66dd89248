package handler

import (
	"encoding/json"
	"net/http"

	"github.com/boddenberg/card-advisor-go/internal/domain"
	"github.com/boddenberg/card-advisor-go/internal/service"
	"github.com/boddenberg/card-advisor-go/internal/validation"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var requestValidator = validation.New()

// recommendRequest is the body of POST /v1/recommendations.
type recommendRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" validate:"required"`
	PlannedDate string          `json:"planned_date" validate:"required"`
}

// ============================================================
// POST /v1/recommendations
// ============================================================

func recommendHandler(svc *service.AdvisorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/recommendations")
		defer span.End()

		var body recommendRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := requestValidator.Struct(body); err != nil {
			handleServiceError(w, &domain.ErrValidation{Field: "body", Message: err.Error()}, logger)
			return
		}

		planned, err := domain.ParseDate(body.PlannedDate)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("recommend.category", body.Category),
			attribute.String("recommend.planned_date", body.PlannedDate),
		)

		rec, err := svc.Recommend(ctx, domain.RecommendRequest{
			Amount:      body.Amount,
			Category:    domain.Category(body.Category),
			PlannedDate: planned,
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, rec)
	}
}
