package handler

import (
	"net/http"

	"github.com/boddenberg/card-advisor-go/internal/domain"
	"github.com/boddenberg/card-advisor-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Catalog: GET /v1/cards, /v1/categories
// ============================================================

type cardsResponse struct {
	Currency string               `json:"currency"`
	Cards    []domain.CardProfile `json:"cards"`
	Total    int                  `json:"total"`
}

func listCardsHandler(svc *service.AdvisorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards := svc.Cards(r.Context())
		writeJSON(w, http.StatusOK, cardsResponse{
			Currency: svc.Currency(),
			Cards:    cards,
			Total:    len(cards),
		})
	}
}

func listCategoriesHandler(svc *service.AdvisorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"categories": svc.Categories(r.Context()),
		})
	}
}

// ============================================================
// Billing window: GET /v1/cards/{name}/window?date=YYYY-MM-DD
// ============================================================

type windowResponse struct {
	CardName   string `json:"card_name"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Due        string `json:"due"`
	StartLabel string `json:"start_label"`
	EndLabel   string `json:"end_label"`
	DueLabel   string `json:"due_label"`
	DaysToDue  int    `json:"days_to_due"`
}

func billingWindowHandler(svc *service.AdvisorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cards/{name}/window")
		defer span.End()

		name := chi.URLParam(r, "name")
		span.SetAttributes(attribute.String("card.name", name))

		date, err := parseDateParam(r, "date")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		win, err := svc.BillingWindow(ctx, name, date)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, windowResponse{
			CardName:   name,
			Date:       date.Format(domain.DateLayout),
			Start:      win.Start.Format(domain.DateLayout),
			End:        win.End.Format(domain.DateLayout),
			Due:        win.Due.Format(domain.DateLayout),
			StartLabel: win.Start.Format(domain.LabelLayout),
			EndLabel:   win.End.Format(domain.LabelLayout),
			DueLabel:   win.Due.Format(domain.LabelLayout),
			DaysToDue:  win.DaysUntilDue(date),
		})
	}
}

// ============================================================
// Artwork: GET /v1/cards/{name}/artwork
// ============================================================

func artworkHandler(svc *service.AdvisorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cards/{name}/artwork")
		defer span.End()

		art, err := svc.Artwork(ctx, chi.URLParam(r, "name"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		if !art.Available() {
			writeJSON(w, http.StatusOK, art)
			return
		}
		w.Header().Set("Content-Type", art.ContentType)
		http.ServeFile(w, r, art.Path)
	}
}
