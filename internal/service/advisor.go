// Package service provides the business logic layer (use cases).
// AdvisorService answers "which card should I use for this purchase" on top of
// the card catalog, the recommendation engine and the utilization source.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/billing"
	"github.com/boddenberg/card-advisor-go/internal/catalog"
	"github.com/boddenberg/card-advisor-go/internal/domain"
	"github.com/boddenberg/card-advisor-go/internal/engine"
	"github.com/boddenberg/card-advisor-go/internal/infra/observability"
	"github.com/boddenberg/card-advisor-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/advisor")

// AdvisorService orchestrates recommendations and catalog queries.
type AdvisorService struct {
	catalog        *catalog.Catalog
	utilization    port.UtilizationSource
	artwork        port.ArtworkProvider
	metrics        *observability.Metrics
	logger         *zap.Logger
	maxConcurrency int
}

// NewAdvisorService creates the advisor with all dependencies injected.
// maxConcurrency bounds the parallel utilization lookups of one request.
func NewAdvisorService(
	cat *catalog.Catalog,
	utilization port.UtilizationSource,
	artwork port.ArtworkProvider,
	metrics *observability.Metrics,
	logger *zap.Logger,
	maxConcurrency int,
) *AdvisorService {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &AdvisorService{
		catalog:        cat,
		utilization:    utilization,
		artwork:        artwork,
		metrics:        metrics,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Recommend ranks the catalog cards for a planned purchase.
//
// The engine runs twice: a first pass with zero balances rejects bad input
// and finds the eligible cards without any I/O, then utilization is fetched
// for those cards only and the final ranking runs on that snapshot.
func (s *AdvisorService) Recommend(ctx context.Context, req domain.RecommendRequest) (*domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "AdvisorService.Recommend")
	defer span.End()
	span.SetAttributes(
		attribute.String("recommend.category", string(req.Category)),
		attribute.String("recommend.amount", req.Amount.String()),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("recommend", time.Since(start))
	}()

	draft, err := engine.Recommend(s.catalog, engine.NoUtilization, req)
	if err != nil {
		s.recordFailure(ctx, err, req)
		return nil, err
	}

	names := make([]string, len(draft.Ranked))
	for i, c := range draft.Ranked {
		names[i] = c.CardName
	}

	snapshot, err := s.prefetch(ctx, names, req.PlannedDate)
	if err != nil {
		s.recordFailure(ctx, err, req)
		return nil, err
	}

	rec, err := engine.Recommend(s.catalog, snapshot.Lookup, req)
	if err != nil {
		s.recordFailure(ctx, err, req)
		return nil, err
	}
	rec.ID = uuid.New().String()

	s.metrics.IncrRecommendation(observability.OutcomeSuccess)
	s.metrics.IncrWinner(rec.Best.CardName)
	if rec.Best.HasWarning() {
		s.metrics.IncrUtilizationWarning()
	}
	span.SetAttributes(attribute.String("recommend.best", rec.Best.CardName))

	s.logger.Info("recommendation computed",
		zap.String("id", rec.ID),
		zap.String("category", string(req.Category)),
		zap.String("planned_date", rec.PlannedDate),
		zap.String("best", rec.Best.CardName),
		zap.Int("days_to_due", rec.Best.DaysToDue),
		zap.Int("candidates", len(rec.Ranked)),
	)
	return rec, nil
}

// prefetch loads the current balance of every named card concurrently.
func (s *AdvisorService) prefetch(ctx context.Context, names []string, asOf time.Time) (engine.Snapshot, error) {
	snapshot := make(engine.Snapshot, len(names))
	if s.utilization == nil {
		return snapshot, nil
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for _, name := range names {
		g.Go(func() error {
			balance, err := s.utilization.CurrentUtilization(gCtx, name, asOf)
			if err != nil {
				s.logger.Error("failed to fetch utilization",
					zap.String("card", name),
					zap.Error(err),
				)
				var ext *domain.ErrExternalService
				if errors.As(err, &ext) {
					return err
				}
				return &domain.ErrExternalService{Service: "utilization", Err: fmt.Errorf("card %q: %w", name, err)}
			}
			mu.Lock()
			snapshot[name] = balance
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *AdvisorService) recordFailure(ctx context.Context, err error, req domain.RecommendRequest) {
	var (
		invalid *domain.ErrInvalidInput
		unknown *domain.ErrUnknownCategory
		outcome string
	)
	switch {
	case errors.As(err, &invalid):
		outcome = observability.OutcomeInvalidInput
	case errors.As(err, &unknown):
		outcome = observability.OutcomeUnknownCategory
		// A card missing a rule is a catalog defect, not a user mistake.
		if unknown.Card != "" {
			s.logger.Error("catalog card has no rule for category",
				zap.String("card", unknown.Card),
				zap.String("category", string(unknown.Category)),
			)
		}
	case errors.Is(err, domain.ErrNoEligibleCards):
		outcome = observability.OutcomeNoEligibleCards
	default:
		outcome = observability.OutcomeError
	}
	s.metrics.IncrRecommendation(outcome)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("recommend.outcome", outcome))
	if outcome == observability.OutcomeError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	fields := []zap.Field{
		zap.String("outcome", outcome),
		zap.String("category", string(req.Category)),
		zap.String("amount", req.Amount.String()),
		zap.Error(err),
	}
	if sc := span.SpanContext(); sc.HasTraceID() {
		fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
	}
	s.logger.Info("recommendation not produced", fields...)
}

// BillingWindow returns the statement cycle of one card for a date.
func (s *AdvisorService) BillingWindow(ctx context.Context, cardName string, date time.Time) (*domain.BillingWindow, error) {
	_, span := tracer.Start(ctx, "AdvisorService.BillingWindow")
	defer span.End()
	span.SetAttributes(attribute.String("card.name", cardName))

	card, err := s.catalog.Card(cardName)
	if err != nil {
		return nil, err
	}
	w := billing.WindowFor(card, date)
	return &w, nil
}

// Cards lists the catalog in order.
func (s *AdvisorService) Cards(_ context.Context) []domain.CardProfile {
	return s.catalog.Cards()
}

// Categories lists the spending categories every card supports.
func (s *AdvisorService) Categories(_ context.Context) []domain.Category {
	return s.catalog.Categories()
}

// Currency returns the catalog currency symbol.
func (s *AdvisorService) Currency() string {
	return s.catalog.Currency()
}

// CardNames lists the catalog card names in order.
func (s *AdvisorService) CardNames() []string {
	names := make([]string, 0, s.catalog.Len())
	_ = s.catalog.Each(func(c domain.CardProfile) error {
		names = append(names, c.Name)
		return nil
	})
	return names
}

// Artwork resolves the image of a card. Provider failures degrade to the
// placeholder; only an unknown card is an error.
func (s *AdvisorService) Artwork(ctx context.Context, cardName string) (*domain.Artwork, error) {
	ctx, span := tracer.Start(ctx, "AdvisorService.Artwork")
	defer span.End()

	card, err := s.catalog.Card(cardName)
	if err != nil {
		return nil, err
	}

	placeholder := &domain.Artwork{CardName: card.Name, Placeholder: domain.ArtworkPlaceholder}
	if s.artwork == nil {
		return placeholder, nil
	}

	art, err := s.artwork.Artwork(ctx, card)
	if err != nil || art == nil {
		s.logger.Warn("artwork lookup failed",
			zap.String("card", card.Name),
			zap.Error(err),
		)
		return placeholder, nil
	}
	return art, nil
}
