package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/domain"
	"github.com/boddenberg/card-advisor-go/internal/infra/observability"
	"github.com/boddenberg/card-advisor-go/internal/infra/resilience"
	"github.com/boddenberg/card-advisor-go/internal/port"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// statementBalance is the Statement API response body.
type statementBalance struct {
	CardName string          `json:"card_name"`
	AsOf     string          `json:"as_of"`
	Balance  decimal.Decimal `json:"balance"`
}

// StatementClient reads current card balances from the Statement API.
// It implements port.UtilizationSource.
type StatementClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	cache      port.Cache[string]
	metrics    *observability.Metrics
}

// NewStatementClient creates a new StatementClient. cache may be nil.
func NewStatementClient(
	httpClient *http.Client,
	baseURL string,
	cb *gobreaker.CircuitBreaker,
	cfg resilience.Config,
	cache port.Cache[string],
	metrics *observability.Metrics,
) *StatementClient {
	return &StatementClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cache:      cache,
		metrics:    metrics,
	}
}

func cacheKey(cardName string, asOf time.Time) string {
	return fmt.Sprintf("util:%s:%s", cardName, asOf.Format(domain.DateLayout))
}

// CurrentUtilization fetches the balance owed on a card as of a date, with
// caching, bulkhead, retry, circuit breaker, and tracing.
func (c *StatementClient) CurrentUtilization(ctx context.Context, cardName string, asOf time.Time) (decimal.Decimal, error) {
	ctx, span := tracer.Start(ctx, "StatementClient.CurrentUtilization")
	defer span.End()
	span.SetAttributes(attribute.String("card.name", cardName))

	asOf = domain.DateOf(asOf)
	key := cacheKey(cardName, asOf)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			if d, err := decimal.NewFromString(cached); err == nil {
				c.metrics.IncrCacheHit("utilization")
				return d, nil
			}
		}
		c.metrics.IncrCacheMiss("utilization")
	}

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return decimal.Zero, err
	}
	defer c.bulkhead.Release()

	result, err := c.cb.Execute(func() (any, error) {
		var body statementBalance
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			u := fmt.Sprintf("%s/v1/cards/%s/utilization?as_of=%s",
				c.baseURL, url.PathEscape(cardName), asOf.Format(domain.DateLayout))
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return resilience.Permanent(err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return resilience.Rejected(&domain.ErrNotFound{Resource: "card statement", ID: cardName})
			}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return resilience.Rejected(fmt.Errorf("statement API returned status %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("statement API returned status %d", resp.StatusCode)
			}

			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return resilience.Permanent(fmt.Errorf("decode statement balance: %w", err))
			}
			if body.Balance.IsNegative() {
				return resilience.Permanent(fmt.Errorf("negative balance %s", body.Balance))
			}
			return nil
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return body.Balance, nil
	})

	if err != nil {
		span.RecordError(err)
		c.metrics.IncrUtilizationError("statement_api")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return decimal.Zero, &domain.ErrExternalService{Service: "statement", Err: fmt.Errorf("circuit open: %w", err)}
		}
		return decimal.Zero, &domain.ErrExternalService{Service: "statement", Err: err}
	}

	balance := result.(decimal.Decimal)
	if c.cache != nil {
		c.cache.Set(key, balance.String())
	}
	return balance, nil
}
