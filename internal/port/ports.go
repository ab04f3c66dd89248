// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/domain"

	"github.com/shopspring/decimal"
)

// UtilizationSource reports the balance currently owed on a card.
// Implementations must be safe for concurrent use.
type UtilizationSource interface {
	CurrentUtilization(ctx context.Context, cardName string, asOf time.Time) (decimal.Decimal, error)
}

// ArtworkProvider resolves the display image of a card. A card without an
// image yields an Artwork carrying a placeholder, not an error.
type ArtworkProvider interface {
	Artwork(ctx context.Context, card domain.CardProfile) (*domain.Artwork, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
