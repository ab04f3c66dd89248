// Package catalog holds the card catalog: an ordered, validated, read-only set
// of card profiles shared by every recommendation.
package catalog

import (
	"fmt"

	"github.com/boddenberg/card-advisor-go/internal/domain"
	"github.com/boddenberg/card-advisor-go/internal/validation"

	"github.com/shopspring/decimal"
)

// DefaultCurrency prefixes reward values when a catalog does not set one.
const DefaultCurrency = "₹"

// Catalog is immutable once built. Accessors hand out copies.
type Catalog struct {
	currency   string
	categories []domain.Category
	cards      []domain.CardProfile
	byName     map[string]int
}

// New validates the definition and builds a catalog. Card order is kept: it is
// the tie-break order of recommendations.
func New(currency string, categories []domain.Category, cards []domain.CardProfile) (*Catalog, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(categories) == 0 {
		return nil, &domain.ErrCatalog{Message: "at least one category is required"}
	}

	seenCat := make(map[domain.Category]bool, len(categories))
	for _, c := range categories {
		if c == "" {
			return nil, &domain.ErrCatalog{Message: "empty category name"}
		}
		if seenCat[c] {
			return nil, &domain.ErrCatalog{Message: fmt.Sprintf("duplicate category %q", c)}
		}
		seenCat[c] = true
	}

	v := validation.New()
	c := &Catalog{
		currency:   currency,
		categories: append([]domain.Category(nil), categories...),
		cards:      make([]domain.CardProfile, 0, len(cards)),
		byName:     make(map[string]int, len(cards)),
	}

	for _, card := range cards {
		if err := v.Struct(card); err != nil {
			return nil, &domain.ErrCatalog{Card: card.Name, Message: err.Error()}
		}
		if _, dup := c.byName[card.Name]; dup {
			return nil, &domain.ErrCatalog{Card: card.Name, Message: "duplicate card name"}
		}
		if card.ActiveFrom != nil && card.ActiveUntil != nil && card.ActiveUntil.Before(*card.ActiveFrom) {
			return nil, &domain.ErrCatalog{Card: card.Name, Message: "active_until precedes active_from"}
		}
		for _, cat := range categories {
			rule, ok := card.Rewards[cat]
			if !ok {
				return nil, &domain.ErrCatalog{Card: card.Name, Message: fmt.Sprintf("missing reward rule for category %q", cat)}
			}
			if err := rule.Check(); err != nil {
				return nil, &domain.ErrCatalog{Card: card.Name, Message: fmt.Sprintf("category %q: %v", cat, err)}
			}
		}
		for cat := range card.Rewards {
			if !seenCat[cat] {
				return nil, &domain.ErrCatalog{Card: card.Name, Message: fmt.Sprintf("reward rule for undeclared category %q", cat)}
			}
		}

		c.byName[card.Name] = len(c.cards)
		c.cards = append(c.cards, clone(card))
	}

	return c, nil
}

// MustNew is New for static definitions; it panics on an invalid catalog.
func MustNew(currency string, categories []domain.Category, cards []domain.CardProfile) *Catalog {
	c, err := New(currency, categories, cards)
	if err != nil {
		panic(err)
	}
	return c
}

// Currency returns the symbol reward values are shown with.
func (c *Catalog) Currency() string { return c.currency }

// Len returns the number of cards.
func (c *Catalog) Len() int { return len(c.cards) }

// Categories returns the categories every card has a rule for.
func (c *Catalog) Categories() []domain.Category {
	return append([]domain.Category(nil), c.categories...)
}

// HasCategory reports whether cat is one of the catalog's categories.
func (c *Catalog) HasCategory(cat domain.Category) bool {
	for _, known := range c.categories {
		if known == cat {
			return true
		}
	}
	return false
}

// Cards returns the profiles in definition order.
func (c *Catalog) Cards() []domain.CardProfile {
	out := make([]domain.CardProfile, len(c.cards))
	for i, card := range c.cards {
		out[i] = clone(card)
	}
	return out
}

// Card looks a profile up by name.
func (c *Catalog) Card(name string) (domain.CardProfile, error) {
	i, ok := c.byName[name]
	if !ok {
		return domain.CardProfile{}, &domain.ErrNotFound{Resource: "card", ID: name}
	}
	return clone(c.cards[i]), nil
}

// Each calls fn for every card in definition order without copying the
// reward table. fn must not modify the profile.
func (c *Catalog) Each(fn func(domain.CardProfile) error) error {
	for _, card := range c.cards {
		if err := fn(card); err != nil {
			return err
		}
	}
	return nil
}

func clone(card domain.CardProfile) domain.CardProfile {
	rewards := make(map[domain.Category]domain.RewardRule, len(card.Rewards))
	for k, v := range card.Rewards {
		rewards[k] = v
	}
	card.Rewards = rewards
	if card.ActiveFrom != nil {
		t := *card.ActiveFrom
		card.ActiveFrom = &t
	}
	if card.ActiveUntil != nil {
		t := *card.ActiveUntil
		card.ActiveUntil = &t
	}
	return card
}

// limit is a small helper for static definitions.
func limit(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
