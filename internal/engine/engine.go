// Package engine ranks catalog cards for a planned purchase.
//
// Recommend is a pure function of its inputs: it performs no I/O, keeps no
// state between calls and never mutates the catalog. Current card balances
// come from the caller through a UtilizationLookup.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/billing"
	"github.com/boddenberg/card-advisor-go/internal/catalog"
	"github.com/boddenberg/card-advisor-go/internal/domain"

	"github.com/shopspring/decimal"
)

// UtilizationLookup returns the balance already owed on a card.
type UtilizationLookup func(cardName string) decimal.Decimal

// NoUtilization treats every card as unused.
func NoUtilization(string) decimal.Decimal { return decimal.Zero }

// Snapshot is a UtilizationLookup backed by prefetched balances. Missing cards
// count as zero.
type Snapshot map[string]decimal.Decimal

// Lookup implements UtilizationLookup.
func (s Snapshot) Lookup(cardName string) decimal.Decimal {
	if v, ok := s[cardName]; ok {
		return v
	}
	return decimal.Zero
}

var hundred = decimal.NewFromInt(100)

// Recommend ranks every card whose billing window covers the planned date and
// returns the one with the most days until payment is due.
//
// Errors: *domain.ErrInvalidInput for a non-positive amount,
// *domain.ErrUnknownCategory when the category has no reward rule, and
// domain.ErrNoEligibleCards when no window covers the date.
func Recommend(cat *catalog.Catalog, util UtilizationLookup, req domain.RecommendRequest) (*domain.Recommendation, error) {
	if !req.Amount.IsPositive() {
		return nil, &domain.ErrInvalidInput{Field: "amount", Message: "must be greater than zero"}
	}
	if req.PlannedDate.IsZero() {
		return nil, &domain.ErrInvalidInput{Field: "planned_date", Message: "required"}
	}
	if !cat.HasCategory(req.Category) {
		return nil, &domain.ErrUnknownCategory{Category: req.Category}
	}
	if util == nil {
		util = NoUtilization
	}

	planned := domain.DateOf(req.PlannedDate)
	var candidates []domain.Candidate

	err := cat.Each(func(card domain.CardProfile) error {
		if !card.ActiveOn(planned) {
			return nil
		}
		w := billing.WindowFor(card, planned)
		if !w.Contains(planned) {
			return nil
		}

		rule, ok := card.Rewards[req.Category]
		if !ok {
			return &domain.ErrUnknownCategory{Category: req.Category, Card: card.Name}
		}

		candidates = append(candidates, score(card, rule, w, util(card.Name), req.Amount, planned, cat.Currency()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return nil, domain.ErrNoEligibleCards
	}

	// Longest interest-free float wins; ties keep catalog order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DaysToDue > candidates[j].DaysToDue
	})

	return &domain.Recommendation{
		Amount:      req.Amount,
		Category:    req.Category,
		PlannedDate: planned.Format(domain.DateLayout),
		Best:        candidates[0],
		Ranked:      candidates,
	}, nil
}

func score(card domain.CardProfile, rule domain.RewardRule, w domain.BillingWindow, balance, amount decimal.Decimal, planned time.Time, currency string) domain.Candidate {
	projected := balance.Add(amount)
	percent := projected.Div(card.CreditLimit).Mul(hundred)

	return domain.Candidate{
		CardName:           card.Name,
		Reward:             rule.Evaluate(amount, currency),
		DaysToDue:          w.DaysUntilDue(planned),
		Window:             w,
		StartLabel:         w.Start.Format(domain.LabelLayout),
		EndLabel:           w.End.Format(domain.LabelLayout),
		DueLabel:           w.Due.Format(domain.LabelLayout),
		ProjectedBalance:   projected,
		UtilizationPercent: percent.InexactFloat64(),
		Warning:            Warning(percent),
		Artwork:            card.Artwork,
	}
}

// Warning returns the utilization warning for percent, or "".
func Warning(percent decimal.Decimal) string {
	if !percent.GreaterThan(domain.UtilizationWarningThreshold) {
		return ""
	}
	return fmt.Sprintf("Utilization: %s%% exceeds %s%%", percent.StringFixed(1), domain.UtilizationWarningThreshold.String())
}
