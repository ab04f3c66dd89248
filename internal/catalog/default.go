package catalog

import "github.com/boddenberg/card-advisor-go/internal/domain"

// DefaultCategories are the spending categories of the built-in catalog.
var DefaultCategories = []domain.Category{
	domain.CategoryShopping,
	domain.CategoryGroceries,
	domain.CategoryMemberships,
}

// Default returns the built-in catalog of three cards.
func Default() *Catalog {
	hdfc := domain.PointsRule(150, 4, 0.5, domain.RoundHalfEven)

	return MustNew(DefaultCurrency, DefaultCategories, []domain.CardProfile{
		{
			Name:          "HDFC Regalia Gold",
			BillingDay:    22,
			DueOffsetDays: 20,
			CreditLimit:   limit(300000),
			Artwork:       "hdfc.png",
			Rewards: map[domain.Category]domain.RewardRule{
				domain.CategoryShopping:    hdfc,
				domain.CategoryGroceries:   hdfc,
				domain.CategoryMemberships: hdfc,
			},
		},
		{
			Name:          "SBI SimplyCLICK",
			BillingDay:    16,
			DueOffsetDays: 20,
			CreditLimit:   limit(30000),
			Artwork:       "sbi.png",
			Rewards: map[domain.Category]domain.RewardRule{
				domain.CategoryShopping:    domain.PointsRule(100, 10, 0.25, domain.RoundTruncate),
				domain.CategoryGroceries:   domain.PointsRule(100, 1, 0.25, domain.RoundTruncate),
				domain.CategoryMemberships: domain.PointsRule(100, 5, 0.25, domain.RoundTruncate),
			},
		},
		{
			Name:          "Flipkart Axis Bank",
			BillingDay:    10,
			DueOffsetDays: 20,
			CreditLimit:   limit(140000),
			Artwork:       "flipkart.png",
			Rewards: map[domain.Category]domain.RewardRule{
				domain.CategoryShopping:    domain.CashbackRule(0.015, 2, domain.RoundFloatHalfEven),
				domain.CategoryGroceries:   domain.CashbackRule(0.02, 2, domain.RoundFloatHalfEven),
				domain.CategoryMemberships: domain.CashbackRule(0.015, 2, domain.RoundFloatHalfEven),
			},
		},
	})
}
