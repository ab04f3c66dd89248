package engine_test

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/catalog"
	"github.com/boddenberg/card-advisor-go/internal/domain"
	"github.com/boddenberg/card-advisor-go/internal/engine"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func request(amount int64, cat domain.Category, planned time.Time) domain.RecommendRequest {
	return domain.RecommendRequest{
		Amount:      decimal.NewFromInt(amount),
		Category:    cat,
		PlannedDate: planned,
	}
}

func TestRecommend_DefaultCatalogShopping(t *testing.T) {
	rec, err := engine.Recommend(catalog.Default(), engine.NoUtilization,
		request(7000, domain.CategoryShopping, date(2025, time.July, 25)))
	require.NoError(t, err)

	require.Len(t, rec.Ranked, 3)
	assert.Equal(t, "HDFC Regalia Gold", rec.Ranked[0].CardName)
	assert.Equal(t, "SBI SimplyCLICK", rec.Ranked[1].CardName)
	assert.Equal(t, "Flipkart Axis Bank", rec.Ranked[2].CardName)
	assert.Equal(t, rec.Ranked[0], rec.Best)
	assert.Equal(t, "2025-07-25", rec.PlannedDate)

	best := rec.Best
	assert.Equal(t, date(2025, time.July, 22), best.Window.Start)
	assert.Equal(t, date(2025, time.August, 22), best.Window.End)
	assert.Equal(t, date(2025, time.September, 11), best.Window.Due)
	assert.Equal(t, 48, best.DaysToDue)
	assert.Equal(t, "Jul 22", best.StartLabel)
	assert.Equal(t, "Aug 22", best.EndLabel)
	assert.Equal(t, "Sep 11", best.DueLabel)
	assert.Equal(t, "187 RP (~₹93)", best.Reward.Text)
	assert.EqualValues(t, 187, best.Reward.Points)
	assert.InDelta(t, 2.333, best.UtilizationPercent, 0.001)
	assert.False(t, best.HasWarning())
	assert.Equal(t, "hdfc.png", best.Artwork)

	assert.Equal(t, 42, rec.Ranked[1].DaysToDue)
	assert.Equal(t, "700 RP (~₹175)", rec.Ranked[1].Reward.Text)
	assert.InDelta(t, 23.333, rec.Ranked[1].UtilizationPercent, 0.001)

	assert.Equal(t, 36, rec.Ranked[2].DaysToDue)
	assert.Equal(t, "₹105.0 cashback", rec.Ranked[2].Reward.Text)
}

func TestRecommend_RewardsPerCategory(t *testing.T) {
	tests := []struct {
		category domain.Category
		card     string
		want     string
	}{
		{domain.CategoryGroceries, "SBI SimplyCLICK", "70 RP (~₹17)"},
		{domain.CategoryMemberships, "SBI SimplyCLICK", "350 RP (~₹87)"},
		{domain.CategoryGroceries, "Flipkart Axis Bank", "₹140.0 cashback"},
		{domain.CategoryMemberships, "Flipkart Axis Bank", "₹105.0 cashback"},
		{domain.CategoryGroceries, "HDFC Regalia Gold", "187 RP (~₹93)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category)+"/"+tt.card, func(t *testing.T) {
			rec, err := engine.Recommend(catalog.Default(), nil, request(7000, tt.category, date(2025, time.July, 25)))
			require.NoError(t, err)

			var found bool
			for _, c := range rec.Ranked {
				if c.CardName == tt.card {
					found = true
					assert.Equal(t, tt.want, c.Reward.Text)
				}
			}
			assert.True(t, found)
		})
	}
}

func TestRecommend_InvalidAmount(t *testing.T) {
	for _, amount := range []int64{-5, 0} {
		_, err := engine.Recommend(catalog.Default(), nil, request(amount, domain.CategoryShopping, date(2025, time.July, 25)))

		var invalid *domain.ErrInvalidInput
		require.True(t, errors.As(err, &invalid), "amount %d: got %v", amount, err)
		assert.Equal(t, "amount", invalid.Field)
	}
}

func TestRecommend_MissingDate(t *testing.T) {
	_, err := engine.Recommend(catalog.Default(), nil, request(100, domain.CategoryShopping, time.Time{}))

	var invalid *domain.ErrInvalidInput
	assert.True(t, errors.As(err, &invalid))
}

func TestRecommend_UnknownCategory(t *testing.T) {
	_, err := engine.Recommend(catalog.Default(), nil, request(100, "travel", date(2025, time.July, 25)))

	var unknown *domain.ErrUnknownCategory
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, domain.Category("travel"), unknown.Category)
	assert.False(t, errors.Is(err, domain.ErrNoEligibleCards))
}

func TestRecommend_NoEligibleCards(t *testing.T) {
	until := date(2024, time.December, 31)
	cat := catalog.MustNew("₹", []domain.Category{domain.CategoryShopping}, []domain.CardProfile{{
		Name:          "Closed Card",
		BillingDay:    5,
		DueOffsetDays: 15,
		CreditLimit:   decimal.NewFromInt(50000),
		ActiveUntil:   &until,
		Rewards: map[domain.Category]domain.RewardRule{
			domain.CategoryShopping: domain.CashbackRule(0.01, 2, domain.RoundHalfEven),
		},
	}})

	_, err := engine.Recommend(cat, nil, request(100, domain.CategoryShopping, date(2031, time.March, 3)))
	assert.ErrorIs(t, err, domain.ErrNoEligibleCards)

	rec, err := engine.Recommend(cat, nil, request(100, domain.CategoryShopping, until))
	require.NoError(t, err)
	assert.Equal(t, "Closed Card", rec.Best.CardName)
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	cat := catalog.MustNew("", []domain.Category{domain.CategoryShopping}, nil)

	_, err := engine.Recommend(cat, nil, request(100, domain.CategoryShopping, date(2025, time.July, 25)))
	assert.ErrorIs(t, err, domain.ErrNoEligibleCards)
}

func TestRecommend_UtilizationWarning(t *testing.T) {
	rec, err := engine.Recommend(catalog.Default(), nil, request(10000, domain.CategoryShopping, date(2025, time.July, 25)))
	require.NoError(t, err)

	sbi := rec.Ranked[1]
	require.Equal(t, "SBI SimplyCLICK", sbi.CardName)
	assert.True(t, sbi.HasWarning())
	assert.Equal(t, "Utilization: 33.3% exceeds 30%", sbi.Warning)
	assert.False(t, rec.Best.HasWarning())
}

func TestRecommend_UsesCurrentBalance(t *testing.T) {
	snap := engine.Snapshot{"HDFC Regalia Gold": decimal.NewFromInt(95000)}

	rec, err := engine.Recommend(catalog.Default(), snap.Lookup, request(1000, domain.CategoryShopping, date(2025, time.July, 25)))
	require.NoError(t, err)

	assert.Equal(t, "HDFC Regalia Gold", rec.Best.CardName)
	assert.True(t, rec.Best.ProjectedBalance.Equal(decimal.NewFromInt(96000)))
	assert.InDelta(t, 32.0, rec.Best.UtilizationPercent, 1e-9)
	assert.Equal(t, "Utilization: 32.0% exceeds 30%", rec.Best.Warning)
}

func TestRecommend_ExactlyThirtyPercentHasNoWarning(t *testing.T) {
	rec, err := engine.Recommend(catalog.Default(), nil, request(9000, domain.CategoryShopping, date(2025, time.July, 25)))
	require.NoError(t, err)

	assert.InDelta(t, 30.0, rec.Ranked[1].UtilizationPercent, 1e-9)
	assert.False(t, rec.Ranked[1].HasWarning())
}

func TestRecommend_TiesKeepCatalogOrder(t *testing.T) {
	rule := domain.CashbackRule(0.01, 2, domain.RoundHalfEven)
	card := func(name string) domain.CardProfile {
		return domain.CardProfile{
			Name:          name,
			BillingDay:    12,
			DueOffsetDays: 18,
			CreditLimit:   decimal.NewFromInt(20000),
			Rewards:       map[domain.Category]domain.RewardRule{domain.CategoryShopping: rule},
		}
	}
	cat := catalog.MustNew("", []domain.Category{domain.CategoryShopping}, []domain.CardProfile{
		card("Zeta"), card("Alpha"), card("Mid"),
	})

	rec, err := engine.Recommend(cat, nil, request(500, domain.CategoryShopping, date(2025, time.May, 20)))
	require.NoError(t, err)

	assert.Equal(t, "Zeta", rec.Best.CardName)
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, names(rec.Ranked))
}

func TestRecommend_CycleEndDayIsEligible(t *testing.T) {
	// Aug 22 opens a new HDFC cycle and closes the previous one.
	rec, err := engine.Recommend(catalog.Default(), nil, request(100, domain.CategoryShopping, date(2025, time.August, 22)))
	require.NoError(t, err)

	for _, c := range rec.Ranked {
		if c.CardName == "HDFC Regalia Gold" {
			assert.Equal(t, date(2025, time.August, 22), c.Window.Start)
			return
		}
	}
	require.Fail(t, "HDFC Regalia Gold missing from ranking")
}

func TestRecommend_IsIdempotent(t *testing.T) {
	cat := catalog.Default()
	req := request(7000, domain.CategoryGroceries, date(2025, time.November, 3))

	first, err := engine.Recommend(cat, nil, req)
	require.NoError(t, err)
	second, err := engine.Recommend(cat, nil, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, catalog.Default().Cards(), cat.Cards())
}

func TestRecommend_RankingIsDescendingByDaysToDue(t *testing.T) {
	faker := gofakeit.New(42)
	cat := catalog.Default()

	for i := 0; i < 200; i++ {
		planned := faker.DateRange(date(2020, time.January, 1), date(2030, time.December, 31))
		rec, err := engine.Recommend(cat, nil, request(int64(faker.IntRange(1, 100000)), domain.CategoryShopping, planned))
		require.NoError(t, err)

		assert.True(t, sort.SliceIsSorted(rec.Ranked, func(a, b int) bool {
			return rec.Ranked[a].DaysToDue > rec.Ranked[b].DaysToDue
		}), "planned %s", planned)
		for _, c := range rec.Ranked {
			assert.True(t, c.Window.Contains(planned))
		}
	}
}

func TestRewardRules_AreMonotonic(t *testing.T) {
	faker := gofakeit.New(7)
	cat := catalog.Default()

	amounts := make([]decimal.Decimal, 300)
	for i := range amounts {
		amounts[i] = decimal.NewFromFloat(faker.Float64Range(0.01, 500000)).Round(2)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].LessThan(amounts[j]) })

	for _, card := range cat.Cards() {
		for _, category := range cat.Categories() {
			rule := card.Rewards[category]
			prev := rule.Evaluate(amounts[0], cat.Currency())
			for _, a := range amounts[1:] {
				cur := rule.Evaluate(a, cat.Currency())
				require.False(t, cur.Value.LessThan(prev.Value), "%s/%s at %s", card.Name, category, a)
				require.GreaterOrEqual(t, cur.Points, prev.Points, "%s/%s at %s", card.Name, category, a)
				prev = cur
			}
		}
	}
}

func names(cs []domain.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.CardName
	}
	return out
}

func TestCashback_FloatHalfEvenRoundsTheBinaryProduct(t *testing.T) {
	card, err := catalog.Default().Card("Flipkart Axis Bank")
	require.NoError(t, err)
	rule := card.Rewards[domain.CategoryShopping]
	require.Equal(t, domain.RoundFloatHalfEven, rule.Rounding)

	tests := []struct {
		amount int64
		want   string
	}{
		{1, "₹0.01 cashback"},
		{35, "₹0.53 cashback"},
		{43, "₹0.65 cashback"},
		{7000, "₹105.0 cashback"},
	}
	for _, tt := range tests {
		got := rule.Evaluate(decimal.NewFromInt(tt.amount), "₹")
		assert.Equal(t, tt.want, got.Text, "amount %d", tt.amount)
	}

	// The exact decimal tie goes to even instead.
	exact := domain.CashbackRule(0.015, 2, domain.RoundHalfEven)
	assert.Equal(t, "₹0.52 cashback", exact.Evaluate(decimal.NewFromInt(35), "₹").Text)
}
