package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/domain"
	"github.com/boddenberg/card-advisor-go/internal/infra/artwork"
	"github.com/boddenberg/card-advisor-go/internal/infra/observability"
	"github.com/boddenberg/card-advisor-go/internal/infra/utilization"
	"github.com/boddenberg/card-advisor-go/internal/report"
	"github.com/boddenberg/card-advisor-go/internal/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	recAmount     string
	recCategory   string
	recDate       string
	recBalances   []string
	recArtworkDir string
	recAll        bool
	recVerbose    bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend a card for a planned purchase",
	Long: `Pick the card whose current billing cycle covers the purchase date and
whose payment is due the furthest away.

Examples:
  advisor recommend --amount 7000 --category shopping --date 2025-07-25
  advisor recommend --amount 1000 --category groceries --balance "HDFC Regalia Gold=95000"
  advisor recommend --amount 7000 --category shopping --all`,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringVar(&recAmount, "amount", "", "Purchase amount (required)")
	recommendCmd.Flags().StringVar(&recCategory, "category", string(domain.CategoryShopping), "Spending category")
	recommendCmd.Flags().StringVar(&recDate, "date", "", "Planned purchase date YYYY-MM-DD (default: today)")
	recommendCmd.Flags().StringArrayVar(&recBalances, "balance", nil, "Current balance as NAME=AMOUNT (repeatable)")
	recommendCmd.Flags().StringVar(&recArtworkDir, "artwork-dir", "", "Directory with card images (default: $ARTWORK_DIR)")
	recommendCmd.Flags().BoolVar(&recAll, "all", false, "Also print every eligible card")
	recommendCmd.Flags().BoolVar(&recVerbose, "verbose", false, "Log to stderr")
	recommendCmd.MarkFlagRequired("amount")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	amount, err := decimal.NewFromString(strings.TrimSpace(recAmount))
	if err != nil || !amount.IsPositive() {
		fmt.Fprintln(out, report.InvalidAmountMessage)
		return &domain.ErrInvalidInput{Field: "amount", Message: "must be a number greater than zero"}
	}

	planned := domain.DateOf(time.Now())
	if recDate != "" {
		if planned, err = domain.ParseDate(recDate); err != nil {
			return err
		}
	}

	balances, err := utilization.ParseBalances(recBalances)
	if err != nil {
		return err
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if recVerbose {
		logger = observability.NewLogger("debug")
	}
	defer logger.Sync()

	dir := recArtworkDir
	if dir == "" {
		dir = os.Getenv("ARTWORK_DIR")
	}

	svc := service.NewAdvisorService(cat, balances, artwork.NewDir(dir, logger), observability.NewMetrics(), logger, 1)

	rec, err := svc.Recommend(cmd.Context(), domain.RecommendRequest{
		Amount:      amount,
		Category:    domain.Category(recCategory),
		PlannedDate: planned,
	})
	if err != nil {
		if msg := report.Outcome(err); msg != "" {
			fmt.Fprintln(out, msg)
			if errors.Is(err, domain.ErrNoEligibleCards) {
				return nil
			}
		}
		return err
	}

	art, err := svc.Artwork(cmd.Context(), rec.Best.CardName)
	if err != nil {
		return err
	}

	if err := report.WriteRecommendation(out, rec, art); err != nil {
		return err
	}
	if recAll {
		fmt.Fprintln(out)
		return report.WriteRanking(out, rec)
	}
	return nil
}
