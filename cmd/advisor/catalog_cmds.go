package main

import (
	"fmt"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/billing"
	"github.com/boddenberg/card-advisor-go/internal/catalog"
	"github.com/boddenberg/card-advisor-go/internal/domain"
	"github.com/boddenberg/card-advisor-go/internal/report"

	"github.com/spf13/cobra"
)

var (
	windowCard string
	windowDate string
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Show a card's billing window for a date",
	Long: `Show the statement cycle a date falls in for one card, and when its
payment is due.

Example:
  advisor window --card "SBI SimplyCLICK" --date 2025-07-25`,
	RunE: runWindow,
}

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Print the card catalog as YAML",
	Long: `Print the active catalog in the same YAML layout --catalog reads, so
the output can be edited and fed back in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		return catalog.Encode(cmd.OutOrStdout(), cat)
	},
}

func init() {
	rootCmd.AddCommand(windowCmd, cardsCmd)

	windowCmd.Flags().StringVar(&windowCard, "card", "", "Card name (required)")
	windowCmd.Flags().StringVar(&windowDate, "date", "", "Reference date YYYY-MM-DD (default: today)")
	windowCmd.MarkFlagRequired("card")
}

func runWindow(cmd *cobra.Command, args []string) error {
	ref := domain.DateOf(time.Now())
	if windowDate != "" {
		d, err := domain.ParseDate(windowDate)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		ref = d
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	card, err := cat.Card(windowCard)
	if err != nil {
		return err
	}

	win := billing.WindowFor(card, ref)
	return report.WriteWindow(cmd.OutOrStdout(), card.Name, win, win.DaysUntilDue(ref))
}
