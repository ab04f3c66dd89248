// Package report renders advisor results for terminals.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/boddenberg/card-advisor-go/internal/domain"
)

// Messages shown instead of a recommendation.
const (
	NoEligibleMessage    = "⚠️ No cards in active billing cycle."
	InvalidAmountMessage = "❌ Please enter a valid amount."
)

// WriteRecommendation prints the best card as the five-line summary block,
// followed by the warning line when utilization is high. art may be nil.
func WriteRecommendation(w io.Writer, rec *domain.Recommendation, art *domain.Artwork) error {
	best := rec.Best

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Recommended: %s\n", best.CardName)
	fmt.Fprintf(&b, "🏆 Reward: %s\n", best.Reward.Text)
	fmt.Fprintf(&b, "🗓️ Billing: %s - %s\n", best.StartLabel, best.EndLabel)
	fmt.Fprintf(&b, "📅 Due: %s (in %d days)\n", best.DueLabel, best.DaysToDue)
	fmt.Fprintf(&b, "💳 Utilization: %.1f%%\n", best.UtilizationPercent)
	if best.HasWarning() {
		fmt.Fprintf(&b, "⚠️ %s\n", best.Warning)
	}
	if art != nil {
		if art.Available() {
			fmt.Fprintf(&b, "🖼️ %s\n", art.Path)
		} else {
			fmt.Fprintf(&b, "%s\n", art.Placeholder)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteRanking prints every candidate as an aligned table, best first.
func WriteRanking(w io.Writer, rec *domain.Recommendation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCARD\tBILLING\tDUE\tDAYS\tREWARD\tUTIL")
	for i, c := range rec.Ranked {
		fmt.Fprintf(tw, "%d\t%s\t%s - %s\t%s\t%d\t%s\t%.1f%%\n",
			i+1, c.CardName, c.StartLabel, c.EndLabel, c.DueLabel, c.DaysToDue, c.Reward.Text, c.UtilizationPercent)
	}
	return tw.Flush()
}

// WriteWindow prints one card's billing window for a date.
func WriteWindow(w io.Writer, cardName string, win domain.BillingWindow, days int) error {
	_, err := fmt.Fprintf(w, "%s\n🗓️ Billing: %s - %s (%s to %s)\n📅 Due: %s (in %d days)\n",
		cardName,
		win.Start.Format(domain.LabelLayout), win.End.Format(domain.LabelLayout),
		win.Start.Format(domain.DateLayout), win.End.Format(domain.DateLayout),
		win.Due.Format(domain.LabelLayout), days,
	)
	return err
}

// Outcome returns the user-facing line for a recommendation error, or "" when
// err is not an expected outcome.
func Outcome(err error) string {
	var invalid *domain.ErrInvalidInput
	switch {
	case errors.Is(err, domain.ErrNoEligibleCards):
		return NoEligibleMessage
	case errors.As(err, &invalid) && invalid.Field == "amount":
		return InvalidAmountMessage
	default:
		return ""
	}
}
