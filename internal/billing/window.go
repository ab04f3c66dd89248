// Package billing computes monthly statement cycles.
package billing

import (
	"time"

	"github.com/boddenberg/card-advisor-go/internal/domain"
)

// ComputeWindow returns the billing cycle of a card that bills on billingDay
// and that ref falls in. billingDay must be in 1..28 so every month has it.
//
// The cycle starts on billingDay of ref's month when ref is on or after that
// day, otherwise on billingDay of the previous month. It ends one calendar month
// later and payment is due dueOffsetDays after the end.
func ComputeWindow(billingDay, dueOffsetDays int, ref time.Time) domain.BillingWindow {
	ref = domain.DateOf(ref)

	month := ref.Month()
	if ref.Day() < billingDay {
		month--
	}
	// time.Date normalizes month 0 to December of the previous year.
	start := time.Date(ref.Year(), month, billingDay, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	return domain.BillingWindow{
		Start: start,
		End:   end,
		Due:   end.AddDate(0, 0, dueOffsetDays),
	}
}

// WindowFor computes the window of a catalog card for ref.
func WindowFor(card domain.CardProfile, ref time.Time) domain.BillingWindow {
	return ComputeWindow(card.BillingDay, card.DueOffsetDays, ref)
}
